package handlers

import (
	"billtrack/internal/dto"
	"billtrack/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BillHandler struct {
	billService *service.BillService
	logger      *zap.Logger
}

func NewBillHandler(billService *service.BillService, logger *zap.Logger) *BillHandler {
	return &BillHandler{
		billService: billService,
		logger:      logger,
	}
}

// ListBills godoc
// @Summary List bills
// @Description List all bills newest first, each with a download URL valid for one hour
// @Tags bills
// @Produce json
// @Success 200 {object} dto.ListBillsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /bills [get]
func (h *BillHandler) ListBills(c *fiber.Ctx) error {
	bills, err := h.billService.ListBills(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to fetch bills", zap.Error(err))
		return writeServiceError(c, err, "Failed to fetch bills")
	}

	return c.JSON(dto.ListBillsResponse{Bills: bills})
}

// CreateBill godoc
// @Summary Save a bill
// @Description Store bill metadata for a document already uploaded to storage
// @Tags bills
// @Accept json
// @Produce json
// @Param request body dto.CreateBillRequest true "Bill metadata"
// @Success 201 {object} dto.CreateBillResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /bills [post]
func (h *BillHandler) CreateBill(c *fiber.Ctx) error {
	var req dto.CreateBillRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	bill, err := h.billService.CreateBill(c.UserContext(), &req)
	if err != nil {
		h.logger.Warn("Failed to save bill", zap.Error(err))
		return writeServiceError(c, err, "Failed to save bill")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreateBillResponse{
		Message: "Bill saved successfully",
		Bill:    *bill,
	})
}
