package handlers

import (
	"billtrack/internal/dto"
	"billtrack/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploadService *service.UploadService
	logger        *zap.Logger
}

func NewUploadHandler(uploadService *service.UploadService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		logger:        logger,
	}
}

// CreateUploadURL godoc
// @Summary Request an upload URL
// @Description Mint a storage key and a presigned PUT URL, valid for one hour, for an image or PDF
// @Tags upload
// @Accept json
// @Produce json
// @Param request body dto.UploadURLRequest true "File name and MIME type"
// @Success 200 {object} dto.UploadURLResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /upload [post]
func (h *UploadHandler) CreateUploadURL(c *fiber.Ctx) error {
	var req dto.UploadURLRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.uploadService.CreateUploadURL(c.UserContext(), &req)
	if err != nil {
		h.logger.Warn("Failed to generate upload URL", zap.Error(err))
		return writeServiceError(c, err, "Failed to generate upload URL")
	}

	return c.JSON(resp)
}
