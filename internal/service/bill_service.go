package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"billtrack/internal/dto"
	"billtrack/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxTitleLength         = 100
	defaultSignConcurrency = 8

	// amountScale and maxAmount mirror the NUMERIC(14,2) bills.amount column.
	amountScale = 2
)

var maxAmount = decimal.New(1, 12)

// BillService validates and stores bill records and lists them with freshly
// signed download URLs.
type BillService struct {
	repo            BillRepository
	store           ObjectStore
	signConcurrency int
	now             func() time.Time
	logger          *zap.Logger
}

func NewBillService(repo BillRepository, store ObjectStore, signConcurrency int, logger *zap.Logger) *BillService {
	if signConcurrency <= 0 {
		signConcurrency = defaultSignConcurrency
	}

	return &BillService{
		repo:            repo,
		store:           store,
		signConcurrency: signConcurrency,
		now:             time.Now,
		logger:          logger,
	}
}

// CreateBill validates req and persists it. The storage key is not checked
// against the object store.
func (s *BillService) CreateBill(ctx context.Context, req *dto.CreateBillRequest) (*dto.BillResponse, error) {
	bill, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, bill); err != nil {
		s.logger.Error("Failed to save bill", zap.String("storage_key", bill.StorageKey), zap.Error(err))
		return nil, upstream("save bill", err)
	}

	s.logger.Info("Bill saved", zap.String("id", bill.ID), zap.String("storage_key", bill.StorageKey))

	resp := toBillResponse(bill)
	return &resp, nil
}

// ListBills returns all bills newest first. Download URLs are signed
// concurrently; a record whose signing fails gets an empty URL.
func (s *BillService) ListBills(ctx context.Context) ([]dto.BillWithURLResponse, error) {
	bills, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch bills", zap.Error(err))
		return nil, upstream("list bills", err)
	}

	out := make([]dto.BillWithURLResponse, len(bills))

	var g errgroup.Group
	g.SetLimit(s.signConcurrency)
	for i, bill := range bills {
		out[i] = dto.BillWithURLResponse{BillResponse: toBillResponse(bill)}
		g.Go(func() error {
			url, err := s.store.PresignGet(ctx, bill.StorageKey, PresignTTL)
			if err != nil {
				s.logger.Warn("Failed to sign download URL",
					zap.String("id", bill.ID),
					zap.String("storage_key", bill.StorageKey),
					zap.Error(err),
				)
				return nil
			}
			out[i].S3URL = url
			return nil
		})
	}
	_ = g.Wait()

	return out, nil
}

func (s *BillService) validateCreate(req *dto.CreateBillRequest) (*models.Bill, error) {
	if strings.TrimSpace(req.Title) == "" || req.Amount == nil ||
		strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.S3Key) == "" {
		return nil, newValidationError("Missing required fields")
	}

	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		return nil, newValidationError("Title cannot be more than %d characters", maxTitleLength)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, newValidationError("Date must be in YYYY-MM-DD format")
	}

	return &models.Bill{
		Title:      req.Title,
		Amount:     amount,
		Date:       date,
		StorageKey: req.S3Key,
		CreatedAt:  s.now().UTC(),
	}, nil
}

func parseAmount(v any) (decimal.Decimal, error) {
	var (
		amount decimal.Decimal
		err    error
	)

	switch a := v.(type) {
	case float64:
		amount = decimal.NewFromFloat(a)
	case json.Number:
		amount, err = decimal.NewFromString(a.String())
	case string:
		s := strings.TrimSpace(a)
		if s == "" {
			return decimal.Decimal{}, newValidationError("Missing required fields")
		}
		amount, err = decimal.NewFromString(s)
	default:
		err = newValidationError("amount must be a number")
	}
	if err != nil || amount.IsNegative() {
		return decimal.Decimal{}, newValidationError("Amount must be a positive number")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, newValidationError("Amount must be less than %s", maxAmount.String())
	}
	if !amount.Equal(amount.Round(amountScale)) {
		return decimal.Decimal{}, newValidationError("Amount can have at most %d decimal places", amountScale)
	}

	return amount, nil
}

func toBillResponse(bill *models.Bill) dto.BillResponse {
	return dto.BillResponse{
		ID:        bill.ID,
		Title:     bill.Title,
		Amount:    bill.Amount.InexactFloat64(),
		Date:      bill.Date.Format(models.DateLayout),
		S3Key:     bill.StorageKey,
		CreatedAt: bill.CreatedAt.UTC().Format(time.RFC3339),
	}
}
