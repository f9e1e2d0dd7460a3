package service

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

import (
	"context"
	"time"

	"billtrack/internal/models"
)

// BillRepository persists bill records.
type BillRepository interface {
	Create(ctx context.Context, bill *models.Bill) error
	List(ctx context.Context) ([]*models.Bill, error)
}

// ObjectStore mints presigned URLs for stored bill documents.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
