// Package objectstore mints presigned URLs against the blob store holding
// bill documents. Bytes never pass through this service: clients PUT and GET
// directly against the URLs handed out here.
package objectstore

import (
	"context"
	"fmt"
	"time"

	"billtrack/pkg/config"
)

// Presigner issues time-limited, method-scoped URLs for a single object key.
type Presigner interface {
	// PresignPut returns a URL accepting one PUT of contentType bytes to key.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	// PresignGet returns a URL allowing GET of key.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// New returns the Presigner selected by cfg.Backend.
func New(ctx context.Context, cfg *config.StorageConfig) (Presigner, error) {
	switch cfg.Backend {
	case config.StorageBackendS3, "":
		return NewS3Store(cfg), nil
	case config.StorageBackendGCS:
		return NewGCSStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("objectstore: unknown backend %q", cfg.Backend)
	}
}
