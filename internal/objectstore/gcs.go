package objectstore

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"billtrack/pkg/config"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore presigns against a Google Cloud Storage bucket using V4 signed
// URLs. Signing needs credentials carrying a private key or IAM signBlob
// permission.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, cfg *config.StorageConfig, opts ...option.ClientOption) (*GCSStore, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to create GCS client: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.Bucket}, nil
}

func (g *GCSStore) PresignPut(_ context.Context, key, contentType string, ttl time.Duration) (string, error) {
	url, err := g.client.Bucket(g.bucket).SignedURL(key, signedURLOptions(http.MethodPut, contentType, ttl, time.Now()))
	if err != nil {
		return "", fmt.Errorf("objectstore: sign put %q: %w", key, err)
	}
	return url, nil
}

func (g *GCSStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	url, err := g.client.Bucket(g.bucket).SignedURL(key, signedURLOptions(http.MethodGet, "", ttl, time.Now()))
	if err != nil {
		return "", fmt.Errorf("objectstore: sign get %q: %w", key, err)
	}
	return url, nil
}

// Close releases the underlying GCS client.
func (g *GCSStore) Close() error {
	return g.client.Close()
}

func signedURLOptions(method, contentType string, ttl time.Duration, now time.Time) *storage.SignedURLOptions {
	return &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      method,
		ContentType: contentType,
		Expires:     now.Add(ttl),
	}
}
