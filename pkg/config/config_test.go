package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("METADATA_BACKEND", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SIGN_CONCURRENCY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 8, cfg.Server.SignConcurrency)
	assert.Equal(t, MetadataBackendPostgres, cfg.Metadata.Backend)
	assert.Equal(t, StorageBackendS3, cfg.Storage.Backend)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "5")
	t.Setenv("METADATA_BACKEND", MetadataBackendMongo)
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("STORAGE_BACKEND", StorageBackendGCS)
	t.Setenv("S3_BUCKET_NAME", "my-bills")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("SIGN_CONCURRENCY", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2, cfg.Server.SignConcurrency)
	assert.Equal(t, MetadataBackendMongo, cfg.Metadata.Backend)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, StorageBackendGCS, cfg.Storage.Backend)
	assert.Equal(t, "my-bills", cfg.Storage.Bucket)
	assert.True(t, cfg.Storage.UsePathStyle)
}
