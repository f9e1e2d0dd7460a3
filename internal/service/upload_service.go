package service

import (
	"context"
	"mime"
	"strings"
	"time"

	"billtrack/internal/dto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PresignTTL is how long minted upload and download URLs stay valid.
const PresignTTL = time.Hour

const storageKeyPrefix = "bills/"

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// UploadService hands out upload credentials: a fresh storage key plus a
// presigned PUT URL for it. Nothing is written until the client uses the URL.
type UploadService struct {
	store  ObjectStore
	newID  func() string
	logger *zap.Logger
}

func NewUploadService(store ObjectStore, logger *zap.Logger) *UploadService {
	return &UploadService{
		store:  store,
		newID:  func() string { return uuid.NewString() },
		logger: logger,
	}
}

// CreateUploadURL validates the file name and MIME type and mints a PUT URL
// scoped to a new key and that content type.
func (s *UploadService) CreateUploadURL(ctx context.Context, req *dto.UploadURLRequest) (*dto.UploadURLResponse, error) {
	fileName := strings.TrimSpace(req.FileName)
	fileType := strings.TrimSpace(req.FileType)
	if fileName == "" || fileType == "" {
		return nil, newValidationError("fileName and fileType are required")
	}

	contentType, ok := normalizeMimeType(fileType)
	if !ok {
		return nil, &UnsupportedMediaTypeError{MimeType: fileType}
	}

	key := storageKeyPrefix + s.newID() + "." + fileExtension(fileName)

	url, err := s.store.PresignPut(ctx, key, contentType, PresignTTL)
	if err != nil {
		s.logger.Error("Failed to presign upload", zap.String("key", key), zap.Error(err))
		return nil, upstream("presign upload", err)
	}

	s.logger.Info("Upload URL issued", zap.String("key", key), zap.String("content_type", contentType))

	return &dto.UploadURLResponse{
		Key: key,
		URL: url,
	}, nil
}

// IsAllowedMimeType reports whether fileType may be uploaded.
func IsAllowedMimeType(fileType string) bool {
	_, ok := normalizeMimeType(fileType)
	return ok
}

func normalizeMimeType(fileType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(fileType)
	if err != nil {
		return "", false
	}
	_, ok := allowedMimeTypes[mediaType]
	return mediaType, ok
}

// fileExtension returns the text after the last dot, lower-cased. Names
// without a dot yield the whole name.
func fileExtension(fileName string) string {
	return strings.ToLower(fileName[strings.LastIndex(fileName, ".")+1:])
}
