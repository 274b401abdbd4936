package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// MaxLogoSize ограничивает размер загружаемого логотипа спонсора.
const MaxLogoSize = 2 << 20

var (
	ErrUploaderDisabled       = errors.New("file storage is not configured")
	ErrUnsupportedContentType = errors.New("unsupported content type")
)

var logoExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// SponsorLogoKey returns a fresh object key for a sponsor logo of the given content type.
func SponsorLogoKey(sponsorID int, contentType string) (string, error) {
	ext, ok := logoExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	return fmt.Sprintf("sponsors/%d/logo-%s%s", sponsorID, uuid.NewString(), ext), nil
}
