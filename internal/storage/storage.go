package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// MaxImageBytes caps a decoded profile image.
const MaxImageBytes = 5 << 20

var (
	ErrInvalidDataURI  = errors.New("image must be a base64 data URI")
	ErrUnsupportedType = errors.New("image content type must be image/*")
	ErrImageTooLarge   = errors.New("image exceeds the maximum size")
)

// ImageStore defines the operations the gateway needs from the image host.
type ImageStore interface {
	// Upload stores data under objectKey.
	Upload(ctx context.Context, objectKey, contentType string, data []byte) error

	// PresignedURL returns a temporary GET URL for objectKey.
	PresignedURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// Image is a decoded upload.
type Image struct {
	ContentType string
	Data        []byte
}

// Extension returns a file extension derived from the content type, e.g. "png".
func (i Image) Extension() string {
	parts := strings.SplitN(i.ContentType, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "bin"
	}
	ext := parts[1]
	if j := strings.IndexAny(ext, "+;"); j >= 0 {
		ext = ext[:j]
	}
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

// DecodeDataURI parses "data:image/png;base64,...." into an Image.
func DecodeDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	contentType = strings.ToLower(contentType)
	if !strings.HasPrefix(contentType, "image/") {
		return Image{}, ErrUnsupportedType
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return Image{}, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, ErrInvalidDataURI
	}
	if len(data) == 0 {
		return Image{}, ErrInvalidDataURI
	}
	if len(data) > MaxImageBytes {
		return Image{}, ErrImageTooLarge
	}
	return Image{ContentType: contentType, Data: data}, nil
}
