package uploads

import (
	"context"
	"errors"
	"strings"
	"time"

	"realty-backend/internal/application/images"
)

var (
	ErrFileInfoRequired = errors.New("fileName and fileType are required")
	ErrNotAnImage       = errors.New("only image uploads are allowed")
	// ErrUnsupported is returned when the active storage backend cannot presign.
	ErrUnsupported = errors.New("direct uploads are not available with the current storage backend")
)

// Presigner issues direct upload URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (uploadURL, publicURL string, err error)
}

// Service hands out pre-signed PUT URLs for browser uploads.
type Service struct {
	Presigner Presigner // nil when storage is local
	TTL       time.Duration
}

// Request is the upload-url body.
type Request struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

// UploadResult is returned to the client. URL receives a PUT with the file
// body; PublicURL is what goes into the listing afterwards.
type UploadResult struct {
	URL       string    `json:"url"`
	PublicURL string    `json:"publicUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GetSignedUploadURL validates the request and presigns a key for it.
func (s *Service) GetSignedUploadURL(ctx context.Context, req Request) (*UploadResult, error) {
	name := strings.TrimSpace(req.FileName)
	fileType := strings.TrimSpace(req.FileType)
	if name == "" || fileType == "" {
		return nil, ErrFileInfoRequired
	}
	if !strings.HasPrefix(images.ContentType(name, fileType), "image/") {
		return nil, ErrNotAnImage
	}
	if s.Presigner == nil {
		return nil, ErrUnsupported
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	key := images.ObjectKey(name)
	uploadURL, publicURL, err := s.Presigner.PresignPut(ctx, key, ttl)
	if err != nil {
		return nil, err
	}
	return &UploadResult{
		URL:       uploadURL,
		PublicURL: publicURL,
		Key:       key,
		ExpiresAt: time.Now().Add(ttl).UTC(),
	}, nil
}
