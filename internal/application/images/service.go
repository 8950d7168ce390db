package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxAdditional   = 10
	DefaultMaxBytes = 10 << 20
	keyPrefix       = "listings/"
)

var (
	ErrTooManyImages = errors.New("too many images")
	ErrImageTooLarge = errors.New("image exceeds the size limit")
	ErrNotAnImage    = errors.New("only image files are allowed")
)

// Store is the image persistence adapter.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// File is one uploaded file.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FromHeader adapts a multipart file header.
func FromHeader(fh *multipart.FileHeader) File {
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Stored is the outcome of one Ingest call.
type Stored struct {
	MainImage        string
	AdditionalImages []string
	keys             []string
}

// Service validates and stores listing images.
type Service struct {
	Store    Store
	MaxBytes int64
}

// Ingest checks every file first, then stores main and additional images in
// the order given. If any store fails, the files already stored are removed.
func (s *Service) Ingest(ctx context.Context, main []File, additional []File) (*Stored, error) {
	if len(main) > 1 {
		return nil, fmt.Errorf("%w: at most 1 mainImage", ErrTooManyImages)
	}
	if len(additional) > MaxAdditional {
		return nil, fmt.Errorf("%w: at most %d additionalImages", ErrTooManyImages, MaxAdditional)
	}
	all := append(append([]File{}, main...), additional...)
	types := make([]string, len(all))
	for i, f := range all {
		ct, err := s.check(f)
		if err != nil {
			return nil, err
		}
		types[i] = ct
	}

	out := &Stored{AdditionalImages: []string{}}
	for i, f := range all {
		url, key, err := s.put(ctx, f, types[i])
		if err != nil {
			s.Discard(ctx, out)
			return nil, err
		}
		out.keys = append(out.keys, key)
		if i < len(main) {
			out.MainImage = url
		} else {
			out.AdditionalImages = append(out.AdditionalImages, url)
		}
	}
	return out, nil
}

// Discard removes stored files best-effort.
func (s *Service) Discard(ctx context.Context, st *Stored) {
	if st == nil {
		return
	}
	for _, key := range st.keys {
		if err := s.Store.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("images: cleanup failed")
		}
	}
	st.keys = nil
}

func (s *Service) check(f File) (string, error) {
	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if f.Size > limit {
		return "", fmt.Errorf("%w: %s", ErrImageTooLarge, f.Name)
	}
	ct := ContentType(f.Name, f.ContentType)
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, f.Name)
	}
	return ct, nil
}

func (s *Service) put(ctx context.Context, f File, contentType string) (string, string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	key := ObjectKey(f.Name)
	url, err := s.Store.Put(ctx, key, rc, f.Size, contentType)
	if err != nil {
		return "", "", fmt.Errorf("store %s: %w", f.Name, err)
	}
	return url, key, nil
}

// ObjectKey names a stored file listings/<uuid><ext>.
func ObjectKey(original string) string {
	return keyPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(original))
}

// ContentType prefers the declared type and falls back to the extension.
func ContentType(name, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
}
