package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Store keeps images on an afero filesystem and serves them under URLPrefix.
type Store struct {
	fs        afero.Fs
	urlPrefix string
}

// New wraps fs. Keys are slash-separated paths relative to the fs root.
func New(fs afero.Fs, urlPrefix string) *Store {
	return &Store{fs: fs, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

// NewOnDisk roots a Store at dir, creating it when missing.
func NewOnDisk(dir, urlPrefix string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("local storage: upload dir is empty")
	}
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create %s: %w", dir, err)
	}
	return New(afero.NewBasePathFs(osFs, dir), urlPrefix), nil
}

func (s *Store) Backend() string { return "local" }

// Put writes r to key. A partial file is removed when the copy fails.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = clean(key)
	if key == "" {
		return "", errors.New("local storage: empty key")
	}
	name := "/" + key
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return "", fmt.Errorf("local storage: mkdir for %s: %w", key, err)
	}
	f, err := s.fs.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("local storage: create %s: %w", key, err)
	}
	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = s.fs.Remove(name)
		if copyErr != nil {
			return "", fmt.Errorf("local storage: write %s: %w", key, copyErr)
		}
		return "", fmt.Errorf("local storage: close %s: %w", key, closeErr)
	}
	return s.URL(key), nil
}

// Delete removes key. Missing files are not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	err := s.fs.Remove("/" + clean(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("local storage: delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the root is reachable.
func (s *Store) Ping(_ context.Context) error {
	_, err := s.fs.Stat("/")
	return err
}

// URL is the public path for key.
func (s *Store) URL(key string) string {
	return s.urlPrefix + "/" + clean(key)
}

// HTTPFS exposes the store for static serving.
func (s *Store) HTTPFS() http.FileSystem {
	return afero.NewHttpFs(s.fs)
}

func clean(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}
