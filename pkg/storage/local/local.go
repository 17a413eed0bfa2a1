// Package local keeps history images on disk, served back by the HTTP layer
// under a fixed URL prefix.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultURLPrefix is where the server exposes BaseDir.
const DefaultURLPrefix = "/uploads"

var errBadKey = errors.New("invalid image key")

// ImageStore implements history.ImageStore.
type ImageStore struct {
	baseDir   string
	urlPrefix string
}

func New(baseDir, urlPrefix string) *ImageStore {
	if baseDir == "" {
		baseDir = "uploads"
	}
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	return &ImageStore{baseDir: baseDir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Dir returns the directory images are written under.
func (s *ImageStore) Dir() string { return s.baseDir }

func (s *ImageStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("%w: %q", errBadKey, key)
	}
	return filepath.Join(s.baseDir, clean), nil
}

func (s *ImageStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	dst, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("prepare storage: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("store file: %w", err)
	}
	return s.urlPrefix + "/" + filepath.ToSlash(key), nil
}

// Delete treats a missing file as already deleted.
func (s *ImageStore) Delete(_ context.Context, key string) error {
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
