package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore writes blobs below a directory that the HTTP server exposes at /media.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore returns a store rooted at dir. URLs are built as baseURL/key.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{root: dir, baseURL: baseURL}
}

// Root returns the directory blobs are written under.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(_ context.Context, key string, data []byte, _ string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	target := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create media directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", cleaned, err)
	}
	return nil
}

// Delete removes the blob. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(cleaned)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return joinURL(s.baseURL, key)
}
