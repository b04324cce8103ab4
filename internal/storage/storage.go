package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidReference is returned for references that do not name a stored file.
var ErrInvalidReference = errors.New("invalid attachment reference")

// FileStore keeps recipe attachments (images, PDFs) on the local disk.
type FileStore struct {
	basePath string
}

// NewFileStore creates a new FileStore and ensures the base directory exists.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Save writes r under a fresh name keeping the extension of filename, and returns the stored reference.
func (s *FileStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := uuid.NewString() + strings.ToLower(filepath.Ext(filename))

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create attachment file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close attachment: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.basePath, ref)); err != nil {
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}
	return ref, nil
}

// Open returns the stored file for ref.
func (s *FileStore) Open(ref string) (io.ReadCloser, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open attachment: %w", err)
	}
	return f, nil
}

// Exists checks if ref names a stored file.
func (s *FileStore) Exists(ref string) bool {
	path, err := s.path(ref)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *FileStore) Remove(ref string) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove attachment: %w", err)
	}
	return nil
}

// CheckReference rejects references that could point outside the store.
func CheckReference(ref string) error {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	return nil
}

func (s *FileStore) path(ref string) (string, error) {
	if err := CheckReference(ref); err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, ref), nil
}
