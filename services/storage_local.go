package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kendall-kelly/printshop-api/utils"
)

// LocalArtworkStorage keeps artwork on disk under root/<order_id>/<filename>
type LocalArtworkStorage struct {
	root      string
	urlPrefix string
}

// NewLocalArtworkStorage creates a disk-backed storage rooted at root
func NewLocalArtworkStorage(root, urlPrefix string) *LocalArtworkStorage {
	return &LocalArtworkStorage{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Save writes the upload into the order's directory
func (s *LocalArtworkStorage) Save(ctx context.Context, orderID uint, fileHeader *multipart.FileHeader) (string, error) {
	orderDir := strconv.FormatUint(uint64(orderID), 10)
	filename, err := utils.SaveUploadedFile(fileHeader, filepath.Join(s.root, orderDir))
	if err != nil {
		return "", err
	}
	return path.Join(orderDir, filename), nil
}

// Open opens the stored file for reading
func (s *LocalArtworkStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Errorf(ErrNotFound, "artwork %s not found", key)
		}
		return nil, fmt.Errorf("failed to open artwork: %w", err)
	}
	return f, nil
}

// URL returns the API path that serves key
func (s *LocalArtworkStorage) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return s.urlPrefix + "/" + key, nil
}

// Delete removes the stored file
func (s *LocalArtworkStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete artwork: %w", err)
	}
	return nil
}

// resolve maps key to a path inside root, rejecting traversal
func (s *LocalArtworkStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key || strings.Contains(key, "..") {
		return "", Errorf(ErrValidation, "invalid artwork key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
