package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	appConfig "github.com/kendall-kelly/printshop-api/config"
)

// ArtworkStorage stores job artwork files scoped by order
type ArtworkStorage interface {
	// Save stores the file under the order and returns its storage key
	Save(ctx context.Context, orderID uint, fileHeader *multipart.FileHeader) (string, error)

	// Open returns the stored content for key
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// URL returns where a client can download key
	URL(ctx context.Context, key string) (string, error)

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

var artworkStorageInstance ArtworkStorage

// InitArtworkStorage builds the storage backend named by the configuration
func InitArtworkStorage(ctx context.Context, cfg *appConfig.Config) (ArtworkStorage, error) {
	switch cfg.StorageBackend {
	case "s3":
		s, err := NewS3ArtworkStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		artworkStorageInstance = s
	case "local", "":
		artworkStorageInstance = NewLocalArtworkStorage(cfg.UploadDir, "/api/v1/uploads")
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
	return artworkStorageInstance, nil
}

// GetArtworkStorage returns the initialized storage backend
func GetArtworkStorage() ArtworkStorage {
	return artworkStorageInstance
}

// SetArtworkStorage sets the storage backend (primarily for testing)
func SetArtworkStorage(s ArtworkStorage) {
	artworkStorageInstance = s
}
