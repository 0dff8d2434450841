package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
)

// MockArtworkStorage is an in-memory ArtworkStorage for tests
type MockArtworkStorage struct {
	files map[string][]byte
	mu    sync.RWMutex
}

// NewMockArtworkStorage creates an empty mock storage
func NewMockArtworkStorage() *MockArtworkStorage {
	return &MockArtworkStorage{files: make(map[string][]byte)}
}

// SetAsMockForTesting installs this mock as the global storage
func (m *MockArtworkStorage) SetAsMockForTesting() {
	SetArtworkStorage(m)
}

// Save keeps the file content in memory
func (m *MockArtworkStorage) Save(ctx context.Context, orderID uint, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("%d/mock_%s", orderID, fileHeader.Filename)
	m.mu.Lock()
	m.files[key] = content
	m.mu.Unlock()
	return key, nil
}

// Open returns the stored content
func (m *MockArtworkStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	content, ok := m.files[key]
	m.mu.RUnlock()
	if !ok {
		return nil, Errorf(ErrNotFound, "artwork %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// URL returns a fake link for key
func (m *MockArtworkStorage) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return "https://artwork.test/" + key + "?mock=true", nil
}

// Delete forgets key
func (m *MockArtworkStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.files, key)
	m.mu.Unlock()
	return nil
}

// Exists reports whether key is stored
func (m *MockArtworkStorage) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[key]
	return ok
}

// Count returns the number of stored files
func (m *MockArtworkStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
