package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxFileSize is 16MB in bytes
const MaxFileSize = 16 * 1024 * 1024

// AllowedArtworkExtensions are the artwork formats accepted for jobs
var AllowedArtworkExtensions = []string{
	".pdf", ".ai", ".psd", ".jpg", ".jpeg", ".png", ".tif", ".tiff", ".eps", ".indd",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateArtworkFile validates the uploaded file format and size
func ValidateArtworkFile(fileHeader *multipart.FileHeader, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxFileSize
	}
	if fileHeader.Size > maxBytes {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", maxBytes/(1024*1024)),
		}
	}

	if !IsAllowedArtwork(fileHeader.Filename) {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Allowed file types: %s", strings.Join(AllowedArtworkExtensions, ", ")),
		}
	}

	return nil
}

// IsAllowedArtwork reports whether the filename has an accepted artwork extension
func IsAllowedArtwork(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedArtworkExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeFilename strips directories and characters unsafe for a filesystem path
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "upload"
	}
	return name
}

// SaveUploadedFile saves the uploaded file into dir and returns the stored file name.
// An existing file of the same name is kept; the new one gets a timestamp prefix.
func SaveUploadedFile(fileHeader *multipart.FileHeader, dir string) (filename string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename = SanitizeFilename(fileHeader.Filename)
	fullPath := filepath.Join(dir, filename)
	if _, statErr := os.Stat(fullPath); statErr == nil {
		filename = fmt.Sprintf("%d_%s", time.Now().UnixNano(), filename)
		fullPath = filepath.Join(dir, filename)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filename, nil
}

// ContentTypeFor returns a MIME type for an artwork file name
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".ai":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".eps":
		return "application/postscript"
	case ".psd":
		return "image/vnd.adobe.photoshop"
	}
	return "application/octet-stream"
}
