package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
)

// allowedImageTypes maps accepted extensions to the content type stored with the object
var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// AllowedImageExtensions lists the accepted extensions in sorted order
func AllowedImageExtensions() []string {
	exts := make([]string, 0, len(allowedImageTypes))
	for ext := range allowedImageTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return &FileUploadError{
			Code:    "NO_FILE",
			Message: "No file uploaded",
		}
	}

	// Check file size
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}
	if fileHeader.Size == 0 {
		return &FileUploadError{
			Code:    "EMPTY_FILE",
			Message: "Uploaded file is empty",
		}
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedImageTypes[ext]; !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Only %s files are allowed", strings.Join(AllowedImageExtensions(), ", ")),
		}
	}

	return nil
}

// ImageContentType returns the content type for an accepted image filename
func ImageContentType(filename string) string {
	if ct, ok := allowedImageTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}
