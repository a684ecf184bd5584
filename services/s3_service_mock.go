package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	"github.com/sierra-health/medequip-api/utils"
)

// StoredObject is an object held by MemoryS3
type StoredObject struct {
	Content     []byte
	ContentType string
}

// MemoryS3 is an in-memory S3Interface for tests. Keys follow products/mock_<filename>.
type MemoryS3 struct {
	Bucket string
	Region string

	mu      sync.RWMutex
	objects map[string]StoredObject

	// UploadErr and DeleteErr, when set, are returned by the matching calls
	UploadErr error
	DeleteErr error
}

// NewMemoryS3 creates an empty in-memory bucket
func NewMemoryS3() *MemoryS3 {
	return &MemoryS3{
		Bucket:  "test-bucket",
		Region:  "us-east-1",
		objects: make(map[string]StoredObject),
	}
}

// UploadFile stores the file content under a key derived from its name
func (m *MemoryS3) UploadFile(_ context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := "products/mock_" + fileHeader.Filename
	m.mu.Lock()
	m.objects[key] = StoredObject{Content: content, ContentType: utils.ImageContentType(fileHeader.Filename)}
	m.mu.Unlock()
	return key, nil
}

// PublicURL returns the virtual-hosted style URL S3 would serve the key from
func (m *MemoryS3) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Bucket, m.Region, key)
}

// DeleteFile removes the object; deleting a missing key succeeds like S3 does
func (m *MemoryS3) DeleteFile(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Object returns the stored object for key
func (m *MemoryS3) Object(key string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}
