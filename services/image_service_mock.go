package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	"github.com/sierra-health/medequip-api/utils"
)

// MockImageService is a mock implementation of ImageService for testing
type MockImageService struct {
	uploadedImages map[string][]byte // map of public id to file content
	mu             sync.RWMutex

	// UploadErr and DeleteErr, when set, are returned by the matching calls
	UploadErr error
	DeleteErr error
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		uploadedImages: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global image service instance for testing
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

// UploadImage simulates uploading an image
func (m *MockImageService) UploadImage(_ context.Context, fileHeader *multipart.FileHeader) (*UploadedImage, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	publicID := fmt.Sprintf("products/mock_%s", fileHeader.Filename)

	m.mu.Lock()
	m.uploadedImages[publicID] = content
	m.mu.Unlock()

	return &UploadedImage{
		URL:      fmt.Sprintf("https://images.test/%s", publicID),
		PublicID: publicID,
	}, nil
}

// DeleteImage simulates deleting an image
func (m *MockImageService) DeleteImage(_ context.Context, publicID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if publicID == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploadedImages, publicID)
	m.mu.Unlock()

	return nil
}

// ImageExists checks if an image exists in mock storage
func (m *MockImageService) ImageExists(publicID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedImages[publicID]
	return exists
}

// Clear removes all images from mock storage
func (m *MockImageService) Clear() {
	m.mu.Lock()
	m.uploadedImages = make(map[string][]byte)
	m.mu.Unlock()
}
