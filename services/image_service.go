package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/sierra-health/medequip-api/config"
	"github.com/sierra-health/medequip-api/utils"
)

// UploadedImage identifies an image stored with the asset host
type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// ImageService uploads product images to an asset host and removes them again
type ImageService interface {
	// UploadImage validates and uploads an image file
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (*UploadedImage, error)

	// DeleteImage removes an image by the public id returned from UploadImage
	DeleteImage(ctx context.Context, publicID string) error
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
}

var imageServiceInstance ImageService

// NewS3ImageService creates an image service backed by S3
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service}
}

// InitImageService initializes the image service for the provider selected in cfg
func InitImageService(ctx context.Context, cfg *config.Config) (ImageService, error) {
	var (
		service ImageService
		err     error
	)
	switch cfg.ImageProvider {
	case config.ImageProviderCloudinary:
		service, err = NewCloudinaryImageService(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	default:
		var s3Service *S3Service
		s3Service, err = InitS3Service(ctx, cfg)
		if err == nil {
			service = NewS3ImageService(s3Service)
		}
	}
	if err != nil {
		return nil, err
	}

	imageServiceInstance = service
	return service, nil
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// UploadImage validates and uploads an image file to S3. The object key is the public id.
func (s *S3ImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (*UploadedImage, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}

	s3Key, err := s.s3Service.UploadFile(ctx, fileHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return &UploadedImage{URL: s.s3Service.PublicURL(s3Key), PublicID: s3Key}, nil
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, publicID); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
