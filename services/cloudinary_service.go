package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sierra-health/medequip-api/utils"
)

// CloudinaryImageService implements ImageService on Cloudinary
type CloudinaryImageService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryImageService creates a service from a cloudinary:// URL
func NewCloudinaryImageService(cloudinaryURL, folder string) (*CloudinaryImageService, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("CLOUDINARY_URL is required when IMAGE_PROVIDER=cloudinary")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init error: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryImageService{cld: cld, folder: folder}, nil
}

func (s *CloudinaryImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (*UploadedImage, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload image: %s", resp.Error.Message)
	}

	return &UploadedImage{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (s *CloudinaryImageService) DeleteImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("failed to delete image: %s", resp.Error.Message)
	}
	return nil
}
