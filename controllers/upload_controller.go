package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/logger"
	"github.com/sierra-health/medequip-api/services"
	"github.com/sierra-health/medequip-api/utils"
	"go.uber.org/zap"
)

// DeleteImageRequest represents the request body for removing an uploaded image
type DeleteImageRequest struct {
	PublicID string `json:"public_id" binding:"required"`
}

// UploadImage handles POST /api/products/upload-image with the file in the "image" form field
func UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "NO_FILE", "No image file provided")
		return
	}
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		respondServiceError(c, err, "IMAGE_UPLOAD_FAILED", "Failed to upload image")
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		respondError(c, http.StatusServiceUnavailable, "IMAGE_SERVICE_UNAVAILABLE", "Image uploads are not configured")
		return
	}

	image, err := imageService.UploadImage(c, fileHeader)
	if err != nil {
		logger.Error(c, "Image upload failed", err, zap.String("filename", fileHeader.Filename))
		respondServiceError(c, services.ErrImageUpload, "IMAGE_UPLOAD_FAILED", "Failed to upload image")
		return
	}

	logger.Info(c, "Image uploaded", zap.String("public_id", image.PublicID))
	respondSuccess(c, http.StatusOK, image)
}

// DeleteImage handles DELETE /api/products/delete-image
func DeleteImage(c *gin.Context) {
	var req DeleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		respondError(c, http.StatusServiceUnavailable, "IMAGE_SERVICE_UNAVAILABLE", "Image uploads are not configured")
		return
	}

	if err := imageService.DeleteImage(c, req.PublicID); err != nil {
		logger.Error(c, "Image delete failed", err, zap.String("public_id", req.PublicID))
		respondServiceError(c, services.ErrImageDelete, "IMAGE_DELETE_FAILED", "Failed to delete image")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
