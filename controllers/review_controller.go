package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/services"
)

// SubmitReviewRequest represents the request body for reviewing a product
type SubmitReviewRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Stars     int    `json:"stars" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"required,max=1000"`
}

// UpdateReviewStatusRequest represents the moderation decision on a review
type UpdateReviewStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ReviewController serves review submission and moderation
type ReviewController struct {
	reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// Submit handles POST /api/reviews/submit
func (rc *ReviewController) Submit(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	review, err := rc.reviews.Submit(c, services.ReviewInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		Stars:     req.Stars,
		Comment:   req.Comment,
	})
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to submit review")
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"message":  "Review submitted successfully! Awaiting admin approval.",
		"reviewId": review.ID,
	})
}

// ProductReviews handles GET /api/reviews/product/:productId
func (rc *ReviewController) ProductReviews(c *gin.Context) {
	result, err := rc.reviews.ProductReviews(c, c.Param("productId"))
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to fetch reviews")
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// Pending handles GET /api/reviews/admin/pending
func (rc *ReviewController) Pending(c *gin.Context) {
	reviews, err := rc.reviews.Pending(c)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to fetch pending reviews")
		return
	}
	respondSuccess(c, http.StatusOK, reviews)
}

// AllForProduct handles GET /api/reviews/admin/product/:productId
func (rc *ReviewController) AllForProduct(c *gin.Context) {
	reviews, err := rc.reviews.AllForProduct(c, c.Param("productId"))
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to fetch reviews")
		return
	}
	respondSuccess(c, http.StatusOK, reviews)
}

// UpdateStatus handles PATCH /api/reviews/admin/:reviewId/status
func (rc *ReviewController) UpdateStatus(c *gin.Context) {
	var req UpdateReviewStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	review, err := rc.reviews.UpdateStatus(c, c.Param("reviewId"), req.Status)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to update review status")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"message": fmt.Sprintf("Review %s successfully", review.Status),
		"review":  review,
	})
}
