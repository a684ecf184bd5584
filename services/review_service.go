package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sierra-health/medequip-api/logger"
	"github.com/sierra-health/medequip-api/models"
	"github.com/sierra-health/medequip-api/repository"
	"go.uber.org/zap"
)

// ReviewInput is a review submitted from a product page
type ReviewInput struct {
	ProductID string
	Name      string
	Stars     int
	Comment   string
}

// ReviewService handles review submission and moderation
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
}

// NewReviewService creates a review service over store
func NewReviewService(store *repository.Store) *ReviewService {
	return &ReviewService{reviews: store.Reviews, products: store.Products}
}

// Submit stores a pending review. The same display name may not review a product
// twice while an earlier review from that name is pending or accepted.
func (s *ReviewService) Submit(ctx context.Context, in ReviewInput) (*models.Review, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Name = strings.TrimSpace(in.Name)
	in.Comment = strings.TrimSpace(in.Comment)
	switch {
	case in.ProductID == "" || in.Name == "" || in.Comment == "":
		return nil, ErrValidation.WithMessage("All fields are required")
	case in.Stars < models.MinStars || in.Stars > models.MaxStars:
		return nil, ErrValidation.WithMessage("Stars must be %d-%d", models.MinStars, models.MaxStars)
	case utf8.RuneCountInString(in.Comment) > models.MaxCommentLength:
		return nil, ErrValidation.WithMessage("Comment must be at most %d characters", models.MaxCommentLength)
	}

	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	_, err := s.reviews.FindActiveByName(ctx, in.ProductID, in.Name)
	switch {
	case err == nil:
		return nil, ErrDuplicateReview
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing reviews: %w", err)
	}

	now := time.Now().UTC()
	review := &models.Review{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		Name:      in.Name,
		Stars:     in.Stars,
		Comment:   in.Comment,
		Status:    models.ReviewStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.products.AppendReview(ctx, in.ProductID, review.ID); err != nil {
		logger.Error(ctx, "Failed to link review to product", err,
			zap.String("review_id", review.ID),
			zap.String("product_id", in.ProductID),
		)
	}
	return review, nil
}

// ProductReviews returns the accepted reviews of a product with their average rating
func (s *ReviewService) ProductReviews(ctx context.Context, productID string) (*models.ProductReviews, error) {
	reviews, err := s.reviews.ListByProduct(ctx, productID, models.ReviewStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &models.ProductReviews{
		Reviews:       reviews,
		AverageRating: AverageRating(reviews),
		TotalReviews:  len(reviews),
	}, nil
}

// AverageRating is the mean star rating rounded to one decimal, 0 when there are no reviews
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Stars
	}
	avg := float64(sum) / float64(len(reviews))
	return math.Round(avg*10) / 10
}

// Pending lists reviews awaiting moderation with their product populated
func (s *ReviewService) Pending(ctx context.Context) ([]models.Review, error) {
	reviews, err := s.reviews.ListByStatus(ctx, models.ReviewStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// AllForProduct lists every review of a product regardless of status
func (s *ReviewService) AllForProduct(ctx context.Context, productID string) ([]models.Review, error) {
	reviews, err := s.reviews.ListByProduct(ctx, productID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// UpdateStatus accepts or rejects a pending review
func (s *ReviewService) UpdateStatus(ctx context.Context, id, status string) (*models.Review, error) {
	if status != models.ReviewStatusAccepted && status != models.ReviewStatusRejected {
		return nil, ErrInvalidStatus.WithMessage("Status must be accepted or rejected")
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if !models.CanTransitionReview(review.Status, status) {
		return nil, ErrInvalidTransition.WithMessage("Review is already %s", review.Status)
	}

	updated, err := s.reviews.UpdateStatus(ctx, id, review.Status, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrReviewNotFound
		case errors.Is(err, repository.ErrStatusChanged):
			return nil, ErrInvalidTransition.WithMessage("Review was decided by another request")
		}
		return nil, fmt.Errorf("failed to update review status: %w", err)
	}
	return updated, nil
}
