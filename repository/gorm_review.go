package repository

import (
	"context"
	"time"

	"github.com/sierra-health/medequip-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReviewRepository implements ReviewRepository with gorm
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a review repository over db
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create inserts a new review
func (r *GormReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error
}

// GetByID returns the review with id or ErrNotFound
func (r *GormReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

// FindActiveByName returns the product's non-rejected review left under name, or ErrNotFound
func (r *GormReviewRepository) FindActiveByName(ctx context.Context, productID, name string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND name = ? AND status <> ?", productID, name, models.ReviewStatusRejected).
		First(&review).Error
	if err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

// ListByProduct returns the product's reviews, filtered by status when it is not empty
func (r *GormReviewRepository) ListByProduct(ctx context.Context, productID, status string) ([]models.Review, error) {
	reviews := []models.Review{}
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Order("id ASC").Find(&reviews).Error
	return reviews, err
}

// ListByStatus returns reviews in status with their products populated
func (r *GormReviewRepository) ListByStatus(ctx context.Context, status string) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("status = ?", status).
		Order("created_at DESC").
		Order("id ASC").
		Find(&reviews).Error
	return reviews, err
}

// UpdateStatus moves the review from one status to another and returns the updated review
func (r *GormReviewRepository) UpdateStatus(ctx context.Context, id, from, to string) (*models.Review, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, missingOrChanged(r.db.WithContext(ctx), &models.Review{}, id)
	}
	return r.GetByID(ctx, id)
}
