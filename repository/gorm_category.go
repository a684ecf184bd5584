package repository

import (
	"context"
	"time"

	"github.com/sierra-health/medequip-api/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository with gorm
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a category repository over db
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create inserts a new category
func (r *GormCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// GetByID returns the category with id or ErrNotFound
func (r *GormCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

// List returns every category, oldest first
func (r *GormCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&categories).Error
	return categories, err
}

type categoryCountRow struct {
	ID           string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ProductCount int64
}

// ListWithCounts returns every category with its product count
func (r *GormCategoryRepository) ListWithCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	var rows []categoryCountRow
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.id, categories.name, categories.created_at, categories.updated_at, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id, categories.name, categories.created_at, categories.updated_at").
		Order("categories.created_at ASC").
		Order("categories.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]models.CategoryWithCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.CategoryWithCount{
			Category: models.Category{
				ID:        row.ID,
				Name:      row.Name,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			ProductCount: row.ProductCount,
		})
	}
	return result, nil
}

// Update saves changed fields of an existing category or returns ErrNotFound
func (r *GormCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{"name": category.Name, "updated_at": category.UpdatedAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the category with id or returns ErrNotFound
func (r *GormCategoryRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
