package repository

import (
	"context"
	"time"

	"github.com/sierra-health/medequip-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository with gorm
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a product repository over db
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// GetByID returns the product with id or ErrNotFound
func (r *GormProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// List returns one page of products, newest first, with categories populated
func (r *GormProductRepository) List(ctx context.Context, offset, limit int) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	return products, err
}

// Count returns the total number of products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error
	return total, err
}

// ListByCategory returns the products of a category, skipping excludeID when set
func (r *GormProductRepository) ListByCategory(ctx context.Context, categoryID, excludeID string) ([]models.Product, error) {
	products := []models.Product{}
	query := r.db.WithContext(ctx).Where("category_id = ?", categoryID)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Order("created_at DESC").Order("id ASC").Find(&products).Error
	return products, err
}

// FindByIDs returns the products whose ids are in ids; unknown ids are ignored
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	products := []models.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// Update saves changed fields of an existing product or returns ErrNotFound
func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select("name", "brand", "category_id", "price", "description", "images", "is_best_seller", "updated_at").
		Updates(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the product with id or returns ErrNotFound
func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendReview adds reviewID to the product's review list
func (r *GormProductRepository) AppendReview(ctx context.Context, productID, reviewID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id", "review_ids").First(&product, "id = ?", productID).Error; err != nil {
			return translate(err)
		}
		reviewIDs := append(product.ReviewIDs, reviewID)
		return tx.Model(&models.Product{}).
			Where("id = ?", productID).
			Select("review_ids").
			Updates(&models.Product{ReviewIDs: reviewIDs}).Error
	})
}

type soldRow struct {
	ProductID    string
	SoldQuantity int
}

// TopSelling returns up to limit products ranked by ordered quantity
func (r *GormProductRepository) TopSelling(ctx context.Context, limit int) ([]models.TopSellingProduct, error) {
	var rows []soldRow
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id AS product_id, SUM(order_items.quantity) AS sold_quantity").
		Joins("JOIN products ON products.id = order_items.product_id").
		Group("order_items.product_id").
		Order("sold_quantity DESC").
		Order("order_items.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	products, err := r.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	result := make([]models.TopSellingProduct, 0, len(rows))
	for _, row := range rows {
		product, ok := byID[row.ProductID]
		if !ok {
			continue
		}
		result = append(result, models.TopSellingProduct{Product: product, SoldQuantity: row.SoldQuantity})
	}
	return result, nil
}
