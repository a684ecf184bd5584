package repository

import (
	"context"
	"time"

	"github.com/sierra-health/medequip-api/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository with gorm
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates an order repository over db
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// CreateInquiry writes the lead, the order with its items and the outbox entries in one transaction
func (r *GormOrderRepository) CreateInquiry(ctx context.Context, user *models.User, order *models.Order, notifications []models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		order.UserID = user.ID
		if err := tx.Omit("User").Create(order).Error; err != nil {
			return err
		}
		if len(notifications) > 0 {
			if err := tx.Create(&notifications).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormOrderRepository) populated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product")
}

// GetByID returns the order with id or ErrNotFound
func (r *GormOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.populated(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// List returns orders created in [from, to), or all orders when either bound is zero, with users and products populated
func (r *GormOrderRepository) List(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	orders := []models.Order{}
	query := r.populated(ctx)
	if !from.IsZero() && !to.IsZero() {
		query = query.Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC())
	}
	err := query.Order("created_at DESC").Order("id ASC").Find(&orders).Error
	return orders, err
}

// UpdateStatus moves the order from one status to another; see OrderRepository.UpdateStatus
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missingOrChanged(r.db.WithContext(ctx), &models.Order{}, id)
	}
	return nil
}
