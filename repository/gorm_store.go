package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sierra-health/medequip-api/models"
	"gorm.io/gorm"
)

// NewGormStore builds a Store backed by a relational database through gorm
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Products:      NewGormProductRepository(db),
		Categories:    NewGormCategoryRepository(db),
		Orders:        NewGormOrderRepository(db),
		Reviews:       NewGormReviewRepository(db),
		Notifications: NewGormNotificationRepository(db),
		Stats:         NewGormStatsRepository(db),
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get database instance: %w", err)
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// Migrate creates or updates every table used by the store
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// translate maps gorm's not-found error onto the repository sentinel
// missingOrChanged explains why a conditional update matched no row
func missingOrChanged(db *gorm.DB, model interface{}, id string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStatusChanged
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
