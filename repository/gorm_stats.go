package repository

import (
	"context"

	"github.com/sierra-health/medequip-api/models"
	"gorm.io/gorm"
)

// GormStatsRepository implements StatsRepository with gorm
type GormStatsRepository struct {
	db *gorm.DB
}

// NewGormStatsRepository creates a stats repository over db
func NewGormStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// Counts returns the dashboard totals
func (r *GormStatsRepository) Counts(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	db := r.db.WithContext(ctx)

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Product{}, &stats.TotalProducts},
		{&models.Order{}, &stats.TotalOrders},
		{&models.Category{}, &stats.TotalCategories},
		{&models.User{}, &stats.TotalUsers},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return &stats, nil
}
