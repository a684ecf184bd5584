package services

import (
	"context"
	"fmt"

	"github.com/sierra-health/medequip-api/models"
	"github.com/sierra-health/medequip-api/repository"
)

// StatsService computes the admin dashboard counts
type StatsService struct {
	stats repository.StatsRepository
}

func NewStatsService(store *repository.Store) *StatsService {
	return &StatsService{stats: store.Stats}
}

// Dashboard counts products, orders, categories and users on every call
func (s *StatsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.stats.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return stats, nil
}
