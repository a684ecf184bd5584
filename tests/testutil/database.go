package testutil

import (
	"testing"

	"github.com/sierra-health/medequip-api/config"
	"github.com/sierra-health/medequip-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory sqlite database.
// The pool is pinned to one connection so every query sees the same memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
