package repository

import (
	"context"
	"time"

	"github.com/sierra-health/medequip-api/models"
	"gorm.io/gorm"
)

// GormNotificationRepository implements NotificationRepository with gorm
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates an outbox repository over db
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Due returns up to limit pending notifications whose next attempt is at or before now
func (r *GormNotificationRepository) Due(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", models.NotificationPending, now.UTC()).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkSent records a successful delivery
func (r *GormNotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	sentAt = sentAt.UTC()
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.NotificationSent,
			"attempts":   gorm.Expr("attempts + 1"),
			"sent_at":    &sentAt,
			"last_error": "",
			"updated_at": sentAt,
		}).Error
}

// MarkRetry records a failed attempt and schedules the next one, or marks the entry failed when final is set
func (r *GormNotificationRepository) MarkRetry(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastErr string, final bool) error {
	status := models.NotificationPending
	if final {
		status = models.NotificationFailed
	}
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        attempts,
			"next_attempt_at": nextAttemptAt.UTC(),
			"last_error":      lastErr,
			"updated_at":      time.Now().UTC(),
		}).Error
}
