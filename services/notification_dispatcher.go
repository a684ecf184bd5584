package services

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sierra-health/medequip-api/logger"
	"github.com/sierra-health/medequip-api/models"
	"github.com/sierra-health/medequip-api/repository"
	"go.uber.org/zap"
)

const (
	dispatchBatchSize = 20
	baseRetryDelay    = 30 * time.Second
	maxRetryDelay     = time.Hour
)

// NotificationDispatcher drains the email outbox. Failed sends are retried with
// exponential backoff until maxAttempts is reached, after which the entry is marked failed.
// Only one dispatcher should run against a database.
type NotificationDispatcher struct {
	repo         repository.NotificationRepository
	mailer       Mailer
	pollInterval time.Duration
	maxAttempts  int
	now          func() time.Time

	wg sync.WaitGroup
}

// NewNotificationDispatcher creates a dispatcher polling every pollInterval
func NewNotificationDispatcher(repo repository.NotificationRepository, mailer Mailer, pollInterval time.Duration, maxAttempts int) *NotificationDispatcher {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &NotificationDispatcher{
		repo:         repo,
		mailer:       mailer,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the dispatch loop in a goroutine until ctx is cancelled
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx)
	}()
}

// Wait blocks until a started loop has returned
func (d *NotificationDispatcher) Wait() {
	d.wg.Wait()
}

func (d *NotificationDispatcher) run(ctx context.Context) {
	logger.Log.Info("Notification dispatcher started", zap.Duration("poll_interval", d.pollInterval))
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		d.DispatchDue(ctx)
		select {
		case <-ctx.Done():
			logger.Log.Info("Notification dispatcher shutting down")
			return
		case <-ticker.C:
		}
	}
}

// DispatchDue sends every notification that is due and returns how many were delivered
func (d *NotificationDispatcher) DispatchDue(ctx context.Context) int {
	due, err := d.repo.Due(ctx, d.now(), dispatchBatchSize)
	if err != nil {
		if ctx.Err() == nil {
			logger.Log.Error("Failed to load due notifications", zap.Error(err))
		}
		return 0
	}

	delivered := 0
	for _, n := range due {
		if ctx.Err() != nil {
			break
		}
		if d.deliver(ctx, n) {
			delivered++
		}
	}
	return delivered
}

func (d *NotificationDispatcher) deliver(ctx context.Context, n models.Notification) bool {
	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err := d.mailer.Send(sendCtx, n.Recipient, n.Subject, n.Body)
	cancel()

	fields := []zap.Field{
		zap.String("notification_id", n.ID),
		zap.String("order_id", n.OrderID),
		zap.String("kind", n.Kind),
		zap.Int("attempt", n.Attempts+1),
	}

	if err == nil {
		if markErr := d.repo.MarkSent(ctx, n.ID, d.now()); markErr != nil {
			logger.Log.Error("Failed to mark notification sent", append(fields, zap.Error(markErr))...)
		}
		logger.Log.Info("Notification sent", fields...)
		return true
	}

	attempts := n.Attempts + 1
	final := attempts >= d.maxAttempts
	next := d.now().Add(RetryDelay(attempts))
	if markErr := d.repo.MarkRetry(ctx, n.ID, attempts, next, err.Error(), final); markErr != nil {
		logger.Log.Error("Failed to record notification attempt", append(fields, zap.Error(markErr))...)
	}

	if final {
		logger.Log.Error("Notification failed permanently", append(fields, zap.Error(err))...)
	} else {
		logger.Log.Warn("Notification send failed, will retry", append(fields, zap.Time("next_attempt_at", next), zap.Error(err))...)
	}
	return false
}

// RetryDelay is the wait after the given number of failed attempts: 30s, 1m, 2m, ... capped at one hour
func RetryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := float64(baseRetryDelay) * math.Pow(2, float64(attempts-1))
	if delay > float64(maxRetryDelay) {
		return maxRetryDelay
	}
	return time.Duration(delay)
}
