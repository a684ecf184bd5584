package repository

import (
	"context"
	"time"

	"github.com/sierra-health/medequip-api/models"
)

// ProductRepository persists catalog products
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	// GetByID returns the product with its category populated when the category still exists
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// List returns products newest first
	List(ctx context.Context, offset, limit int) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	ListByCategory(ctx context.Context, categoryID, excludeID string) ([]models.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	AppendReview(ctx context.Context, productID, reviewID string) error
	// TopSelling ranks products by total ordered quantity, ties broken by product id
	TopSelling(ctx context.Context, limit int) ([]models.TopSellingProduct, error)
}

// CategoryRepository persists catalog categories
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	ListWithCounts(ctx context.Context) ([]models.CategoryWithCount, error)
	Update(ctx context.Context, category *models.Category) error
	// Delete removes the category only; products referencing it are left untouched
	Delete(ctx context.Context, id string) error
}

// OrderRepository persists inquiries together with their leads
type OrderRepository interface {
	// CreateInquiry stores the lead, the order and its pending notifications
	CreateInquiry(ctx context.Context, user *models.User, order *models.Order, notifications []models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// List returns orders newest first, created within [from, to) when both are non-zero
	List(ctx context.Context, from, to time.Time) ([]models.Order, error)
	// UpdateStatus moves an order from status from to status to. It fails with
	// ErrStatusChanged when the order is no longer in from.
	UpdateStatus(ctx context.Context, id, from, to string) error
}

// ReviewRepository persists product reviews
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	// FindActiveByName finds a non-rejected review on the product submitted under name
	FindActiveByName(ctx context.Context, productID, name string) (*models.Review, error)
	// ListByProduct returns reviews newest first, all statuses when status is empty
	ListByProduct(ctx context.Context, productID, status string) ([]models.Review, error)
	// ListByStatus returns reviews newest first with their product populated
	ListByStatus(ctx context.Context, status string) ([]models.Review, error)
	// UpdateStatus moves a review from status from to status to, with the same
	// ErrStatusChanged contract as OrderRepository.UpdateStatus
	UpdateStatus(ctx context.Context, id, from, to string) (*models.Review, error)
}

// NotificationRepository is the outbox of emails waiting to be delivered
type NotificationRepository interface {
	// Due returns pending notifications whose next attempt is at or before now
	Due(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	// MarkRetry records a failed attempt; status becomes failed when final is true
	MarkRetry(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastErr string, final bool) error
}

// StatsRepository computes dashboard counts
type StatsRepository interface {
	Counts(ctx context.Context) (*models.DashboardStats, error)
}

// Store bundles every repository of one backend
type Store struct {
	Products      ProductRepository
	Categories    CategoryRepository
	Orders        OrderRepository
	Reviews       ReviewRepository
	Notifications NotificationRepository
	Stats         StatsRepository
	// Ping checks connectivity of the underlying database
	Ping func(ctx context.Context) error
}
