package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sierra-health/medequip-api/cart"
	"github.com/sierra-health/medequip-api/logger"
	"github.com/sierra-health/medequip-api/models"
	"github.com/sierra-health/medequip-api/repository"
	"github.com/sierra-health/medequip-api/utils"
	"go.uber.org/zap"
)

// InquiryLine is one requested product
type InquiryLine struct {
	ProductID string
	Quantity  int
}

// InquiryInput is a storefront checkout or contact form submission
type InquiryInput struct {
	CustomerName string
	Email        string
	Phone        string
	Message      string
	Products     []InquiryLine
}

// OrderService records inquiries and moves them through their lifecycle
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	adminEmail string
	now        func() time.Time
}

// NewOrderService creates an order service. Admin notifications go to adminEmail.
func NewOrderService(store *repository.Store, adminEmail string) *OrderService {
	return &OrderService{
		orders:     store.Orders,
		products:   store.Products,
		adminEmail: adminEmail,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateInquiry stores a new lead and order and queues the admin and customer emails.
// Duplicate product lines are merged and a missing quantity counts as one.
func (s *OrderService) CreateInquiry(ctx context.Context, in InquiryInput) (*models.Order, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	switch {
	case in.CustomerName == "":
		return nil, ErrValidation.WithMessage("Customer name is required")
	case in.Email == "":
		return nil, ErrValidation.WithMessage("Email is required")
	case in.Phone == "":
		return nil, ErrValidation.WithMessage("Phone is required")
	}

	var c cart.Cart
	for _, line := range in.Products {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" {
			return nil, ErrValidation.WithMessage("Product id is required for every line")
		}
		c = cart.Reduce(c, cart.Add(models.Product{ID: productID}, line.Quantity))
	}
	lines := c.Lines()

	now := s.now()
	user := &models.User{
		ID:        uuid.NewString(),
		Name:      in.CustomerName,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	order := &models.Order{
		ID:        uuid.NewString(),
		Items:     lines,
		Message:   in.Message,
		Status:    models.OrderStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}

	notifications, err := s.buildNotifications(ctx, order.ID, in, lines, now)
	if err != nil {
		return nil, err
	}

	if err := s.orders.CreateInquiry(ctx, user, order, notifications); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	order.User = user

	logger.Info(ctx, "Inquiry created",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(lines)),
		zap.Int("notifications", len(notifications)),
	)
	return order, nil
}

// buildNotifications renders the outbox entries for an inquiry. Lines whose product
// no longer exists are left out of the emails but stay on the order.
func (s *OrderService) buildNotifications(ctx context.Context, orderID string, in InquiryInput, lines []models.OrderItem, now time.Time) ([]models.Notification, error) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	names := make(map[string]string, len(found))
	for _, p := range found {
		names[p.ID] = p.Name
	}
	products := make([]EmailProduct, 0, len(lines))
	for _, line := range lines {
		if name, ok := names[line.ProductID]; ok {
			products = append(products, EmailProduct{Name: name, Quantity: line.Quantity})
		}
	}

	data := InquiryEmail{
		Name:     in.CustomerName,
		Email:    in.Email,
		Phone:    in.Phone,
		Message:  in.Message,
		Products: products,
	}

	recipients := []struct {
		kind string
		to   string
	}{
		{models.NotificationAdminInquiry, s.adminEmail},
		{models.NotificationCustomerInquiry, in.Email},
	}

	notifications := make([]models.Notification, 0, len(recipients))
	for _, r := range recipients {
		if r.to == "" {
			logger.Warn(ctx, "No recipient configured, skipping notification", zap.String("kind", r.kind))
			continue
		}
		subject, body, err := RenderEmail(r.kind, data)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, models.Notification{
			ID:            uuid.NewString(),
			OrderID:       orderID,
			Kind:          r.kind,
			Recipient:     r.to,
			Subject:       subject,
			Body:          body,
			Status:        models.NotificationPending,
			NextAttemptAt: now,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return notifications, nil
}

// ListOrders returns all orders, or only those created on date (YYYY-MM-DD, UTC) when given
func (s *OrderService) ListOrders(ctx context.Context, date string) ([]models.Order, error) {
	var from, to time.Time
	if date = strings.TrimSpace(date); date != "" {
		var err error
		from, to, err = utils.DayRange(date)
		if err != nil {
			return nil, ErrInvalidDate
		}
	}

	orders, err := s.orders.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	for i := range orders {
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

// UpdateStatus moves an order along new -> contacted -> closed
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	switch status {
	case models.OrderStatusNew, models.OrderStatusContacted, models.OrderStatusClosed:
	default:
		return nil, ErrInvalidStatus.WithMessage("Status must be one of new, contacted, closed")
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionOrder(order.Status, status) {
		return nil, ErrInvalidTransition.WithMessage("Cannot change order status from %s to %s", order.Status, status)
	}

	if err := s.orders.UpdateStatus(ctx, id, order.Status, status); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, repository.ErrStatusChanged):
			return nil, ErrInvalidTransition.WithMessage("Order status was changed by another request")
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return s.GetOrder(ctx, id)
}
