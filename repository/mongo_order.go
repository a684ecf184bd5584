package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sierra-health/medequip-api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOrderRepository implements OrderRepository on MongoDB
type MongoOrderRepository struct {
	orders        *mongo.Collection
	users         *mongo.Collection
	products      *mongo.Collection
	notifications *mongo.Collection
}

// NewMongoOrderRepository creates an order repository over db
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		orders:        db.Collection(ordersCollection),
		users:         db.Collection(usersCollection),
		products:      db.Collection(productsCollection),
		notifications: db.Collection(notificationsCollection),
	}
}

// CreateInquiry inserts the lead, then the order, then the outbox entries.
// The writes are not transactional: a failure after the first insert leaves an orphaned lead.
func (r *MongoOrderRepository) CreateInquiry(ctx context.Context, user *models.User, order *models.Order, notifications []models.Notification) error {
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	order.UserID = user.ID
	if _, err := r.orders.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if len(notifications) == 0 {
		return nil
	}
	docs := make([]interface{}, len(notifications))
	for i := range notifications {
		docs[i] = notifications[i]
	}
	if _, err := r.notifications.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}

// GetByID returns the order with id or ErrNotFound
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, translateMongo(err)
	}
	orders := []models.Order{order}
	if err := r.populate(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// List returns orders created in [from, to), or all orders when either bound is zero, with users and products populated
func (r *MongoOrderRepository) List(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	filter := bson.M{}
	if !from.IsZero() && !to.IsZero() {
		filter["createdAt"] = bson.M{"$gte": from.UTC(), "$lt": to.UTC()}
	}
	orders, err := findAll[models.Order](ctx, r.orders, filter, newestFirst())
	if err != nil {
		return nil, err
	}
	return orders, r.populate(ctx, orders)
}

// UpdateStatus moves the order from one status to another; see OrderRepository.UpdateStatus
func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	result, err := r.orders.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": bson.M{
		"status":    to,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongoMissingOrChanged(ctx, r.orders, id)
	}
	return nil
}

// populate resolves the user and product references of each order
func (r *MongoOrderRepository) populate(ctx context.Context, orders []models.Order) error {
	var userIDs, productIDs []string
	for _, o := range orders {
		userIDs = append(userIDs, o.UserID)
		for _, item := range o.Items {
			productIDs = append(productIDs, item.ProductID)
		}
	}

	users := map[string]*models.User{}
	if len(userIDs) > 0 {
		found, err := findAll[models.User](ctx, r.users, bson.M{"_id": bson.M{"$in": userIDs}})
		if err != nil {
			return err
		}
		for i := range found {
			users[found[i].ID] = &found[i]
		}
	}

	products := map[string]*models.Product{}
	if len(productIDs) > 0 {
		found, err := findAll[models.Product](ctx, r.products, bson.M{"_id": bson.M{"$in": productIDs}})
		if err != nil {
			return err
		}
		for i := range found {
			products[found[i].ID] = &found[i]
		}
	}

	for i := range orders {
		orders[i].User = users[orders[i].UserID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
		for j := range orders[i].Items {
			orders[i].Items[j].Product = products[orders[i].Items[j].ProductID]
		}
	}
	return nil
}

// MongoReviewRepository implements ReviewRepository on MongoDB
type MongoReviewRepository struct {
	collection *mongo.Collection
	products   *mongo.Collection
}

// NewMongoReviewRepository creates a review repository over db
func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{
		collection: db.Collection(reviewsCollection),
		products:   db.Collection(productsCollection),
	}
}

// Create inserts a new review
func (r *MongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	_, err := r.collection.InsertOne(ctx, review)
	return err
}

// GetByID returns the review with id or ErrNotFound
func (r *MongoReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, translateMongo(err)
	}
	return &review, nil
}

// FindActiveByName returns the product's non-rejected review left under name, or ErrNotFound
func (r *MongoReviewRepository) FindActiveByName(ctx context.Context, productID, name string) (*models.Review, error) {
	var review models.Review
	filter := bson.M{
		"product": productID,
		"name":    name,
		"status":  bson.M{"$ne": models.ReviewStatusRejected},
	}
	if err := r.collection.FindOne(ctx, filter).Decode(&review); err != nil {
		return nil, translateMongo(err)
	}
	return &review, nil
}

// ListByProduct returns the product's reviews, filtered by status when it is not empty
func (r *MongoReviewRepository) ListByProduct(ctx context.Context, productID, status string) ([]models.Review, error) {
	filter := bson.M{"product": productID}
	if status != "" {
		filter["status"] = status
	}
	return findAll[models.Review](ctx, r.collection, filter, newestFirst())
}

// ListByStatus returns reviews in status with their products populated
func (r *MongoReviewRepository) ListByStatus(ctx context.Context, status string) ([]models.Review, error) {
	reviews, err := findAll[models.Review](ctx, r.collection, bson.M{"status": status}, newestFirst())
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, rv := range reviews {
		ids = append(ids, rv.ProductID)
	}
	if len(ids) == 0 {
		return reviews, nil
	}
	products, err := findAll[models.Product](ctx, r.products, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range reviews {
		reviews[i].Product = byID[reviews[i].ProductID]
	}
	return reviews, nil
}

// UpdateStatus moves the review from one status to another and returns the updated review
func (r *MongoReviewRepository) UpdateStatus(ctx context.Context, id, from, to string) (*models.Review, error) {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": bson.M{
		"status":    to,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, mongoMissingOrChanged(ctx, r.collection, id)
	}
	return r.GetByID(ctx, id)
}

// MongoNotificationRepository implements NotificationRepository on MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates an outbox repository over db
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection(notificationsCollection)}
}

// Due returns up to limit pending notifications whose next attempt is at or before now
func (r *MongoNotificationRepository) Due(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	filter := bson.M{
		"status":        models.NotificationPending,
		"nextAttemptAt": bson.M{"$lte": now.UTC()},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "nextAttemptAt", Value: 1}}).
		SetLimit(int64(limit))
	return findAll[models.Notification](ctx, r.collection, filter, opts)
}

// MarkSent records a successful delivery
func (r *MongoNotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	sentAt = sentAt.UTC()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":    models.NotificationSent,
			"sentAt":    sentAt,
			"lastError": "",
			"updatedAt": sentAt,
		},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

// MarkRetry records a failed attempt and schedules the next one, or marks the entry failed when final is set
func (r *MongoNotificationRepository) MarkRetry(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastErr string, final bool) error {
	status := models.NotificationPending
	if final {
		status = models.NotificationFailed
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":        status,
		"attempts":      attempts,
		"nextAttemptAt": nextAttemptAt.UTC(),
		"lastError":     lastErr,
		"updatedAt":     time.Now().UTC(),
	}})
	return err
}

// MongoStatsRepository implements StatsRepository on MongoDB
type MongoStatsRepository struct {
	db *mongo.Database
}

// NewMongoStatsRepository creates a stats repository over db
func NewMongoStatsRepository(db *mongo.Database) *MongoStatsRepository {
	return &MongoStatsRepository{db: db}
}

// Counts returns the dashboard totals
func (r *MongoStatsRepository) Counts(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	counts := []struct {
		collection string
		dest       *int64
	}{
		{productsCollection, &stats.TotalProducts},
		{ordersCollection, &stats.TotalOrders},
		{categoriesCollection, &stats.TotalCategories},
		{usersCollection, &stats.TotalUsers},
	}
	for _, c := range counts {
		n, err := r.db.Collection(c.collection).CountDocuments(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.collection, err)
		}
		*c.dest = n
	}
	return &stats, nil
}
