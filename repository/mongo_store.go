package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the mongo backend
const (
	productsCollection      = "products"
	categoriesCollection    = "categories"
	usersCollection         = "users"
	ordersCollection        = "orders"
	reviewsCollection       = "reviews"
	notificationsCollection = "notifications"
)

// NewMongoStore builds a Store backed by MongoDB
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Products:      NewMongoProductRepository(db),
		Categories:    NewMongoCategoryRepository(db),
		Orders:        NewMongoOrderRepository(db),
		Reviews:       NewMongoReviewRepository(db),
		Notifications: NewMongoNotificationRepository(db),
		Stats:         NewMongoStatsRepository(db),
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		},
	}
}

// EnsureIndexes creates the secondary indexes the queries rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		productsCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "products.product", Value: 1}}},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "product", Value: 1}, {Key: "status", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "nextAttemptAt", Value: 1}}},
		},
	}
	for name, specs := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// mongoMissingOrChanged explains why a conditional update matched no document
func mongoMissingOrChanged(ctx context.Context, coll *mongo.Collection, id string) error {
	count, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStatusChanged
}

func translateMongo(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func aggregateAll[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
