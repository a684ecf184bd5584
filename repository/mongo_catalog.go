package repository

import (
	"context"
	"time"

	"github.com/sierra-health/medequip-api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository implements ProductRepository on MongoDB
type MongoProductRepository struct {
	collection *mongo.Collection
	categories *mongo.Collection
}

// NewMongoProductRepository creates a product repository over db
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		collection: db.Collection(productsCollection),
		categories: db.Collection(categoriesCollection),
	}
}

// Create inserts a new product
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	_, err := r.collection.InsertOne(ctx, product)
	return err
}

// GetByID returns the product with id or ErrNotFound
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translateMongo(err)
	}
	products := []models.Product{product}
	if err := r.populateCategories(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// List returns one page of products, newest first, with categories populated
func (r *MongoProductRepository) List(ctx context.Context, offset, limit int) ([]models.Product, error) {
	opts := newestFirst().SetSkip(int64(offset)).SetLimit(int64(limit))
	products, err := findAll[models.Product](ctx, r.collection, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return products, r.populateCategories(ctx, products)
}

// Count returns the total number of products
func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// ListByCategory returns the products of a category, skipping excludeID when set
func (r *MongoProductRepository) ListByCategory(ctx context.Context, categoryID, excludeID string) ([]models.Product, error) {
	filter := bson.M{"category": categoryID}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return findAll[models.Product](ctx, r.collection, filter, newestFirst())
}

// FindByIDs returns the products whose ids are in ids; unknown ids are ignored
func (r *MongoProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	products, err := findAll[models.Product](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return products, r.populateCategories(ctx, products)
}

// Update saves changed fields of an existing product or returns ErrNotFound
func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, bson.M{"$set": bson.M{
		"name":         product.Name,
		"brand":        product.Brand,
		"category":     product.CategoryID,
		"price":        product.Price,
		"description":  product.Description,
		"images":       product.Images,
		"isBestSeller": product.IsBestSeller,
		"updatedAt":    product.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the product with id or returns ErrNotFound
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendReview adds reviewID to the product's review list
func (r *MongoProductRepository) AppendReview(ctx context.Context, productID, reviewID string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$push": bson.M{"reviews": reviewID}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TopSelling unwinds order lines, sums quantities per product and joins the product documents.
// The limit is applied after the join so deleted products do not take a slot.
func (r *MongoProductRepository) TopSelling(ctx context.Context, limit int) ([]models.TopSellingProduct, error) {
	orders := r.collection.Database().Collection(ordersCollection)
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$products"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$products.product"},
			{Key: "soldQuantity", Value: bson.D{{Key: "$sum", Value: "$products.quantity"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "soldQuantity", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: productsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		{{Key: "$unwind", Value: "$product"}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: bson.D{
			{Key: "$mergeObjects", Value: bson.A{"$product", bson.D{{Key: "soldQuantity", Value: "$soldQuantity"}}}},
		}}}}},
	}

	ranked, err := aggregateAll[models.TopSellingProduct](ctx, orders, pipeline)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, len(ranked))
	for i := range ranked {
		products[i] = ranked[i].Product
	}
	if err := r.populateCategories(ctx, products); err != nil {
		return nil, err
	}
	for i := range ranked {
		ranked[i].Product = products[i]
	}
	return ranked, nil
}

func (r *MongoProductRepository) populateCategories(ctx context.Context, products []models.Product) error {
	ids := make([]string, 0, len(products))
	seen := make(map[string]bool)
	for _, p := range products {
		if p.CategoryID != "" && !seen[p.CategoryID] {
			seen[p.CategoryID] = true
			ids = append(ids, p.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	categories, err := findAll[models.Category](ctx, r.categories, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	byID := make(map[string]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}
	for i := range products {
		products[i].Category = byID[products[i].CategoryID]
	}
	return nil
}

// MongoCategoryRepository implements CategoryRepository on MongoDB
type MongoCategoryRepository struct {
	collection *mongo.Collection
}

// NewMongoCategoryRepository creates a category repository over db
func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{collection: db.Collection(categoriesCollection)}
}

// Create inserts a new category
func (r *MongoCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	_, err := r.collection.InsertOne(ctx, category)
	return err
}

// GetByID returns the category with id or ErrNotFound
func (r *MongoCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, translateMongo(err)
	}
	return &category, nil
}

func oldestFirst() bson.D {
	return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
}

// List returns every category, oldest first
func (r *MongoCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	return findAll[models.Category](ctx, r.collection, bson.M{}, options.Find().SetSort(oldestFirst()))
}

// ListWithCounts returns every category with its product count
func (r *MongoCategoryRepository) ListWithCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: productsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "category"},
			{Key: "as", Value: "items"},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "productCount", Value: bson.D{{Key: "$size", Value: "$items"}}}}}},
		{{Key: "$project", Value: bson.D{{Key: "items", Value: 0}}}},
		{{Key: "$sort", Value: oldestFirst()}},
	}
	return aggregateAll[models.CategoryWithCount](ctx, r.collection, pipeline)
}

// Update saves changed fields of an existing category or returns ErrNotFound
func (r *MongoCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": category.ID}, bson.M{"$set": bson.M{
		"name":      category.Name,
		"updatedAt": category.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the category with id or returns ErrNotFound
func (r *MongoCategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
