package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sierra-health/medequip-api/models"
	"github.com/sierra-health/medequip-api/repository"
	"github.com/sierra-health/medequip-api/utils"
)

// ProductInput carries the editable fields of a product
type ProductInput struct {
	Name         string
	Brand        string
	CategoryID   string
	Price        float64
	Description  string
	Images       []string
	IsBestSeller bool
}

// CatalogService manages products and categories
type CatalogService struct {
	products        repository.ProductRepository
	categories      repository.CategoryRepository
	topSellingLimit int
}

// NewCatalogService creates a catalog service over store
func NewCatalogService(store *repository.Store, topSellingLimit int) *CatalogService {
	if topSellingLimit <= 0 {
		topSellingLimit = 3
	}
	return &CatalogService{
		products:        store.Products,
		categories:      store.Categories,
		topSellingLimit: topSellingLimit,
	}
}

// CreateProduct validates input and stores a new product.
// The referenced category must exist at creation time.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return nil, err
	}
	category, err := s.requireCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Brand:        in.Brand,
		CategoryID:   in.CategoryID,
		Price:        in.Price,
		Description:  in.Description,
		Images:       in.Images,
		IsBestSeller: in.IsBestSeller,
		ReviewIDs:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	product.Category = category
	return product, nil
}

// UpdateProduct replaces the editable fields of an existing product
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	in = in.normalized()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.CategoryID != existing.CategoryID {
		if _, err := s.requireCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}

	existing.Name = in.Name
	existing.Brand = in.Brand
	existing.CategoryID = in.CategoryID
	existing.Price = in.Price
	existing.Description = in.Description
	existing.Images = in.Images
	existing.IsBestSeller = in.IsBestSeller
	if err := s.products.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// GetProduct returns one product with its category populated
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	normalizeProduct(product)
	return product, nil
}

// ListProducts returns one page of products, newest first
func (s *CatalogService) ListProducts(ctx context.Context, page, limit int) (*models.ProductPage, error) {
	if page < 1 {
		page = utils.DefaultPage
	}
	if limit < 1 {
		limit = utils.DefaultLimit
	}

	total, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	totalPages := utils.TotalPages(total, limit)
	products := []models.Product{}
	if page <= totalPages {
		products, err = s.products.List(ctx, utils.Offset(page, limit), limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}
		normalizeProducts(products)
	}

	return &models.ProductPage{
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Products:   products,
	}, nil
}

// ProductsByCategory lists the products of a category, optionally leaving one out
func (s *CatalogService) ProductsByCategory(ctx context.Context, categoryID, excludeID string) ([]models.Product, error) {
	products, err := s.products.ListByCategory(ctx, categoryID, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	normalizeProducts(products)
	return products, nil
}

// TopSelling returns the best selling products by total ordered quantity
func (s *CatalogService) TopSelling(ctx context.Context) ([]models.TopSellingProduct, error) {
	top, err := s.products.TopSelling(ctx, s.topSellingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top selling products: %w", err)
	}
	if top == nil {
		top = []models.TopSellingProduct{}
	}
	for i := range top {
		normalizeProduct(&top[i].Product)
	}
	return top, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation.WithMessage("Category name is required")
	}
	now := time.Now().UTC()
	category := &models.Category{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListCategoriesWithCounts lists categories with the number of products referencing each
func (s *CatalogService) ListCategoriesWithCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	categories, err := s.categories.ListWithCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products per category: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation.WithMessage("Category name is required")
	}
	if err := s.categories.Update(ctx, &models.Category{ID: id, Name: name}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category. Products keep their now dangling category reference.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *CatalogService) requireCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return category, nil
}

func (in ProductInput) normalized() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	images := make([]string, 0, len(in.Images))
	for _, url := range in.Images {
		if url = strings.TrimSpace(url); url != "" {
			images = append(images, url)
		}
	}
	in.Images = images
	return in
}

func (in ProductInput) validate() error {
	switch {
	case in.Name == "":
		return ErrValidation.WithMessage("Product name is required")
	case in.CategoryID == "":
		return ErrValidation.WithMessage("Product category is required")
	case in.Price < 0:
		return ErrValidation.WithMessage("Price cannot be negative")
	}
	return nil
}

// normalizeProduct makes list fields encode as [] rather than null
func normalizeProduct(p *models.Product) {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.ReviewIDs == nil {
		p.ReviewIDs = []string{}
	}
}

func normalizeProducts(products []models.Product) {
	for i := range products {
		normalizeProduct(&products[i])
	}
}
