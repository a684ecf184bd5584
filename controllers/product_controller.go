package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/services"
	"github.com/sierra-health/medequip-api/utils"
)

// ProductRequest represents the request body for creating or updating a product
type ProductRequest struct {
	Name         string   `json:"name" binding:"required"`
	Brand        string   `json:"brand"`
	Category     string   `json:"category" binding:"required"`
	Price        float64  `json:"price" binding:"gte=0"`
	Description  string   `json:"description"`
	Images       []string `json:"images" binding:"omitempty,dive,url"`
	IsBestSeller bool     `json:"isBestSeller"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:         r.Name,
		Brand:        r.Brand,
		CategoryID:   r.Category,
		Price:        r.Price,
		Description:  r.Description,
		Images:       r.Images,
		IsBestSeller: r.IsBestSeller,
	}
}

// ProductController serves the catalog product endpoints
type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// Create handles POST /api/products/add
func (pc *ProductController) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := pc.catalog.CreateProduct(c, req.input())
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to create product")
		return
	}
	respondSuccess(c, http.StatusCreated, product)
}

// List handles GET /api/products/get/all?page&limit
func (pc *ProductController) List(c *gin.Context) {
	page, limit := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	result, err := pc.catalog.ListProducts(c, page, limit)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to fetch products")
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// Details handles GET /api/products/get/details/:id
func (pc *ProductController) Details(c *gin.Context) {
	product, err := pc.catalog.GetProduct(c, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to fetch product")
		return
	}
	respondSuccess(c, http.StatusOK, product)
}

// ByCategory handles GET /api/products/get/by-category/:categoryId?exclude=id
func (pc *ProductController) ByCategory(c *gin.Context) {
	products, err := pc.catalog.ProductsByCategory(c, c.Param("categoryId"), c.Query("exclude"))
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to fetch related products")
		return
	}
	respondSuccess(c, http.StatusOK, products)
}

// TopSelling handles GET /api/products/get/top-selling
func (pc *ProductController) TopSelling(c *gin.Context) {
	top, err := pc.catalog.TopSelling(c)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to fetch top selling products")
		return
	}
	respondSuccess(c, http.StatusOK, top)
}

// Update handles PUT /api/products/update/:id
func (pc *ProductController) Update(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := pc.catalog.UpdateProduct(c, c.Param("id"), req.input())
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to update product")
		return
	}
	respondSuccess(c, http.StatusOK, product)
}

// Delete handles DELETE /api/products/delete/:id
func (pc *ProductController) Delete(c *gin.Context) {
	if err := pc.catalog.DeleteProduct(c, c.Param("id")); err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to delete product")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Product deleted"})
}
