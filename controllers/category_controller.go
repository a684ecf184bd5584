package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/services"
)

// CategoryRequest represents the request body for creating or renaming a category
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// CategoryController serves the category endpoints
type CategoryController struct {
	catalog *services.CatalogService
}

func NewCategoryController(catalog *services.CatalogService) *CategoryController {
	return &CategoryController{catalog: catalog}
}

// Create handles POST /api/categories/create
func (cc *CategoryController) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	category, err := cc.catalog.CreateCategory(c, req.Name)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to create category")
		return
	}
	respondSuccess(c, http.StatusCreated, category)
}

// List handles GET /api/categories/get/all
func (cc *CategoryController) List(c *gin.Context) {
	categories, err := cc.catalog.ListCategories(c)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to fetch categories")
		return
	}
	respondSuccess(c, http.StatusOK, categories)
}

// ListWithCounts handles GET /api/categories/get/with-counts
func (cc *CategoryController) ListWithCounts(c *gin.Context) {
	categories, err := cc.catalog.ListCategoriesWithCounts(c)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to fetch categories")
		return
	}
	respondSuccess(c, http.StatusOK, categories)
}

// Update handles PUT /api/categories/update/:id
func (cc *CategoryController) Update(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	category, err := cc.catalog.UpdateCategory(c, c.Param("id"), req.Name)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to update category")
		return
	}
	respondSuccess(c, http.StatusOK, category)
}

// Delete handles DELETE /api/categories/delete/:id. Products in the category are left in place.
func (cc *CategoryController) Delete(c *gin.Context) {
	if err := cc.catalog.DeleteCategory(c, c.Param("id")); err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to delete category")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Category deleted"})
}
