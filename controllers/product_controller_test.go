package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct_Success(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory(t, "Slit Lamps")

	w, resp := env.request(t, http.MethodPost, "/api/products/add", gin.H{
		"name":        "SL-115",
		"brand":       "Zeiss",
		"category":    category.ID,
		"price":       4500,
		"description": "Slit lamp",
		"images":      []string{"https://img.example/sl115.png"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
	product := decode[models.Product](t, resp.Data)
	assert.Equal(t, "SL-115", product.Name)
	assert.Equal(t, category.ID, product.CategoryID)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Slit Lamps", product.Category.Name)
	assert.Equal(t, []string{}, product.ReviewIDs)
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory(t, "Slit Lamps")

	tests := []struct {
		name         string
		body         interface{}
		expectedCode string
	}{
		{"missing name", gin.H{"category": category.ID, "price": 10}, "VALIDATION_ERROR"},
		{"missing category", gin.H{"name": "SL-115", "price": 10}, "VALIDATION_ERROR"},
		{"blank name", gin.H{"name": "  ", "category": category.ID}, "VALIDATION_ERROR"},
		{"negative price", gin.H{"name": "SL-115", "category": category.ID, "price": -5}, "VALIDATION_ERROR"},
		{"malformed image url", gin.H{"name": "SL-115", "category": category.ID, "images": []string{"not a url"}}, "VALIDATION_ERROR"},
		{"malformed json", `{"name":`, "VALIDATION_ERROR"},
		{"unknown category", gin.H{"name": "SL-115", "category": "missing"}, "UNKNOWN_CATEGORY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.request(t, http.MethodPost, "/api/products/add", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count, "no product persisted on validation failure")
}

func TestCreateProduct_ValidationDetailsNameFields(t *testing.T) {
	env := newTestEnv(t)

	_, resp := env.request(t, http.MethodPost, "/api/products/add", gin.H{"price": 1})
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "name", resp.Error.Details[0]["field"])
	assert.Equal(t, "name is required", resp.Error.Details[0]["message"])
	assert.Equal(t, "category", resp.Error.Details[1]["field"])
}

func TestListProducts_Pagination(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory(t, "Lenses")
	for _, name := range []string{"A", "B", "C"} {
		env.createProduct(t, name, category.ID, 10)
	}

	w, resp := env.request(t, http.MethodGet, "/api/products/get/all?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.ProductPage](t, resp.Data)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Products, 2)

	w2, _ := env.request(t, http.MethodGet, "/api/products/get/all?page=1&limit=2", nil)
	assert.Equal(t, w.Body.String(), w2.Body.String(), "same page twice returns identical results")

	_, resp = env.request(t, http.MethodGet, "/api/products/get/all?page=abc&limit=-1", nil)
	page = decode[models.ProductPage](t, resp.Data)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Products, 3)
}

func TestListProducts_FarPagesAreEmpty(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory(t, "Slit Lamps")
	for _, name := range []string{"A", "B", "C"} {
		env.createProduct(t, name, category.ID, 100)
	}

	for _, query := range []string{
		"page=9223372036854775807&limit=2",
		"page=184467440737095517&limit=100",
		"page=3&limit=2",
	} {
		w, resp := env.request(t, http.MethodGet, "/api/products/get/all?"+query, nil)
		require.Equal(t, http.StatusOK, w.Code, query)
		page := decode[models.ProductPage](t, resp.Data)
		assert.Empty(t, page.Products, query)
		assert.Equal(t, int64(3), page.Total, query)
		assert.Equal(t, 2, page.TotalPages, query)
	}
}

func TestProductDetails(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory(t, "Lenses")
	product := env.createProduct(t, "90D", category.ID, 300)

	w, resp := env.request(t, http.MethodGet, "/api/products/get/details/"+product.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, product.ID, decode[models.Product](t, resp.Data).ID)

	w, resp = env.request(t, http.MethodGet, "/api/products/get/details/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", resp.Error.Code)
}

func TestProductsByCategory_Exclude(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory(t, "Lenses")
	a := env.createProduct(t, "90D", category.ID, 300)
	b := env.createProduct(t, "78D", category.ID, 280)

	w, resp := env.request(t, http.MethodGet, "/api/products/get/by-category/"+category.ID+"?exclude="+a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	products := decode[[]models.Product](t, resp.Data)
	require.Len(t, products, 1)
	assert.Equal(t, b.ID, products[0].ID)
}

func TestTopSelling_Empty(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.request(t, http.MethodGet, "/api/products/get/top-selling", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory(t, "Lenses")
	product := env.createProduct(t, "90D", category.ID, 300)

	w, resp := env.request(t, http.MethodPut, "/api/products/update/"+product.ID, gin.H{
		"name": "90D Super", "category": category.ID, "price": 320, "isBestSeller": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Product](t, resp.Data)
	assert.Equal(t, "90D Super", updated.Name)
	assert.True(t, updated.IsBestSeller)

	w, resp = env.request(t, http.MethodPut, "/api/products/update/missing", gin.H{"name": "x", "category": category.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", resp.Error.Code)

	w, resp = env.request(t, http.MethodDelete, "/api/products/delete/"+product.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Product deleted"}`, string(resp.Data))

	w, _ = env.request(t, http.MethodDelete, "/api/products/delete/"+product.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
