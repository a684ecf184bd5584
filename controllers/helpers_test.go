package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/models"
	"github.com/sierra-health/medequip-api/repository"
	"github.com/sierra-health/medequip-api/services"
	"github.com/sierra-health/medequip-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string                   `json:"code"`
		Message string                   `json:"message"`
		Details []map[string]interface{} `json:"details"`
	} `json:"error"`
}

type testEnv struct {
	router *gin.Engine
	store  *repository.Store
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	store := repository.NewGormStore(db)
	catalog := services.NewCatalogService(store, 3)

	products := NewProductController(catalog)
	categories := NewCategoryController(catalog)
	orders := NewOrderController(services.NewOrderService(store, "admin@medequip.test"))
	reviews := NewReviewController(services.NewReviewService(store))
	crm := NewCRMController(services.NewStatsService(store))

	router := gin.New()
	router.GET("/health", HealthCheck)
	router.GET("/api/database/status", DatabaseStatus("sqlite", store.Ping))

	router.POST("/api/products/add", products.Create)
	router.GET("/api/products/get/all", products.List)
	router.GET("/api/products/get/details/:id", products.Details)
	router.GET("/api/products/get/by-category/:categoryId", products.ByCategory)
	router.GET("/api/products/get/top-selling", products.TopSelling)
	router.PUT("/api/products/update/:id", products.Update)
	router.DELETE("/api/products/delete/:id", products.Delete)
	router.POST("/api/products/upload-image", UploadImage)
	router.DELETE("/api/products/delete-image", DeleteImage)

	router.POST("/api/categories/create", categories.Create)
	router.GET("/api/categories/get/all", categories.List)
	router.GET("/api/categories/get/with-counts", categories.ListWithCounts)
	router.PUT("/api/categories/update/:id", categories.Update)
	router.DELETE("/api/categories/delete/:id", categories.Delete)

	router.POST("/api/orders/create", orders.Create)
	router.GET("/api/orders/get/orders", orders.List)
	router.PATCH("/api/orders/admin/:orderId/status", orders.UpdateStatus)

	router.POST("/api/reviews/submit", reviews.Submit)
	router.GET("/api/reviews/product/:productId", reviews.ProductReviews)
	router.GET("/api/reviews/admin/pending", reviews.Pending)
	router.GET("/api/reviews/admin/product/:productId", reviews.AllForProduct)
	router.PATCH("/api/reviews/admin/:reviewId/status", reviews.UpdateStatus)

	router.GET("/api/crm/crm/admin", crm.Dashboard)

	return &testEnv{router: router, store: store, db: db}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (e *testEnv) createCategory(t *testing.T, name string) models.Category {
	t.Helper()
	w, env := e.request(t, http.MethodPost, "/api/categories/create", gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Category](t, env.Data)
}

func (e *testEnv) createProduct(t *testing.T, name, categoryID string, price float64) models.Product {
	t.Helper()
	w, env := e.request(t, http.MethodPost, "/api/products/add", gin.H{
		"name":     name,
		"brand":    "Zeiss",
		"category": categoryID,
		"price":    price,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Product](t, env.Data)
}
