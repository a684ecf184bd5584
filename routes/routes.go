package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/config"
	"github.com/sierra-health/medequip-api/controllers"
	"github.com/sierra-health/medequip-api/logger"
	"github.com/sierra-health/medequip-api/middleware"
	"github.com/sierra-health/medequip-api/repository"
	"github.com/sierra-health/medequip-api/services"
)

// Dependencies are the pieces the HTTP layer is built from
type Dependencies struct {
	Config *config.Config
	Store  *repository.Store
	// AdminAuth guards every admin route; see middleware.AdminAuth
	AdminAuth []gin.HandlerFunc
}

// NewRouter creates the gin engine with the global middleware and every API route registered
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(logger.RequestID())
	router.Use(logger.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(deps.Config.CORSAllowedOrigins)))

	RegisterRoutes(router, deps)
	return router
}

// RegisterRoutes wires the controllers to their paths
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	catalog := services.NewCatalogService(deps.Store, cfg.TopSellingLimit)

	products := controllers.NewProductController(catalog)
	categories := controllers.NewCategoryController(catalog)
	orders := controllers.NewOrderController(services.NewOrderService(deps.Store, cfg.AdminEmail))
	reviews := controllers.NewReviewController(services.NewReviewService(deps.Store))
	crm := controllers.NewCRMController(services.NewStatsService(deps.Store))

	admin := deps.AdminAuth
	publicWrite := middleware.RateLimit(cfg.RateLimitPerMinute)

	router.GET("/health", controllers.HealthCheck)

	api := router.Group("/api")
	api.GET("/database/status", controllers.DatabaseStatus(cfg.DBDriver, deps.Store.Ping))

	productRoutes := api.Group("/products")
	{
		productRoutes.GET("/get/all", products.List)
		productRoutes.GET("/get/details/:id", products.Details)
		productRoutes.GET("/get/by-category/:categoryId", products.ByCategory)
		productRoutes.GET("/get/top-selling", products.TopSelling)

		productAdmin := productRoutes.Group("", admin...)
		productAdmin.POST("/add", products.Create)
		productAdmin.PUT("/update/:id", products.Update)
		productAdmin.DELETE("/delete/:id", products.Delete)
		productAdmin.POST("/upload-image", controllers.UploadImage)
		productAdmin.DELETE("/delete-image", controllers.DeleteImage)
	}

	categoryRoutes := api.Group("/categories")
	{
		categoryRoutes.GET("/get/all", categories.List)
		categoryRoutes.GET("/get/with-counts", categories.ListWithCounts)

		categoryAdmin := categoryRoutes.Group("", admin...)
		categoryAdmin.POST("/create", categories.Create)
		categoryAdmin.PUT("/update/:id", categories.Update)
		categoryAdmin.DELETE("/delete/:id", categories.Delete)
	}

	orderRoutes := api.Group("/orders")
	{
		orderRoutes.POST("/create", publicWrite, orders.Create)

		orderAdmin := orderRoutes.Group("", admin...)
		orderAdmin.GET("/get/orders", orders.List)
		orderAdmin.PATCH("/admin/:orderId/status", orders.UpdateStatus)
	}

	reviewRoutes := api.Group("/reviews")
	{
		reviewRoutes.POST("/submit", publicWrite, reviews.Submit)
		reviewRoutes.GET("/product/:productId", reviews.ProductReviews)

		reviewAdmin := reviewRoutes.Group("/admin", admin...)
		reviewAdmin.GET("/pending", reviews.Pending)
		reviewAdmin.GET("/product/:productId", reviews.AllForProduct)
		reviewAdmin.PATCH("/:reviewId/status", reviews.UpdateStatus)
	}

	api.GET("/crm/crm/admin", append(append([]gin.HandlerFunc{}, admin...), crm.Dashboard)...)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
