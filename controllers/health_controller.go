package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/logger"
)

// HealthCheck handles GET /health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Medical Equipment API is running",
	})
}

// DatabaseStatus handles GET /api/database/status using the store's ping
func DatabaseStatus(driver string, ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := ping(ctx); err != nil {
			logger.Error(c, "Database ping failed", err)
			respondError(c, http.StatusServiceUnavailable, "DATABASE_CONNECTION_ERROR", "Database connection failed")
			return
		}

		respondSuccess(c, http.StatusOK, gin.H{
			"message": "Database connected",
			"driver":  driver,
		})
	}
}
