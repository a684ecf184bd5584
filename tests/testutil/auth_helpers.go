package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// SetMockAuthContext marks the request as carrying a validated token with the given scopes
func SetMockAuthContext(c *gin.Context, subject string, issuer string, scopes []string) {
	middleware.SetClaims(c, MockValidatedClaims(subject, issuer, scopes))
}

// MockAdminAuth is a middleware standing in for JWT validation with an admin token
func MockAdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, "auth0|admin", "https://test.auth0.com/", []string{middleware.AdminScope})
		c.Next()
	}
}

// MockScopedAuth is a middleware standing in for JWT validation with the given scopes
func MockScopedAuth(scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, "auth0|user", "https://test.auth0.com/", scopes)
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
