package testutil

import (
	"os"
	"testing"

	"github.com/sierra-health/medequip-api/config"
)

// RequireTestEnvironment fails the test unless GO_ENV=test, so a stray run never touches a real database
func RequireTestEnvironment(t *testing.T) {
	t.Helper()
	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: tests must run with GO_ENV=test (current GO_ENV=%q)", env)
	}
}

// MustSetTestEnvironment sets GO_ENV=test for the duration of the test
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("GO_ENV", "test")
	RequireTestEnvironment(t)
}

// NewTestConfig returns a configuration for routers built over an in-memory sqlite store.
// Admin routes are open, the rate limit is high enough not to interfere, and every origin is allowed.
func NewTestConfig() *config.Config {
	return &config.Config{
		GoEnv:              "test",
		LogLevel:           "error",
		DBDriver:           config.DriverSQLite,
		DatabaseURL:        ":memory:",
		ImageProvider:      config.ImageProviderS3,
		AdminEmail:         "admin@medequip.test",
		MailFromName:       "Medical Equipment",
		TopSellingLimit:    3,
		NotifyMaxAttempts:  3,
		RateLimitPerMinute: 1000,
		CORSAllowedOrigins: []string{"*"},
	}
}
