package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported storage drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Supported image hosts
const (
	ImageProviderS3         = "s3"
	ImageProviderCloudinary = "cloudinary"
)

// Config holds all application configuration
type Config struct {
	Port     string
	GoEnv    string
	LogLevel string

	DBDriver      string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	RedisURL string
	CacheTTL time.Duration

	Auth0Domain   string
	Auth0Audience string

	ImageProvider      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	CloudinaryURL      string
	CloudinaryFolder   string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	AdminEmail   string
	MailFromName string

	TopSellingLimit    int
	NotifyMaxAttempts  int
	NotifyPollInterval time.Duration
	RateLimitPerMinute int
	CORSAllowedOrigins []string
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		Port:     getEnv("PORT", "5000"),
		GoEnv:    getEnv("GO_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "medequip"),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),

		ImageProvider:      strings.ToLower(getEnv("IMAGE_PROVIDER", ImageProviderS3)),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CloudinaryURL:      getEnv("CLOUDINARY_URL", ""),
		CloudinaryFolder:   getEnv("CLOUDINARY_FOLDER", "products"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPass:     getEnv("SMTP_PASS", ""),
		AdminEmail:   getEnv("ADMIN_EMAIL", ""),
		MailFromName: getEnv("MAIL_FROM_NAME", "Medical Equipment"),

		TopSellingLimit:    getEnvInt("TOP_SELLING_LIMIT", 3),
		NotifyMaxAttempts:  getEnvInt("NOTIFY_MAX_ATTEMPTS", 5),
		NotifyPollInterval: getEnvDuration("NOTIFY_POLL_INTERVAL", 10*time.Second),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	current = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case DriverSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = "file:medequip.db"
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when DB_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.ImageProvider {
	case ImageProviderS3, ImageProviderCloudinary:
	default:
		return fmt.Errorf("unsupported IMAGE_PROVIDER %q", c.ImageProvider)
	}

	if c.TopSellingLimit <= 0 {
		return fmt.Errorf("TOP_SELLING_LIMIT must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// AuthEnabled reports whether admin routes are protected by JWT validation
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != ""
}

// GetConfig returns the configuration loaded by the last successful Load call
func GetConfig() *Config {
	return current
}

// SetConfig replaces the current configuration (primarily for testing)
func SetConfig(cfg *Config) {
	current = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s (%q), using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s (%q), using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
