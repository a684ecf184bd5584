package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sierra-health/medequip-api/cache"
	"github.com/sierra-health/medequip-api/config"
	"github.com/sierra-health/medequip-api/logger"
	"github.com/sierra-health/medequip-api/middleware"
	"github.com/sierra-health/medequip-api/repository"
	"github.com/sierra-health/medequip-api/routes"
	"github.com/sierra-health/medequip-api/services"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.GoEnv, cfg.LogLevel)
	defer func() { _ = logger.Log.Sync() }()

	logger.Log.Info("Starting Medical Equipment API server...",
		zap.String("env", cfg.GoEnv),
		zap.String("db_driver", cfg.DBDriver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to open store", zap.Error(err))
	}
	defer closeStore()

	if cfg.RedisURL != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Warn("Redis unavailable, serving without cache", zap.Error(err))
		} else {
			defer rdb.Close()
			store = cache.Wrap(store, rdb, cfg.CacheTTL)
			logger.Log.Info("Read-through cache enabled", zap.Duration("ttl", cfg.CacheTTL))
		}
	}

	if _, err := services.InitImageService(ctx, cfg); err != nil {
		logger.Log.Warn("Image uploads disabled", zap.String("provider", cfg.ImageProvider), zap.Error(err))
	}

	dispatcher := startDispatcher(ctx, cfg, store)

	adminAuth, err := middleware.AdminAuth(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to set up admin authentication", zap.Error(err))
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:    cfg,
		Store:     store,
		AdminAuth: adminAuth,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server is running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shut down", zap.Error(err))
	}
	if dispatcher != nil {
		dispatcher.Wait()
	}
	logger.Log.Info("Server stopped")
}

// openStore connects to the database selected by DB_DRIVER and prepares its schema
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		db, err := config.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		closeFn := func() {
			if err := config.CloseMongo(); err != nil {
				logger.Log.Error("Failed to disconnect MongoDB", zap.Error(err))
			}
		}
		return repository.NewMongoStore(db), closeFn, nil
	default:
		if err := config.ConnectDatabase(cfg); err != nil {
			return nil, nil, err
		}
		db := config.GetDB()
		if err := repository.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Log.Info("Database migration completed successfully")
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repository.NewGormStore(db), closeFn, nil
	}
}

// startDispatcher launches the outbox worker, or returns nil when no mailer can be configured
func startDispatcher(ctx context.Context, cfg *config.Config, store *repository.Store) *services.NotificationDispatcher {
	mailer, err := services.NewSMTPMailer(cfg)
	if err != nil {
		logger.Log.Warn("Email delivery disabled, notifications stay queued", zap.Error(err))
		return nil
	}
	if cfg.AdminEmail == "" {
		logger.Log.Warn("ADMIN_EMAIL not set, admin inquiry emails will be skipped")
	}
	dispatcher := services.NewNotificationDispatcher(store.Notifications, mailer, cfg.NotifyPollInterval, cfg.NotifyMaxAttempts)
	dispatcher.Start(ctx)
	return dispatcher
}
