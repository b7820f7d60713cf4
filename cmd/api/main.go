package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/swiftride/admin-auth/internal/config"
	delivery "github.com/swiftride/admin-auth/internal/delivery/http"
	"github.com/swiftride/admin-auth/internal/repository"
	"github.com/swiftride/admin-auth/internal/usecase"

	_ "github.com/lib/pq" // Postgres driver
)

func main() {
	cfg := config.Load()

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	// Infrastructure
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(db); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Repositories
	adminRepo := repository.NewPostgresAdminRepo(db)
	auditRepo := repository.NewPostgresAuditRepo(db)
	tokenRepo := repository.NewRedisTokenRepo(rdb)

	// Business logic
	authUsecase := usecase.NewAuthUsecase(adminRepo, tokenRepo, auditRepo, logger, usecase.AuthConfig{
		JWTSecret:       cfg.JWTSecret,
		AccessTTL:       cfg.AccessTokenTTL,
		RefreshTTL:      cfg.RefreshTokenTTL,
		MaxAttempts:     cfg.MaxLoginAttempts,
		LockoutDuration: cfg.LockoutDuration,
	})
	adminUsecase := usecase.NewAdminUsecase(adminRepo, tokenRepo, auditRepo, logger)

	// HTTP surface
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.Secure())

	authGroup := e.Group("/admin/auth")
	authedAuthGroup := e.Group("/admin/auth", delivery.JWTMiddleware(authUsecase))
	usersGroup := e.Group("/admin/users", delivery.JWTMiddleware(authUsecase))

	delivery.NewAuthHandler(authGroup, authedAuthGroup, authUsecase, logger)
	delivery.NewMFAHandler(authedAuthGroup, authUsecase, logger)
	delivery.NewAdminHandler(usersGroup, adminUsecase, logger)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Start with graceful shutdown
	go func() {
		logger.Info("starting admin auth server", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
