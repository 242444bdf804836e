package main

import (
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"companyhub/internal/caching"
	"companyhub/internal/config"
	"companyhub/internal/handlers"
	"companyhub/internal/identity"
	"companyhub/internal/jobs"
	"companyhub/internal/repositories"
	"companyhub/internal/services"
	"companyhub/pkg/database"
)

const version = "1.0.0"

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Relational store
	pool, err := database.NewPool(cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Identity provider client, shared by all requests
	verifier, err := identity.NewJWKSVerifier(cfg.Identity.JWKSURL)
	if err != nil {
		logger.Fatal("failed to initialize identity token verifier", zap.Error(err))
	}
	provider := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.ServiceKey, verifier)

	// Cache
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	appUserRepo := repositories.NewAppUserRepo(pool)
	orphanRepo := repositories.NewOrphanRepo(pool)

	// Provisioning service
	provisionSvc := services.NewProvisionService(provider, tenantRepo, appUserRepo, orphanRepo, logger)

	// Handlers
	provisionHandlers := handlers.NewProvisionHandlers(provisionSvc, cacheSvc, logger)

	// Background orphan cleanup
	reaper, err := jobs.NewOrphanReaper(orphanRepo, tenantRepo, provider, logger,
		cfg.ReaperInterval(), cfg.Reaper.BatchSize)
	if err != nil {
		logger.Fatal("failed to initialize orphan reaper", zap.Error(err))
	}
	reaper.Start()
	defer reaper.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", func(c echo.Context) error {
		return handlers.ReadinessCheck(c, pool)
	})

	// API routes
	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", provisionHandlers.Signup)
	auth.POST("/login", provisionHandlers.Login)

	users := v1.Group("/users")
	users.POST("/invite", provisionHandlers.Invite)
	users.GET("/check-username", provisionHandlers.CheckUsername)

	logger.Info("server starting",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port))
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Server.Port)))
}
