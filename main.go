package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/onurcolak/messaging-gateway/environments"
	"github.com/onurcolak/messaging-gateway/handlers"
	"github.com/onurcolak/messaging-gateway/internal/middlewares"
	"github.com/onurcolak/messaging-gateway/internal/repository"
	"github.com/onurcolak/messaging-gateway/internal/scheduler"
	"github.com/onurcolak/messaging-gateway/internal/service"
	"github.com/onurcolak/messaging-gateway/pkg/database"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
	"github.com/onurcolak/messaging-gateway/pkg/metrics"
	"github.com/onurcolak/messaging-gateway/pkg/provider"
	"github.com/onurcolak/messaging-gateway/pkg/redis"
	"github.com/onurcolak/messaging-gateway/pkg/response"
	"github.com/onurcolak/messaging-gateway/pkg/validator"
	"github.com/onurcolak/messaging-gateway/routes"

	_ "github.com/onurcolak/messaging-gateway/docs" // swagger docs
)

// @title Messaging Gateway API
// @version 1.0
// @description Unified SMS, MMS and email gateway with conversation threading and provider webhooks
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /

// @schemes http https
func main() {
	// Load config
	cfg := environments.Load()

	logger.Init(cfg.Log)

	// Missing secrets only disable the features that need them
	if cfg.Auth.AdminAPIKey == "" {
		logger.Warnf("ADMIN_API_KEY is not set, sweeper admin routes will answer 500")
	}
	if cfg.Webhook.SkipAuth {
		logger.Warnf("SKIP_WEBHOOK_AUTH is set, webhook signatures are not verified")
	}

	logger.Infof("Starting Messaging Gateway (env=%s)...", cfg.Server.Env)

	// Init DB
	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Seed data
	if os.Getenv("SEED_DATA") == "true" {
		if err := database.SeedTestData(ctx, db); err != nil {
			logger.Warnf("Failed to seed test data: %v", err)
		}
	}

	// Init redis; without it rate limits are kept per instance
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Warnf("Redis not available, using in-process rate limits: %v", err)
			redisClient = nil
		}
	}

	gatewayMetrics := metrics.NewGatewayMetrics(nil)

	// Initialize providers
	var (
		smsProvider   provider.SMSProvider
		emailProvider provider.EmailProvider
	)
	switch cfg.Provider.Mode {
	case environments.ProviderModeRelay:
		relay := provider.NewRelayClient(cfg.Provider)
		logger.Infof("Provider relay configured: %s", relay.GetURL())
		smsProvider, emailProvider = relay.SMS(), relay.Email()
	default:
		latency := provider.Latency{Min: cfg.Provider.MinLatency, Max: cfg.Provider.MaxLatency}
		logger.Infof("Using mock providers (latency %v-%v)", latency.Min, latency.Max)
		smsProvider, emailProvider = provider.NewMockSMSProvider(latency), provider.NewMockEmailProvider(latency)
	}

	// Initialize repositories
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	eventRepo := repository.NewProcessedEventRepository(db)

	// Initialize services
	conversationService := service.NewConversationService(conversationRepo, messageRepo)
	messageService := service.NewMessageService(conversationService, messageRepo, smsProvider, emailProvider, gatewayMetrics)
	inboundService := service.NewInboundService(conversationService, messageRepo, gatewayMetrics)
	statusService := service.NewStatusService(messageRepo, eventRepo, cfg.Status.GuardRegressions, gatewayMetrics)

	// Initialize sweeper
	sweeper := scheduler.NewScheduler(messageRepo, cfg.Sweeper.Interval, cfg.Sweeper.StaleAfter, gatewayMetrics)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	var counter middlewares.WindowCounter
	if redisClient != nil {
		healthHandler.WithRedis(redisClient)
		counter = redisClient
	}

	h := routes.Handlers{
		Health:       healthHandler,
		Message:      handlers.NewMessageHandler(messageService),
		Conversation: handlers.NewConversationHandler(conversationService),
		Webhook:      handlers.NewWebhookHandler(inboundService, statusService),
		Sweeper:      handlers.NewSweeperHandler(sweeper, ctx),
	}

	// Auto-start sweeper
	if cfg.Sweeper.AutoStart {
		logger.Infof("Auto-starting stale message sweeper...")
		if err := sweeper.Start(ctx); err != nil {
			logger.Warnf("Failed to auto-start sweeper: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		TargetHeader: response.HeaderCorrelationID,
		Generator: func() string {
			return "req_" + uuid.NewString()
		},
	}))
	e.Use(middlewares.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			response.HeaderCorrelationID,
			middlewares.APIKeyHeader,
		},
		ExposeHeaders: []string{
			response.HeaderCorrelationID,
			middlewares.HeaderRateLimitLimit,
			middlewares.HeaderRateLimitRemaining,
			middlewares.HeaderRateLimitReset,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, h, counter, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Stop sweeper first (with timeout)
	if sweeper.IsRunning() {
		logger.Infof("Stopping sweeper...")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()

		done := make(chan error, 1)
		go func() {
			done <- sweeper.Stop()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Errorf("Error stopping sweeper: %v", err)
			} else {
				logger.Infof("Sweeper stopped successfully")
			}
		case <-stopCtx.Done():
			logger.Warnf("Sweeper stop timeout, forcing shutdown")
		}
	}

	// Shutdown HTTP server (with timeout); in-flight sends finish their writes
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Close database connection
	logger.Infof("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}
