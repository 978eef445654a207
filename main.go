package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/andersoncassiani/chatsuite/environments"
	"github.com/andersoncassiani/chatsuite/handlers"
	"github.com/andersoncassiani/chatsuite/internal/directory"
	"github.com/andersoncassiani/chatsuite/internal/repository"
	"github.com/andersoncassiani/chatsuite/internal/scheduler"
	"github.com/andersoncassiani/chatsuite/internal/service"
	"github.com/andersoncassiani/chatsuite/pkg/database"
	"github.com/andersoncassiani/chatsuite/pkg/logger"
	"github.com/andersoncassiani/chatsuite/pkg/redis"
	"github.com/andersoncassiani/chatsuite/pkg/relay"
	"github.com/andersoncassiani/chatsuite/pkg/tasksource"
	"github.com/andersoncassiani/chatsuite/pkg/twilio"
	"github.com/andersoncassiani/chatsuite/pkg/validator"
	"github.com/andersoncassiani/chatsuite/routes"

	_ "github.com/andersoncassiani/chatsuite/docs" // swagger docs
)

// @title ChatSuite Admin API
// @version 1.0
// @description WhatsApp bot administration dashboard and task notification relay

// @contact.name API Support
// @contact.email anderson.cassiani@chatsuite.dev

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	logger.Init()

	// Optional .env for local development; real deployments set env directly.
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}

	// Load config
	cfg := environments.Load()

	// Hard-fail if required settings are missing
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	logger.Infof("Starting ChatSuite Admin Service...")

	// Parse the assignee directory up front so a bad entry fails at boot,
	// not in the middle of a batch.
	assigneeDir, err := directory.Parse(cfg.Assignees)
	if err != nil {
		logger.Fatalf("Invalid assignee directory: %v", err)
	}

	// Bot DB: conversation history written by the bot, read-only here.
	botDB, err := database.NewMySQLDB(cfg.BotDatabase)
	if err != nil {
		logger.Fatalf("Failed to connect to bot database: %v", err)
	}

	// App DB: task notification records owned by this service.
	appDB, err := database.NewMySQLDB(cfg.AppDatabase)
	if err != nil {
		logger.Fatalf("Failed to connect to app database: %v", err)
	}

	// Run migrations on our own schema only
	if err := database.RunMigrations(appDB); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Init redis
	var redisClient *redis.Client
	redisClient, err = redis.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warnf("Redis not available, caching disabled: %v", err)
		redisClient = nil
	}

	// Outbound clients
	twilioClient, err := twilio.NewClient(cfg.Twilio)
	if err != nil {
		logger.Fatalf("Failed to configure Twilio client: %v", err)
	}
	taskClient := tasksource.NewClient(cfg.TaskSource)
	relayClient := relay.NewClient(cfg.Relay)

	// Seed data (dev only)
	if os.Getenv("SEED_DATA") == "true" {
		if err := database.SeedBotData(botDB, twilioClient.From()); err != nil {
			logger.Warnf("Failed to seed bot data: %v", err)
		}
	}

	// Initialize repositories
	messageRepo := repository.NewMessageRepository(botDB)
	notificationRepo := repository.NewNotificationRepository(appDB)

	// Initialize services
	threadService := service.NewThreadService(messageRepo, twilioClient.From())
	notificationService := service.NewNotificationService(
		notificationRepo,
		twilioClient,
		taskClient,
		redisClient,
		assigneeDir,
		cfg.SendDelay,
	)
	broadcastService := service.NewBroadcastService(twilioClient, cfg.SendDelay)
	replyService := service.NewReplyService(relayClient, twilioClient.From(), cfg.Relay.DefaultPauseMinutes)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize scheduler
	sched := scheduler.NewScheduler(
		notificationService,
		cfg.Scheduler.Interval,
		cfg.Alert.WebhookURL,
		cfg.Alert.IterationCount,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(botDB, appDB, redisClient)
	conversationHandler := handlers.NewConversationHandler(threadService, replyService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	broadcastHandler := handlers.NewBroadcastHandler(broadcastService)
	schedulerHandler := handlers.NewSchedulerHandler(sched, ctx, cfg)

	// Auto-start scheduler
	if cfg.Scheduler.AutoStart {
		logger.Infof("Auto-starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			logger.Warnf("Failed to auto-start scheduler: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"x-cs-auth-key",
		},
	}))

	// Setup routes
	routes.RegisterRoutes(
		e,
		healthHandler,
		conversationHandler,
		notificationHandler,
		broadcastHandler,
		schedulerHandler,
		cfg,
	)

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

	// Cancel context to signal all goroutines to stop
	cancel()

	// Stop scheduler first (with timeout)
	if sched.IsRunning() {
		logger.Infof("Stopping scheduler...")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()

		done := make(chan error, 1)
		go func() {
			done <- sched.Stop()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Errorf("Error stopping scheduler: %v", err)
			} else {
				logger.Infof("Scheduler stopped successfully")
			}
		case <-stopCtx.Done():
			logger.Warnf("Scheduler stop timeout, forcing shutdown")
		}
	}

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	// Close database connections
	logger.Infof("Closing database connections...")
	if err := botDB.Close(); err != nil {
		logger.Errorf("Error closing bot database: %v", err)
	}
	if err := appDB.Close(); err != nil {
		logger.Errorf("Error closing app database: %v", err)
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
