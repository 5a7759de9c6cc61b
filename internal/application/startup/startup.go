// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/caching/cleanup"
	schema "github.com/AtRiskMedia/storefront-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize runs the startup sequence and blocks until SIGINT or SIGTERM.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	// Step 1: Create channeled logger
	log.Println("Initializing logger...")
	logger, err := NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Logger initialized - switching to channeled logging", "level", config.LogLevel)

	// Step 2: Open database
	logger.Startup().Info("Opening database...", "driver", config.DBDriver)
	db, err := database.Open(logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Step 3: Ensure schema
	logger.Startup().Info("Ensuring database schema...")
	startSchemaTime := time.Now()
	if err := schema.NewTableCreator().CreateSchema(ctx, db.DB); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}
	logger.Startup().Info("Database schema ready", "duration", time.Since(startSchemaTime))

	if err := ensureJWTSecret(logger); err != nil {
		db.Close()
		return err
	}

	// Step 4: Create dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer := container.NewContainer(db, logger, container.Options{})
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 5: Seed admin account
	seeded, err := appContainer.AuthService.EnsureAdmin(ctx, config.AdminEmail, config.AdminPassword)
	if err != nil {
		logger.Startup().Error("Admin seeding failed", "error", err.Error())
	} else if seeded {
		logger.Startup().Info("Seeded admin account from environment")
	}
	if config.AllowSignup {
		logger.Startup().Warn("Public sign-up is open; unset ALLOW_SIGNUP once the admin exists")
	} else if config.AdminEmail == "" {
		logger.Startup().Warn("Sign-up is closed and ADMIN_EMAIL is unset; only existing admins can sign in")
	}

	// Step 6: Start background cleanup worker
	logger.Startup().Info("Starting background cleanup worker...")
	cleanupWorker := cleanup.NewWorker(appContainer.Cache, cleanup.NewConfig(), logger)
	go cleanupWorker.Start(ctx)

	// Step 7: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	startServerTime := time.Now()
	httpServer := server.New(config.Port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", config.Port, "duration", time.Since(startServerTime))

	// Step 8: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port,
		"publicBaseURL", config.PublicBaseURL)

	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}

	shutdownStart := time.Now()

	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing database...")
	if err := db.Close(); err != nil {
		logger.Shutdown().Error("Error closing database", "error", err.Error())
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// NewLogger builds the channeled logger from the central config package.
func NewLogger() (*logging.ChanneledLogger, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.JSONFormat = config.LogJSON
	cfg.OutputToFile = config.LogToFile
	cfg.LogDirectory = config.LogDir
	level, err := logging.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg.DefaultLevel = level
	return logging.NewChanneledLogger(cfg)
}

// ensureJWTSecret swaps the placeholder secret for a random one. Admin
// sessions then last only as long as the process.
func ensureJWTSecret(logger *logging.ChanneledLogger) error {
	if config.JWTSecret != config.DefaultJWTSecret {
		return nil
	}
	secret, err := security.GenerateSecureKey(64)
	if err != nil {
		return err
	}
	config.JWTSecret = secret
	logger.Auth().Warn("JWT_SECRET not set; using an ephemeral secret, admin sessions end on restart")
	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
