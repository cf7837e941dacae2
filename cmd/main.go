/*
Package main is the entry point of the Acertax Connect server.

It loads configuration, initializes logging, wires the account store, directory, assistant
and avatar storage, serves the HTTP API and WebSocket workspaces, and shuts down gracefully
on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connect/internal/app/assistant"
	"connect/internal/app/db"
	"connect/internal/app/directory"
	"connect/internal/app/identity"
	"connect/internal/app/storage"
	"connect/internal/configs"
	"connect/internal/handler"
	"connect/internal/pkg/logx"
	"connect/internal/pkg/pow"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("allowed_domain", cfg.AllowedEmailDomain).
		Str("logout_policy", string(cfg.LogoutPolicy)).
		Int("pow_difficulty", cfg.PowDifficulty).
		Bool("storage_enabled", cfg.StorageEnabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Accounts and directory
	var (
		store identity.AccountStore
		dir   directory.Provider
	)
	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to open database")
		}
		defer pool.Close()

		accounts := identity.NewPostgresStore(pool)
		store, dir = accounts, directory.NewAccounts(accounts)
	} else {
		logx.Warn("DATABASE_URL not set; using in-memory accounts and the demo directory.")
		store, dir = identity.NewMemoryStore(), directory.NewStatic(directory.DemoColleagues)
	}

	identityService := identity.NewService(identity.Config{
		Secret:        cfg.JWTSecret,
		TTL:           cfg.SessionTTL,
		AllowedDomain: cfg.AllowedEmailDomain,
		AutoEnroll:    cfg.AutoEnroll,
	}, store)
	defer identityService.Shutdown()

	// Assistant
	var ai assistant.Provider = assistant.NewEcho()
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logx.Fatal(err, "Failed to initialize Gemini assistant")
		}
		ai = gemini
	} else {
		logx.Warn("GEMINI_API_KEY not set; the assistant answers offline.")
	}

	// Avatar storage
	var avatars *storage.Avatars
	if cfg.StorageEnabled() {
		storageService, err := storage.NewStorageService(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize storage service")
		}
		avatars = storage.NewAvatars(storageService)
	}

	deps := &handler.AppDeps{
		Config:    cfg,
		Identity:  identityService,
		Directory: dir,
		Assistant: ai,
		Avatars:   avatars,
		Pow:       pow.NewGuard(ctx, cfg.PowDifficulty),
	}

	// Setup HTTP server and routes
	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(ctx, deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Acertax Connect starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
