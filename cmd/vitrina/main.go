// Package main is the entry point for the Vitrina catalog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vitrina/internal/cache"
	"vitrina/internal/config"
	"vitrina/internal/database"
	"vitrina/internal/handlers"
	"vitrina/internal/router"
	"vitrina/internal/session"
	"vitrina/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Local development reads a .env file; in containers the environment
	// is injected, so a missing file is not an error.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env")
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize session store backed by Valkey.
	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Initialize data stores.
	categoryStore := store.NewCategoryStore(db, cfg.FallbackCategorySlug)
	characteristicStore := store.NewCharacteristicStore(db)
	productStore := store.NewProductStore(db)
	manufacturerStore := store.NewManufacturerStore(db)
	cartStore := store.NewCartStore(db)
	orderStore := store.NewOrderStore(db)
	userStore := store.NewUserStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	// Initialize the catalog response cache in Valkey.
	catalogCache := cache.NewCatalogCache(valkeyClient, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	// Create handler groups with their dependencies.
	catalogHandlers := handlers.NewCatalog(categoryStore, characteristicStore, productStore, manufacturerStore, catalogCache)
	cartHandlers := handlers.NewCart(cartStore, orderStore, secureCookies)
	authHandlers := handlers.NewAuth(sessionStore, userStore)
	adminHandlers := handlers.NewAdmin(categoryStore, characteristicStore, productStore, manufacturerStore, orderStore, userStore, catalogCache, cacheLogStore)

	// Set up the Chi router with all middleware and routes.
	r := router.New(sessionStore, catalogHandlers, cartHandlers, authHandlers, adminHandlers)

	// Sweep abandoned carts once a day.
	cartSweeper := time.NewTicker(24 * time.Hour)
	defer cartSweeper.Stop()
	go func() {
		for range cartSweeper.C {
			removed, err := cartStore.DeleteStale(30)
			if err != nil {
				slog.Warn("stale cart sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("stale carts removed", "count", removed)
			}
		}
	}()

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
