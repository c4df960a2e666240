/*
Package main is the entry point for the StudyChat server.

It is responsible for loading configuration, initializing the global logging
system, connecting to the database and running migrations, ensuring the
default room exists, wiring the room Coordinator and HTTP routes, and
gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
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

	"studychat/internal/app/chat"
	"studychat/internal/app/db"
	"studychat/internal/app/identity"
	"studychat/internal/app/storage"
	"studychat/internal/configs"
	"studychat/internal/handler"
	"studychat/internal/pkg/logx"
	"studychat/internal/pkg/randx"
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
		Str("default_room", cfg.DefaultRoomName).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database and apply pending migrations.
	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to database")
	}
	defer pool.Close()

	store := db.NewStore(pool)

	// The permanent default room every user lands in.
	defaultRoom, err := store.EnsureDefaultRoom(ctx, randx.NewID(), cfg.DefaultRoomName, cfg.DefaultRoomDescription)
	if err != nil {
		logx.Fatal(err, "Failed to ensure default room")
	}
	logx.Info("Default room ready", "room_id", defaultRoom.ID, "room_name", defaultRoom.Name)

	storageService, err := storage.NewService(storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize avatar storage")
	}

	coordinator := chat.NewCoordinator(store, defaultRoom.ID)
	resolver := identity.NewResolver(cfg.JWTSecret, store)

	// Setup HTTP server and routes
	router := handler.Router(&handler.AppDeps{
		Coordinator: coordinator,
		Config:      cfg,
		Store:       store,
		Resolver:    resolver,
		Storage:     storageService,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("StudyChat server starting on http://localhost%s", serverAddr))
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

	coordinator.Shutdown()

	logx.Info("Server gracefully stopped.")
}
