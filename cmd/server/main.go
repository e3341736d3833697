package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"kevdhev/personal-finance-api/internal/api/controller"
	"kevdhev/personal-finance-api/internal/api/repository"
	"kevdhev/personal-finance-api/internal/api/service"
	"kevdhev/personal-finance-api/internal/auth"
	"kevdhev/personal-finance-api/internal/config"
	"kevdhev/personal-finance-api/internal/db"
	"kevdhev/personal-finance-api/internal/logger"
	"kevdhev/personal-finance-api/internal/server"
	"kevdhev/personal-finance-api/internal/telemetry"
)

func main() {
	ctx := context.Background()

	// Load configuration. A missing SECRET_KEY aborts startup here.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(cfg.OtelEndpoint)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(cfg.SlogLevel())

	// Initialize SQLite DB
	pool, err := db.Connect(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.InitSchema(pool); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	tokens := auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.AccessTokenTTL)

	// Create repositories
	userRepo := repository.NewUserRepository(pool)
	movementRepo := repository.NewMovementRepository(pool)

	// Create services
	userService := service.NewUserService(userRepo, tokens)
	movementService := service.NewMovementService(movementRepo)

	// Create controllers
	userController := controller.NewUserController(userService)
	movementController := controller.NewMovementController(movementService)

	// Create the Gin-based server
	srv := server.NewServer(tokens, userService, userController, movementController)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", slog.Int("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("server exiting")
}
