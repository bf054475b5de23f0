package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-tools-server/internal/config"
	"pdf-tools-server/internal/handler"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}
	// Wiring
	container, err := config.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	cfg := container.Config

	// Handlers
	toolHandler := handler.NewToolHandler(
		container.PDFProcessor,
		cfg.GetMaxFileSize(),
		container.Logger,
	)

	routerConfig := handler.RouterConfig{
		ToolHandler:    toolHandler,
		MetricsHandler: container.MetricsHandler,
		AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		Logging:        handler.LoggingMiddleware(container.Logger),
		RateLimit: handler.RateLimitMiddleware(handler.RateLimitConfig{
			RequestsPerMinute: cfg.GetRateLimitRPM(),
			Burst:             cfg.GetRateLimitBurst(),
		}, container.Logger),
	}
	if container.AuthService != nil {
		routerConfig.AuthHandler = handler.NewAuthHandler()
		routerConfig.AuthMiddleware = handler.NewAuthMiddleware(
			container.AuthService,
			container.Logger,
		).Middleware
	}

	// Router
	router := handler.NewRouter(routerConfig)

	// start server
	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr, "temp_root", container.Workspaces.Root())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()
	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")
	// In-flight requests finish and release their workspaces before exit.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		container.Logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	container.Logger.Info("Server exited")
}
