package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"textclub_server/config"
	"textclub_server/internal/bootstrap"
	"textclub_server/pkg/logger"

	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	// Initialize logger early
	logger.Init(logger.Config{
		Level:   logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		Service: "textclub",
	})

	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	mode := flag.String("mode", "all", "Run mode: api, worker, all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	deps, cleanup, err := bootstrap.NewDependencies(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies: %v", err)
	}
	defer cleanup()

	switch *mode {
	case "api":
		runAPI(cfg, deps)
	case "worker":
		runWorker(cfg, deps)
	case "all":
		worker := bootstrap.NewWorker(cfg, deps)
		worker.Start()
		defer worker.Stop()
		runAPI(cfg, deps)
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}
}

func runAPI(cfg *config.Config, deps *bootstrap.Dependencies) {
	app := bootstrap.NewAPI(cfg, deps)

	// Graceful shutdown with timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- app.Shutdown()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Error("Error shutting down: %v", err)
			} else {
				logger.Info("API server shut down gracefully")
			}
		case <-ctx.Done():
			logger.Warn("API shutdown timed out, forcing exit")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

func runWorker(cfg *config.Config, deps *bootstrap.Dependencies) {
	worker := bootstrap.NewWorker(cfg, deps)
	worker.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down worker (timeout: %v)...", shutdownTimeout)

	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Worker shut down gracefully")
	case <-time.After(shutdownTimeout):
		logger.Warn("Worker shutdown timed out, forcing exit")
	}
}
