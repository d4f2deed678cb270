package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shala/cmd/consumers/jobs"
	"shala/internal/config"
	"shala/internal/consumers"
	"shala/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	log := logger.Get()
	log.Info("Starting consumers service...")

	// Separate client ID so the streaming server tracks this process apart
	// from the API.
	cfg.NATS.ClientID = "shala-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	expiryJob := jobs.NewPackageExpiryJob(consumerService.Repos().UserPackages)
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	expiryJob.Start(jobCtx)

	log.Info("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service...")

	expiryJob.Stop()
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
