package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/store"
	"fintrack/internal/store/sqlite"
	"fintrack/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	workerLogger := logger.WithComponent(log.ComponentWorker)

	workerLogger.Info("Starting fintrack-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		workerLogger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		workerLogger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	primary, err := store.Open(ctx, cfg, logger.WithComponent(log.ComponentStore).Logger)
	if err != nil {
		workerLogger.Error("Failed to initialize primary store", "error", err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer primary.Close()

	backup, err := sqlite.New(cfg.BackupDBPath)
	if err != nil {
		workerLogger.Error("Failed to initialize backup store", "error", err, "path", cfg.BackupDBPath)
		os.Exit(1)
	}
	defer backup.Close()
	workerLogger.Info("Backup store ready", "path", cfg.BackupDBPath)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		workerLogger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirror(primary, backup, workerLogger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		workerLogger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := amqpClient.ConsumeLedgerSynced(ctx, mirror.HandleLedgerSynced); err != nil && err != context.Canceled {
		workerLogger.Error("Consumer stopped with error", "error", err)
		os.Exit(1)
	}

	workerLogger.Info("Worker stopped gracefully")
}
