package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/advisor"
	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/httpapi"
	"fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/store"
	"fintrack/internal/syncer"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	appLogger := logger.WithComponent(log.ComponentApp)

	if err := cfg.Validate(); err != nil {
		appLogger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg, logger.WithComponent(log.ComponentStore).Logger)
	if err != nil {
		appLogger.Error("Failed to initialize store", "error", err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer st.Close()

	// AMQP is optional. Without it, snapshots still persist; only the
	// post-sync events are missing.
	var notifier syncer.Notifier
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			appLogger.Warn("Failed to initialize AMQP client, continuing without sync events", "error", err)
		} else {
			defer amqpClient.Close()
			notifier = amqpClient
			appLogger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	sessions := session.NewManager(st, session.Options{
		Delay:    cfg.SyncDebounce,
		Notifier: notifier,
		Logger:   logger.WithComponent(log.ComponentSession),
	})

	// The advisor is optional too: without a key the endpoint reports
	// itself unavailable instead of failing requests halfway.
	var adviceService httpapi.AdviceService
	if cfg.AdvisorConfigured() {
		a, err := advisor.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			appLogger.Warn("Failed to initialize advisor, continuing without advice", "error", err)
		} else {
			adviceService = a
			appLogger.Info("Initialized advisor", "model", cfg.GeminiModel)
		}
	} else {
		appLogger.Info("Advisor not configured, advice endpoint disabled")
	}

	jwtService := httpapi.NewJWTService(cfg.JWTSecret)
	handler := httpapi.NewHandler(sessions, jwtService, adviceService, logger.WithComponent(log.ComponentHTTP))
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handler: handler,
		JWT:     jwtService,
		Logger:  logger.WithComponent(log.ComponentHTTP),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		appLogger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Server shutdown error", "error", err)
		}

		// Flush any debounced writes before the store goes away.
		sessions.Shutdown()
		cancel()
	}()

	appLogger.Info("Starting fintrack server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"sync_debounce", cfg.SyncDebounce.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLogger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	appLogger.Info("Server stopped gracefully")
}
