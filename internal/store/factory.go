package store

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/config"
	"fintrack/internal/store/firestore"
	"fintrack/internal/store/memory"
	"fintrack/internal/store/sqlite"
)

// Open creates the store backend selected by configuration. The caller owns
// the returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.DataBackend {
	case "memory":
		logger.Info("Initialized memory store")
		return memory.New(), nil

	case "sqlite":
		s, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite store: %w", err)
		}
		logger.Info("Initialized sqlite store", "db_path", cfg.SQLiteDBPath)
		return s, nil

	case "firestore":
		creds, err := cfg.FirestoreCredentials()
		if err != nil {
			return nil, err
		}
		s, err := firestore.New(ctx, cfg.FirestoreProjectID, creds)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firestore store: %w", err)
		}
		logger.Info("Initialized firestore store", "project_id", cfg.FirestoreProjectID)
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
