// Package store defines the remote per-user document space the sync
// coordinator persists ledger snapshots to, plus its backend adapters.
package store

import (
	"context"

	"fintrack/internal/core"
)

// Store is the port for the per-user document space: a user-metadata
// document plus an accounts collection and a transactions collection, each
// keyed by entity id.
type Store interface {
	// LoadAccounts fetches the full stored account collection for a user.
	LoadAccounts(ctx context.Context, userID string) ([]core.Account, error)

	// LoadTransactions fetches the full stored transaction collection.
	LoadTransactions(ctx context.Context, userID string) ([]core.Transaction, error)

	// ReplaceAll overwrites the user's document space with exactly this
	// snapshot: every document is upserted and stale documents are removed,
	// so the store never holds an interleaving of two snapshots. Last write
	// wins at the snapshot level.
	ReplaceAll(ctx context.Context, user core.User, accounts []core.Account, transactions []core.Transaction) error

	Close() error
}
