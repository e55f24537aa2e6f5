// Package worker mirrors persisted ledger snapshots into a backup store,
// driven by sync events.
package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// Mirror copies a user's snapshot from the primary store to the backup
// store whenever a sync event arrives.
type Mirror struct {
	primary store.Store
	backup  store.Store
	logger  *log.Logger
	timeout time.Duration
}

func NewMirror(primary, backup store.Store, logger *log.Logger) *Mirror {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	}
	return &Mirror{
		primary: primary,
		backup:  backup,
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

// HandleLedgerSynced processes one event. A returned error makes the
// consumer requeue the message.
func (m *Mirror) HandleLedgerSynced(msg *amqp.LedgerSyncedMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	accounts, transactions, err := m.load(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("load snapshot for %s: %w", msg.UserID, err)
	}

	if err := m.backup.ReplaceAll(ctx, core.User{ID: msg.UserID}, accounts, transactions); err != nil {
		return fmt.Errorf("write backup for %s: %w", msg.UserID, err)
	}

	m.logger.InfoContext(ctx, "Mirrored snapshot",
		log.FieldUserID, msg.UserID,
		log.FieldAccounts, len(accounts),
		log.FieldTxns, len(transactions))
	return nil
}

func (m *Mirror) load(ctx context.Context, userID string) (accounts []core.Account, transactions []core.Transaction, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = m.primary.LoadAccounts(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = m.primary.LoadTransactions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return accounts, transactions, nil
}
