package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// State is the coordinator lifecycle.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateLoading       State = "LOADING"
	StateReady         State = "READY"
)

// SnapshotFunc yields the current full ledger snapshot at flush time, so a
// debounced write always persists the latest state rather than the state at
// scheduling time.
type SnapshotFunc func() (core.User, []core.Account, []core.Transaction)

// Notifier is told after a snapshot lands in the store. Optional.
type Notifier interface {
	NotifySynced(ctx context.Context, userID string, accounts, transactions int) error
}

// Coordinator owns one user's remote persistence: it loads (or seeds) the
// stored snapshot once, then debounces every subsequent change into a single
// whole-snapshot write.
type Coordinator struct {
	store    store.Store
	notifier Notifier
	logger   *log.Logger
	debounce *Debouncer
	timeout  time.Duration

	mu       sync.Mutex
	state    State
	snapshot SnapshotFunc
	lastErr  error
}

type Options struct {
	Clock    Clock
	Delay    time.Duration
	Notifier Notifier
	Logger   *log.Logger
	// Timeout bounds each snapshot write. Defaults to 30s.
	Timeout time.Duration
}

func NewCoordinator(st store.Store, opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Delay <= 0 {
		opts.Delay = 2 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentSync)
	}
	return &Coordinator{
		store:    st,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		debounce: NewDebouncer(opts.Clock, opts.Delay),
		timeout:  opts.Timeout,
		state:    StateUninitialized,
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastSyncError returns the error from the most recent snapshot write, nil
// after a successful one. Write failures never propagate to callers; they
// are surfaced here and in logs.
func (c *Coordinator) LastSyncError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// LoadOrSeed fetches the user's stored snapshot, both collections in
// parallel. A fetch failure or an empty account collection yields the
// starter dataset instead, so a session always begins with usable state.
func (c *Coordinator) LoadOrSeed(ctx context.Context, userID string) (accounts []core.Account, transactions []core.Transaction, seeded bool, err error) {
	c.mu.Lock()
	if c.state != StateUninitialized {
		c.mu.Unlock()
		return nil, nil, false, fmt.Errorf("load already performed (state %s)", c.state)
	}
	c.state = StateLoading
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = c.store.LoadAccounts(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = c.store.LoadTransactions(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		c.logger.WarnContext(ctx, "Stored snapshot unavailable, seeding starter data",
			log.FieldUserID, userID, "error", err)
		accounts, transactions, seeded = core.StarterAccounts(), core.StarterTransactions(), true
	} else if len(accounts) == 0 {
		c.logger.InfoContext(ctx, "No stored accounts, seeding starter data",
			log.FieldUserID, userID)
		accounts, transactions, seeded = core.StarterAccounts(), core.StarterTransactions(), true
	}

	c.mu.Lock()
	c.state = StateReady
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Session data loaded",
		log.FieldUserID, userID,
		log.FieldAccounts, len(accounts),
		log.FieldTxns, len(transactions),
		"seeded", seeded)

	return accounts, transactions, seeded, nil
}

// Bind sets the snapshot source. Must be called before ScheduleSync.
func (c *Coordinator) Bind(fn SnapshotFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = fn
}

// ScheduleSync arms the debounce window. Calls before the initial load
// completes are dropped: there is nothing trustworthy to persist yet.
func (c *Coordinator) ScheduleSync() {
	c.mu.Lock()
	if c.state != StateReady || c.snapshot == nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.debounce.Trigger(c.flush)
}

// Flush writes the current snapshot immediately, cancelling any pending
// debounced write first. Used on shutdown.
func (c *Coordinator) Flush() {
	c.mu.Lock()
	ready := c.state == StateReady && c.snapshot != nil
	c.mu.Unlock()
	if !ready {
		return
	}
	c.debounce.Cancel()
	c.flush()
}

// Stop cancels any pending write without flushing. Used on sign-out, where
// all previously completed windows have already persisted.
func (c *Coordinator) Stop() {
	c.debounce.Cancel()
}

func (c *Coordinator) flush() {
	c.mu.Lock()
	snapshot := c.snapshot
	c.mu.Unlock()
	if snapshot == nil {
		return
	}
	user, accounts, transactions := snapshot()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	err := c.store.ReplaceAll(ctx, user, accounts, transactions)

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()

	if err != nil {
		// Local state stays authoritative; the next change reschedules.
		c.logger.ErrorContext(ctx, "Snapshot write failed",
			log.FieldUserID, user.ID, "error", err)
		return
	}

	c.logger.DebugContext(ctx, "Snapshot written",
		log.FieldUserID, user.ID,
		log.FieldAccounts, len(accounts),
		log.FieldTxns, len(transactions))

	if c.notifier != nil {
		if err := c.notifier.NotifySynced(ctx, user.ID, len(accounts), len(transactions)); err != nil {
			c.logger.WarnContext(ctx, "Sync notification failed",
				log.FieldUserID, user.ID, "error", err)
		}
	}
}
