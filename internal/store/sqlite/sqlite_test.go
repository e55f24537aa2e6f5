package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := core.User{ID: "u-1", Email: "u@example.com", Name: "U"}

	if err := s.ReplaceAll(ctx, user, core.StarterAccounts(), core.StarterTransactions()); err != nil {
		t.Fatalf("replace: %v", err)
	}

	accounts, err := s.LoadAccounts(ctx, "u-1")
	if err != nil {
		t.Fatalf("load accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}

	txns, err := s.LoadTransactions(ctx, "u-1")
	if err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if len(txns) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(txns))
	}
	for _, tx := range txns {
		if err := tx.Validate(); err != nil {
			t.Fatalf("loaded transaction %s invalid: %v", tx.ID, err)
		}
	}
}

func TestReplaceRemovesStaleDocuments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := core.User{ID: "u-1"}

	if err := s.ReplaceAll(ctx, user, core.StarterAccounts(), core.StarterTransactions()); err != nil {
		t.Fatalf("replace: %v", err)
	}

	kept := core.StarterAccounts()[:1]
	if err := s.ReplaceAll(ctx, user, kept, nil); err != nil {
		t.Fatalf("replace: %v", err)
	}

	accounts, err := s.LoadAccounts(ctx, "u-1")
	if err != nil {
		t.Fatalf("load accounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != kept[0].ID {
		t.Fatalf("stale accounts survived: %+v", accounts)
	}
	txns, err := s.LoadTransactions(ctx, "u-1")
	if err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("stale transactions survived: %d", len(txns))
	}
}

func TestUserScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceAll(ctx, core.User{ID: "u-1"}, core.StarterAccounts(), nil); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := s.ReplaceAll(ctx, core.User{ID: "u-2"}, core.StarterAccounts()[:1], nil); err != nil {
		t.Fatalf("replace: %v", err)
	}

	a1, _ := s.LoadAccounts(ctx, "u-1")
	a2, _ := s.LoadAccounts(ctx, "u-2")
	if len(a1) != 2 || len(a2) != 1 {
		t.Fatalf("user scoping broken: u-1=%d u-2=%d", len(a1), len(a2))
	}
}

func TestInvalidRowsAreSkippedNotFatal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Write a malformed row directly, as a misbehaving client could.
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, id, account_id, category_id, amount_cents, date, description, type)
		 VALUES ('u-1', 't-bad', 'acc-1', 'cat-1', 100, 'not-a-date', '', 'EXPENSE')`); err != nil {
		t.Fatalf("seed bad row: %v", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, id, account_id, category_id, amount_cents, date, description, type)
		 VALUES ('u-1', 't-ok', 'acc-1', 'cat-1', 100, '2024-05-01', '', 'EXPENSE')`); err != nil {
		t.Fatalf("seed good row: %v", err)
	}

	txns, err := s.LoadTransactions(ctx, "u-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(txns) != 1 || txns[0].ID != "t-ok" {
		t.Fatalf("expected only the valid row, got %+v", txns)
	}
}
