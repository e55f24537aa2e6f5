package memory

import (
	"context"
	"testing"

	"fintrack/internal/core"
)

func TestLoadUnknownUserIsEmptyNotError(t *testing.T) {
	s := New()
	accounts, err := s.LoadAccounts(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected empty, got %d", len(accounts))
	}
}

func TestReplaceAllIsWholeSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := core.User{ID: "u-1", Email: "u@example.com", Name: "U"}

	first := []core.Account{{ID: "acc-1", Name: "A", Balance: core.Money{Cents: 100}}}
	if err := s.ReplaceAll(ctx, user, first, core.StarterTransactions()); err != nil {
		t.Fatalf("replace: %v", err)
	}

	// A second snapshot without acc-1 must not leave it behind.
	second := []core.Account{{ID: "acc-2", Name: "B", Balance: core.Money{Cents: 200}}}
	if err := s.ReplaceAll(ctx, user, second, nil); err != nil {
		t.Fatalf("replace: %v", err)
	}

	accounts, err := s.LoadAccounts(ctx, "u-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != "acc-2" {
		t.Fatalf("stale documents survived the replace: %+v", accounts)
	}
	txns, err := s.LoadTransactions(ctx, "u-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("expected empty transactions, got %d", len(txns))
	}
	if s.Writes("u-1") != 2 {
		t.Fatalf("expected 2 writes, got %d", s.Writes("u-1"))
	}
}

func TestLoadedSlicesAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := core.User{ID: "u-1"}
	if err := s.ReplaceAll(ctx, user, core.StarterAccounts(), nil); err != nil {
		t.Fatalf("replace: %v", err)
	}
	accounts, _ := s.LoadAccounts(ctx, "u-1")
	accounts[0].Name = "mutated"
	fresh, _ := s.LoadAccounts(ctx, "u-1")
	if fresh[0].Name == "mutated" {
		t.Fatal("store state leaked through a load")
	}
}
