// Package sqlite is the embedded local store backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) LoadAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, bank_name, balance_cents, color FROM accounts WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.BankName, &a.Balance.Cents, &a.Color); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		// Stored rows are untrusted like any other remote document.
		if err := a.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid stored account", "id", a.ID, "error", err)
			continue
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

func (s *Store) LoadTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, category_id, amount_cents, date, description, type
		 FROM transactions WHERE user_id = ? ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			rawDate string
			rawType string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Amount.Cents, &rawDate, &t.Description, &rawType); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		date, err := core.ParseDate(rawDate)
		if err != nil {
			slog.WarnContext(ctx, "Skipping transaction with malformed date", "id", t.ID, "date", rawDate)
			continue
		}
		t.Date = date
		t.Type = core.TransactionType(rawType)
		if err := t.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid stored transaction", "id", t.ID, "error", err)
			continue
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *Store) ReplaceAll(ctx context.Context, user core.User, accounts []core.Account, transactions []core.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, email, name, last_updated) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET email = excluded.email, name = excluded.name, last_updated = excluded.last_updated`,
		user.ID, user.Email, user.Name, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE user_id = ?`, user.ID); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}
	for _, a := range accounts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (user_id, id, name, bank_name, balance_cents, color) VALUES (?, ?, ?, ?, ?, ?)`,
			user.ID, a.ID, a.Name, a.BankName, a.Balance.Cents, a.Color); err != nil {
			return fmt.Errorf("insert account %s: %w", a.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ?`, user.ID); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, t := range transactions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (user_id, id, account_id, category_id, amount_cents, date, description, type)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, t.ID, t.AccountID, t.CategoryID, t.Amount.Cents, t.Date.String(), t.Description, string(t.Type)); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot stored",
		"user_id", user.ID,
		"accounts", len(accounts),
		"transactions", len(transactions))

	return nil
}
