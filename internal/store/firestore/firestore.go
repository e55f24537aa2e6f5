// Package firestore is the cloud store backend: one metadata document per
// user plus accounts and transactions subcollections keyed by entity id.
package firestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"fintrack/internal/core"
)

const (
	usersCollection        = "users"
	accountsCollection     = "accounts"
	transactionsCollection = "transactions"
)

// Stored document shapes. These are decoded from untrusted data and
// validated before they become core entities.
type accountDoc struct {
	ID           string `firestore:"id"`
	Name         string `firestore:"name"`
	BankName     string `firestore:"bankName"`
	BalanceCents int64  `firestore:"balanceCents"`
	Color        string `firestore:"color"`
}

type transactionDoc struct {
	ID          string `firestore:"id"`
	AccountID   string `firestore:"accountId"`
	CategoryID  string `firestore:"categoryId"`
	AmountCents int64  `firestore:"amountCents"`
	Date        string `firestore:"date"`
	Description string `firestore:"description"`
	Type        string `firestore:"type"`
}

type userDoc struct {
	Email       string `firestore:"email"`
	Name        string `firestore:"name"`
	LastUpdated string `firestore:"lastUpdated"`
}

type Store struct {
	client *firestore.Client
}

// New connects using the JSON connection descriptor from configuration.
func New(ctx context.Context, projectID string, credentialsJSON []byte) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) userRef(userID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(userID)
}

func (s *Store) LoadAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	iter := s.userRef(userID).Collection(accountsCollection).Documents(ctx)
	defer iter.Stop()

	var out []core.Account
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetch accounts: %w", err)
		}
		var d accountDoc
		if err := doc.DataTo(&d); err != nil {
			slog.WarnContext(ctx, "Skipping undecodable account document", "doc", doc.Ref.ID, "error", err)
			continue
		}
		a := core.Account{
			ID:       d.ID,
			Name:     d.Name,
			BankName: d.BankName,
			Balance:  core.Money{Cents: d.BalanceCents},
			Color:    d.Color,
		}
		if a.ID == "" {
			a.ID = doc.Ref.ID
		}
		if err := a.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid account document", "doc", doc.Ref.ID, "error", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) LoadTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	iter := s.userRef(userID).Collection(transactionsCollection).Documents(ctx)
	defer iter.Stop()

	var out []core.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetch transactions: %w", err)
		}
		var d transactionDoc
		if err := doc.DataTo(&d); err != nil {
			slog.WarnContext(ctx, "Skipping undecodable transaction document", "doc", doc.Ref.ID, "error", err)
			continue
		}
		date, err := core.ParseDate(d.Date)
		if err != nil {
			slog.WarnContext(ctx, "Skipping transaction with malformed date", "doc", doc.Ref.ID, "date", d.Date)
			continue
		}
		t := core.Transaction{
			ID:          d.ID,
			AccountID:   d.AccountID,
			CategoryID:  d.CategoryID,
			Amount:      core.Money{Cents: d.AmountCents},
			Date:        date,
			Description: d.Description,
			Type:        core.TransactionType(d.Type),
		}
		if t.ID == "" {
			t.ID = doc.Ref.ID
		}
		if err := t.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid transaction document", "doc", doc.Ref.ID, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) ReplaceAll(ctx context.Context, user core.User, accounts []core.Account, transactions []core.Transaction) error {
	userRef := s.userRef(user.ID)
	bw := s.client.BulkWriter(ctx)

	if _, err := bw.Set(userRef, userDoc{
		Email:       user.Email,
		Name:        user.Name,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("enqueue user document: %w", err)
	}

	accountIDs := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		accountIDs[a.ID] = true
		ref := userRef.Collection(accountsCollection).Doc(a.ID)
		if _, err := bw.Set(ref, accountDoc{
			ID:           a.ID,
			Name:         a.Name,
			BankName:     a.BankName,
			BalanceCents: a.Balance.Cents,
			Color:        a.Color,
		}); err != nil {
			return fmt.Errorf("enqueue account %s: %w", a.ID, err)
		}
	}

	txnIDs := make(map[string]bool, len(transactions))
	for _, t := range transactions {
		txnIDs[t.ID] = true
		ref := userRef.Collection(transactionsCollection).Doc(t.ID)
		if _, err := bw.Set(ref, transactionDoc{
			ID:          t.ID,
			AccountID:   t.AccountID,
			CategoryID:  t.CategoryID,
			AmountCents: t.Amount.Cents,
			Date:        t.Date.String(),
			Description: t.Description,
			Type:        string(t.Type),
		}); err != nil {
			return fmt.Errorf("enqueue transaction %s: %w", t.ID, err)
		}
	}

	// The write is a full replace: documents missing from the snapshot are
	// deleted so the store never interleaves two snapshots.
	if err := s.deleteStale(ctx, bw, userRef.Collection(accountsCollection), accountIDs); err != nil {
		return err
	}
	if err := s.deleteStale(ctx, bw, userRef.Collection(transactionsCollection), txnIDs); err != nil {
		return err
	}

	bw.End()

	slog.DebugContext(ctx, "Snapshot stored",
		"user_id", user.ID,
		"accounts", len(accounts),
		"transactions", len(transactions))

	return nil
}

func (s *Store) deleteStale(ctx context.Context, bw *firestore.BulkWriter, col *firestore.CollectionRef, keep map[string]bool) error {
	iter := col.DocumentRefs(ctx)
	for {
		ref, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("list %s documents: %w", col.ID, err)
		}
		if keep[ref.ID] {
			continue
		}
		if _, err := bw.Delete(ref); err != nil {
			return fmt.Errorf("enqueue delete %s/%s: %w", col.ID, ref.ID, err)
		}
	}
}
