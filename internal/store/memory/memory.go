// Package memory is an in-process store backend used for tests and
// offline runs.
package memory

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/core"
)

type snapshot struct {
	user         core.User
	accounts     []core.Account
	transactions []core.Transaction
	updatedAt    time.Time
}

type Store struct {
	mu     sync.Mutex
	users  map[string]*snapshot
	writes map[string]int

	// FailLoads makes every load return an error; used to exercise the
	// seed-on-failure path.
	FailLoads bool
}

func New() *Store {
	return &Store{
		users:  make(map[string]*snapshot),
		writes: make(map[string]int),
	}
}

func (s *Store) LoadAccounts(_ context.Context, userID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLoads {
		return nil, context.DeadlineExceeded
	}
	snap, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return append([]core.Account(nil), snap.accounts...), nil
}

func (s *Store) LoadTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLoads {
		return nil, context.DeadlineExceeded
	}
	snap, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return append([]core.Transaction(nil), snap.transactions...), nil
}

func (s *Store) ReplaceAll(_ context.Context, user core.User, accounts []core.Account, transactions []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = &snapshot{
		user:         user,
		accounts:     append([]core.Account(nil), accounts...),
		transactions: append([]core.Transaction(nil), transactions...),
		updatedAt:    time.Now().UTC(),
	}
	s.writes[user.ID]++
	return nil
}

func (s *Store) Close() error { return nil }

// Writes reports how many snapshot replacements a user has received.
func (s *Store) Writes(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[userID]
}
