// Package ledger holds a user session's authoritative in-memory state:
// accounts, transactions and the derived aggregates over them. Every
// mutation validates, applies atomically under the lock, then notifies the
// change hook so persistence can be scheduled.
package ledger

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// accountPalette colors new accounts, cycling by creation order.
var accountPalette = []string{
	"#00A650", "#10B981", "#3B82F6", "#8B5CF6",
	"#F59E0B", "#EF4444", "#14B8A6", "#6366F1",
}

// Ledger is safe for concurrent use. Transactions are kept newest-first.
type Ledger struct {
	mu           sync.Mutex
	accounts     []core.Account
	transactions []core.Transaction
	created      int // accounts created in this session, drives the palette
	onChange     func()
}

// New builds a ledger over an already validated snapshot. onChange runs
// after every successful mutation, outside the lock; nil is allowed.
func New(accounts []core.Account, transactions []core.Transaction, onChange func()) *Ledger {
	return &Ledger{
		accounts:     append([]core.Account(nil), accounts...),
		transactions: append([]core.Transaction(nil), transactions...),
		onChange:     onChange,
	}
}

func (l *Ledger) notify() {
	if l.onChange != nil {
		l.onChange()
	}
}

// Accounts returns a copy of the account list in insertion order.
func (l *Ledger) Accounts() []core.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Account(nil), l.accounts...)
}

// Transactions returns a copy of the transaction list, newest first.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Transaction(nil), l.transactions...)
}

// Snapshot returns copies of both collections, taken atomically.
func (l *Ledger) Snapshot() ([]core.Account, []core.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Account(nil), l.accounts...),
		append([]core.Transaction(nil), l.transactions...)
}

// CreateAccount registers a new account with an opening balance. The
// balance may be zero; the color is assigned from the palette.
func (l *Ledger) CreateAccount(name, bankName string, opening core.Money) (core.Account, error) {
	if strings.TrimSpace(name) == "" {
		return core.Account{}, core.ErrEmptyName
	}
	if opening.Cents < 0 {
		return core.Account{}, core.ErrInvalidAmount
	}

	l.mu.Lock()
	account := core.Account{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		BankName: strings.TrimSpace(bankName),
		Balance:  opening,
		Color:    accountPalette[l.created%len(accountPalette)],
	}
	l.created++
	l.accounts = append(l.accounts, account)
	l.mu.Unlock()

	l.notify()
	return account, nil
}

// UpdateAccount replaces the name, bank and color of an existing account.
// The balance is not editable directly; only transactions move it. Unknown
// ids are a silent no-op.
func (l *Ledger) UpdateAccount(updated core.Account) core.Account {
	l.mu.Lock()
	var result core.Account
	changed := false
	for i, a := range l.accounts {
		if a.ID != updated.ID {
			continue
		}
		if strings.TrimSpace(updated.Name) != "" {
			a.Name = strings.TrimSpace(updated.Name)
		}
		a.BankName = strings.TrimSpace(updated.BankName)
		if updated.Color != "" {
			a.Color = updated.Color
		}
		l.accounts[i] = a
		result = a
		changed = true
		break
	}
	l.mu.Unlock()

	if changed {
		l.notify()
	}
	return result
}

// DeleteAccount removes an account. Its transactions are kept; history
// outlives the account it happened on. Unknown ids are a silent no-op.
func (l *Ledger) DeleteAccount(id string) {
	l.mu.Lock()
	changed := false
	for i, a := range l.accounts {
		if a.ID == id {
			l.accounts = append(l.accounts[:i], l.accounts[i+1:]...)
			changed = true
			break
		}
	}
	l.mu.Unlock()

	if changed {
		l.notify()
	}
}

// TransactionInput is a transaction before admission: no id yet, not
// validated.
type TransactionInput struct {
	AccountID   string
	CategoryID  string
	Amount      core.Money
	Date        core.Date
	Description string
	Type        core.TransactionType
}

// RecordTransaction validates the input, assigns an id, prepends the
// transaction and moves the account balance by its signed amount. The
// admission and the balance move are one atomic step.
func (l *Ledger) RecordTransaction(in TransactionInput) (core.Transaction, error) {
	if err := in.Amount.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := in.Date.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if !in.Type.Valid() {
		return core.Transaction{}, core.ErrInvalidType
	}
	category, ok := core.CategoryByID(in.CategoryID)
	if !ok {
		return core.Transaction{}, core.ErrUnknownCategory
	}
	if category.Type != in.Type {
		return core.Transaction{}, core.ErrTypeMismatch
	}

	txn := core.Transaction{
		ID:          uuid.NewString(),
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
	}

	l.mu.Lock()
	idx := -1
	for i, a := range l.accounts {
		if a.ID == in.AccountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return core.Transaction{}, core.ErrUnknownAccount
	}
	l.accounts[idx].Balance.Cents += txn.Signed()
	l.transactions = append([]core.Transaction{txn}, l.transactions...)
	l.mu.Unlock()

	l.notify()
	return txn, nil
}

// DeleteTransaction removes a transaction from history. The account balance
// is deliberately left where it is: removing the record does not undo the
// money movement. Unknown ids are a silent no-op.
func (l *Ledger) DeleteTransaction(id string) {
	l.mu.Lock()
	changed := false
	for i, t := range l.transactions {
		if t.ID == id {
			l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
			changed = true
			break
		}
	}
	l.mu.Unlock()

	if changed {
		l.notify()
	}
}
