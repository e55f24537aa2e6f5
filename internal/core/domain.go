package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

type (
	TransactionType string

	// Date is a calendar day. The time component is always midnight UTC so
	// that month bucketing never shifts across timezones.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Category is static reference data; transactions point at it by ID and
	// must carry the same type tag.
	Category struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Icon  string          `json:"icon"`
		Color string          `json:"color"`
	}

	Account struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		BankName string `json:"bankName"`
		Balance  Money  `json:"balance"`
		Color    string `json:"color"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		AccountID   string          `json:"accountId"`
		CategoryID  string          `json:"categoryId"`
		Amount      Money           `json:"amount"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Type        TransactionType `json:"type"`
	}

	// User scopes which account/transaction collections are loaded and
	// persisted. It has no other behavior here.
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptyID         = errors.New("empty id")
	ErrEmptyName       = errors.New("empty name")
	ErrUnknownAccount  = errors.New("unknown account")
	ErrUnknownCategory = errors.New("unknown category")
	ErrTypeMismatch    = errors.New("transaction type does not match category type")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string into a UTC-normalized Date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthKey returns the zero-padded YYYY-MM bucket key. Lexical order of
// keys equals chronological order.
func (d Date) MonthKey() string {
	return d.Time.UTC().Format("2006-01")
}

// SameMonth reports whether both dates fall in the same calendar month and
// year, compared by calendar components.
func (d Date) SameMonth(o Date) bool {
	du, ou := d.Time.UTC(), o.Time.UTC()
	return du.Year() == ou.Year() && du.Month() == ou.Month()
}

func (d Date) String() string {
	return d.Time.UTC().Format("2006-01-02")
}

// Dates travel over the wire and through stored documents as plain
// YYYY-MM-DD strings, and money as integer minor units. Request bodies may
// also give money as a quoted decimal string ("12.34"), parsed with
// half-up rounding.

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		cents, err := ParseDecimalToCents(strings.Trim(s, `"`))
		if err != nil {
			return err
		}
		m.Cents = cents
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = v
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the balance delta a transaction applies to its account:
// positive for income, negative for expense.
func (t Transaction) Signed() int64 {
	if t.Type == Income {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}

// Validate admits an account into the in-memory model. Loaded remote
// documents pass through here before they are trusted.
func (a Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(t.AccountID) == "" || strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyID
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}
