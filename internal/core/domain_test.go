package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-01")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.May || d.Day() != 1 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", d.Location())
	}

	for _, bad := range []string{"", "05/01/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDateMonthKey(t *testing.T) {
	if k := NewDate(2024, 5, 31).MonthKey(); k != "2024-05" {
		t.Fatalf("expected 2024-05, got %s", k)
	}
	if k := NewDate(2024, 11, 1).MonthKey(); k != "2024-11" {
		t.Fatalf("expected 2024-11, got %s", k)
	}
}

func TestDateSameMonth(t *testing.T) {
	a := NewDate(2024, 5, 1)
	b := NewDate(2024, 5, 31)
	c := NewDate(2024, 6, 1)
	d := NewDate(2023, 5, 1)
	if !a.SameMonth(b) {
		t.Fatalf("expected same month for %v and %v", a, b)
	}
	if a.SameMonth(c) {
		t.Fatalf("expected different month for %v and %v", a, c)
	}
	if a.SameMonth(d) {
		t.Fatalf("year must participate in the comparison")
	}
}

func TestTransactionSigned(t *testing.T) {
	in := Transaction{Amount: Money{Cents: 500}, Type: Income}
	out := Transaction{Amount: Money{Cents: 500}, Type: Expense}
	if in.Signed() != 500 {
		t.Fatalf("income delta = %d", in.Signed())
	}
	if out.Signed() != -500 {
		t.Fatalf("expense delta = %d", out.Signed())
	}
}

func TestAccountValidate(t *testing.T) {
	good := Account{ID: "acc-1", Name: "Everyday", BankName: "Bank", Balance: Money{Cents: 100}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Account{
		{Name: "no id"},
		{ID: "acc-2", Name: "  "},
	}
	for i, a := range bads {
		if err := a.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID: "t-1", AccountID: "acc-1", CategoryID: "cat-1",
		Amount: Money{Cents: 100}, Date: NewDate(2024, 5, 1), Type: Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{AccountID: "a", CategoryID: "c", Amount: Money{Cents: 1}, Date: NewDate(2024, 1, 1), Type: Expense}, // no id
		{ID: "t", CategoryID: "c", Amount: Money{Cents: 1}, Date: NewDate(2024, 1, 1), Type: Expense},        // no account
		{ID: "t", AccountID: "a", Amount: Money{Cents: 1}, Date: NewDate(2024, 1, 1), Type: Expense},         // no category
		{ID: "t", AccountID: "a", CategoryID: "c", Amount: Money{Cents: 0}, Date: NewDate(2024, 1, 1), Type: Expense},
		{ID: "t", AccountID: "a", CategoryID: "c", Amount: Money{Cents: 1}, Type: Expense}, // zero date
		{ID: "t", AccountID: "a", CategoryID: "c", Amount: Money{Cents: 1}, Date: NewDate(2024, 1, 1), Type: "TRANSFER"},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryCatalog(t *testing.T) {
	cats := Categories()
	if len(cats) == 0 {
		t.Fatal("catalog must not be empty")
	}
	for _, c := range cats {
		if !c.Type.Valid() {
			t.Fatalf("category %s has invalid type %q", c.ID, c.Type)
		}
	}

	got, ok := CategoryByID("cat-3")
	if !ok || got.Type != Income {
		t.Fatalf("cat-3 should be an income category, got %+v ok=%v", got, ok)
	}
	if _, ok := CategoryByID("cat-999"); ok {
		t.Fatal("unknown id must not resolve")
	}

	// Returned slice is a copy.
	cats[0].Name = "mutated"
	if fresh := Categories(); fresh[0].Name == "mutated" {
		t.Fatal("catalog leaked through Categories()")
	}
}

func TestStarterDataset(t *testing.T) {
	accounts := StarterAccounts()
	if len(accounts) == 0 {
		t.Fatal("starter accounts must not be empty")
	}
	for _, a := range accounts {
		if a.Balance.Cents < 0 {
			t.Fatalf("starter account %s has negative opening balance", a.ID)
		}
		if err := a.Validate(); err != nil {
			t.Fatalf("starter account %s invalid: %v", a.ID, err)
		}
	}

	ids := map[string]bool{}
	for _, a := range accounts {
		ids[a.ID] = true
	}
	for _, tx := range StarterTransactions() {
		if err := tx.Validate(); err != nil {
			t.Fatalf("starter transaction %s invalid: %v", tx.ID, err)
		}
		if !ids[tx.AccountID] {
			t.Fatalf("starter transaction %s references unknown account %s", tx.ID, tx.AccountID)
		}
		cat, ok := CategoryByID(tx.CategoryID)
		if !ok {
			t.Fatalf("starter transaction %s references unknown category %s", tx.ID, tx.CategoryID)
		}
		if cat.Type != tx.Type {
			t.Fatalf("starter transaction %s type %s mismatches category type %s", tx.ID, tx.Type, cat.Type)
		}
	}
}
