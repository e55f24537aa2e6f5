package advisor

import (
	"fmt"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestBuildPrompt(t *testing.T) {
	accounts := []core.Account{
		{ID: "acc-1", Name: "Everyday", BankName: "Cathay United", Balance: core.Money{Cents: 5_000_000}},
		{ID: "acc-2", Name: "Cash", Balance: core.Money{Cents: 12_345}},
	}
	transactions := []core.Transaction{
		{ID: "t-2", AccountID: "acc-1", CategoryID: "cat-3", Amount: core.Money{Cents: 4_500_000}, Date: core.NewDate(2024, 5, 5), Description: "May salary", Type: core.Income},
		{ID: "t-1", AccountID: "acc-1", CategoryID: "cat-gone", Amount: core.Money{Cents: 12_000}, Date: core.NewDate(2024, 5, 1), Description: "Breakfast", Type: core.Expense},
	}

	got := BuildPrompt("How can I save more?", accounts, transactions)

	for _, want := range []string{
		"- Everyday (Cathay United): 50000.00",
		"- Cash: 123.45",
		"- 2024-05-05 +45000.00 [Salary] May salary",
		"- 2024-05-01 -120.00 [cat-gone] Breakfast",
		"My question: How can I save more?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, got)
		}
	}
}

func TestBuildPromptCapsHistory(t *testing.T) {
	var transactions []core.Transaction
	for i := 0; i < 50; i++ {
		transactions = append(transactions, core.Transaction{
			ID:          fmt.Sprintf("t-%d", i),
			AccountID:   "acc-1",
			CategoryID:  "cat-1",
			Amount:      core.Money{Cents: 100},
			Date:        core.NewDate(2024, 5, 1),
			Description: fmt.Sprintf("txn %d", i),
			Type:        core.Expense,
		})
	}

	got := BuildPrompt("q", nil, transactions)
	if !strings.Contains(got, "txn 29") {
		t.Error("prompt should include the 30th transaction")
	}
	if strings.Contains(got, "txn 30") {
		t.Error("prompt should cap history at 30 transactions")
	}
}

func TestBuildPromptEmptySnapshot(t *testing.T) {
	got := BuildPrompt("q", nil, nil)
	if !strings.Contains(got, "Accounts:\n- none") {
		t.Error("prompt should mark empty accounts")
	}
	if !strings.Contains(got, "- none\n\nMy question") {
		t.Error("prompt should mark empty transactions")
	}
}
