package core

// The category catalog is static reference data: not user-editable, and
// every transaction must reference an entry whose type matches its own.
var categories = []Category{
	{ID: "cat-1", Name: "Dining", Type: Expense, Icon: "🍔", Color: "#F97316"},
	{ID: "cat-2", Name: "Transport", Type: Expense, Icon: "🚗", Color: "#3B82F6"},
	{ID: "cat-3", Name: "Salary", Type: Income, Icon: "💰", Color: "#22C55E"},
	{ID: "cat-4", Name: "Entertainment", Type: Expense, Icon: "🎬", Color: "#A855F7"},
	{ID: "cat-5", Name: "Shopping", Type: Expense, Icon: "🛍️", Color: "#EC4899"},
	{ID: "cat-6", Name: "Rent", Type: Expense, Icon: "🏠", Color: "#EF4444"},
	{ID: "cat-7", Name: "Bonus", Type: Income, Icon: "🎁", Color: "#EAB308"},
	{ID: "cat-8", Name: "Misc", Type: Expense, Icon: "📦", Color: "#6B7280"},
}

// Categories returns the full catalog. Callers receive a copy and may not
// mutate the catalog through it.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryByID resolves a catalog entry. Lookups are optional everywhere:
// an unresolved reference renders as a blank, it never fails an operation.
func CategoryByID(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// StarterAccounts is the built-in dataset returned when a user has no
// stored accounts yet. Every opening balance is non-negative.
func StarterAccounts() []Account {
	return []Account{
		{ID: "acc-1", Name: "Everyday", BankName: "Cathay United", Balance: Money{Cents: 5_000_000}, Color: "#00A650"},
		{ID: "acc-2", Name: "Savings", BankName: "E.Sun Bank", Balance: Money{Cents: 20_000_000}, Color: "#10B981"},
	}
}

// StarterTransactions accompanies StarterAccounts on first run.
func StarterTransactions() []Transaction {
	return []Transaction{
		{ID: "t-1", AccountID: "acc-1", CategoryID: "cat-1", Amount: Money{Cents: 12_000}, Date: NewDate(2024, 5, 1), Description: "Breakfast", Type: Expense},
		{ID: "t-2", AccountID: "acc-1", CategoryID: "cat-3", Amount: Money{Cents: 4_500_000}, Date: NewDate(2024, 5, 5), Description: "May salary", Type: Income},
		{ID: "t-3", AccountID: "acc-1", CategoryID: "cat-6", Amount: Money{Cents: 1_500_000}, Date: NewDate(2024, 5, 6), Description: "Apartment rent", Type: Expense},
		{ID: "t-4", AccountID: "acc-1", CategoryID: "cat-2", Amount: Money{Cents: 80_000}, Date: NewDate(2024, 5, 10), Description: "Fuel", Type: Expense},
		{ID: "t-5", AccountID: "acc-1", CategoryID: "cat-5", Amount: Money{Cents: 200_000}, Date: NewDate(2024, 5, 12), Description: "New shoes", Type: Expense},
	}
}
