package ledger

import (
	"sort"

	"fintrack/internal/core"
)

// Summary aggregates one calendar month plus the all-time balance position.
type Summary struct {
	TotalBalance core.Money `json:"totalBalance"`
	Income       core.Money `json:"income"`
	Expense      core.Money `json:"expense"`
}

// CategorySlice is one category's share of a month's spending.
type CategorySlice struct {
	CategoryID string     `json:"categoryId"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon"`
	Color      string     `json:"color"`
	Amount     core.Money `json:"amount"`
}

// TrendPoint is one month's income and expense totals.
type TrendPoint struct {
	Month   string     `json:"month"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// MonthlySummary totals income and expense for the calendar month
// containing ref. TotalBalance is the current sum over all accounts and is
// independent of the month.
func (l *Ledger) MonthlySummary(ref core.Date) Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	var s Summary
	for _, a := range l.accounts {
		s.TotalBalance.Cents += a.Balance.Cents
	}
	for _, t := range l.transactions {
		if !t.Date.SameMonth(ref) {
			continue
		}
		switch t.Type {
		case core.Income:
			s.Income.Cents += t.Amount.Cents
		case core.Expense:
			s.Expense.Cents += t.Amount.Cents
		}
	}
	return s
}

// CategoryBreakdown groups all expenses by category, in the order
// categories are first encountered walking the transaction list. The
// distribution is all-time, not month-scoped. Transactions pointing at an
// unresolvable category are skipped, not bucketed as unknown.
func (l *Ledger) CategoryBreakdown() []CategorySlice {
	l.mu.Lock()
	defer l.mu.Unlock()

	index := make(map[string]int)
	var out []CategorySlice
	for _, t := range l.transactions {
		if t.Type != core.Expense {
			continue
		}
		i, seen := index[t.CategoryID]
		if !seen {
			category, ok := core.CategoryByID(t.CategoryID)
			if !ok {
				continue
			}
			i = len(out)
			index[t.CategoryID] = i
			out = append(out, CategorySlice{
				CategoryID: category.ID,
				Name:       category.Name,
				Icon:       category.Icon,
				Color:      category.Color,
			})
		}
		out[i].Amount.Cents += t.Amount.Cents
	}
	return out
}

// MonthlyTrend buckets all transactions by month and returns the buckets in
// chronological order. Month keys are zero-padded, so lexical sort is
// chronological sort.
func (l *Ledger) MonthlyTrend() []TrendPoint {
	l.mu.Lock()
	defer l.mu.Unlock()

	buckets := make(map[string]*TrendPoint)
	for _, t := range l.transactions {
		key := t.Date.MonthKey()
		p, ok := buckets[key]
		if !ok {
			p = &TrendPoint{Month: key}
			buckets[key] = p
		}
		switch t.Type {
		case core.Income:
			p.Income.Cents += t.Amount.Cents
		case core.Expense:
			p.Expense.Cents += t.Amount.Cents
		}
	}

	out := make([]TrendPoint, 0, len(buckets))
	for _, p := range buckets {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
