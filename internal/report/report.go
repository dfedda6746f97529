// Package report turns raw transaction row sets into the aggregates the
// dashboard renders: overall totals, a monthly income/expense series and a
// per-category expense breakdown. Every function is pure; the caller fetches
// the rows and the same input always yields the same output.
package report

import (
	"sort"

	"wallet/internal/core"
)

// UnknownCategory is the bucket for expenses whose category reference is
// missing or no longer resolves.
const UnknownCategory = "Unknown"

// Totals are the headline figures: lifetime income, expense and their balance.
type Totals struct {
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Balance core.Money `json:"balance"`
	// HasData distinguishes an empty ledger from one that genuinely sums
	// to zero; the UI shows a "no data" state instead of zero charts.
	HasData bool `json:"has_data"`
}

// MonthlyPoint is one bar of the income-vs-expense chart.
type MonthlyPoint struct {
	Month core.Month           `json:"month"`
	Type  core.TransactionType `json:"type"`
	Total core.Money           `json:"total"`
}

// CategoryTotal is one slice of the expense donut.
type CategoryTotal struct {
	Name  string     `json:"name"`
	Total core.Money `json:"total"`
}

// ComputeTotals sums income and expense over the whole row set.
func ComputeTotals(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	t.HasData = len(txs) > 0
	return t
}

// MonthlySeries groups transactions by (calendar month, type) and sums each
// group, ordered by month ascending with income before expense within a
// month. Months with no transactions simply do not appear.
func MonthlySeries(txs []core.Transaction) []MonthlyPoint {
	type key struct {
		month core.Month
		typ   core.TransactionType
	}
	sums := make(map[key]core.Money)
	for _, tx := range txs {
		if !tx.Type.Valid() {
			continue
		}
		k := key{month: tx.Date.Month(), typ: tx.Type}
		sums[k] = sums[k].Add(tx.Amount)
	}

	points := make([]MonthlyPoint, 0, len(sums))
	for k, total := range sums {
		points = append(points, MonthlyPoint{Month: k.month, Type: k.typ, Total: total})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Month != points[j].Month {
			return points[i].Month < points[j].Month
		}
		return points[i].Type == core.Income && points[j].Type == core.Expense
	})
	return points
}

// CategoryBreakdown sums expense transactions by resolved category name.
// References that do not resolve against the category set fall into the
// "Unknown" bucket so the breakdown total always equals the expense total.
// The result is ordered largest first, with the name as a tie-break.
func CategoryBreakdown(txs []core.Transaction, categories []core.Category) []CategoryTotal {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	sums := make(map[string]core.Money)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		name, ok := names[tx.CategoryID]
		if !ok || name == "" {
			name = UnknownCategory
		}
		sums[name] = sums[name].Add(tx.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for name, total := range sums {
		out = append(out, CategoryTotal{Name: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MonthExpenseByCategory sums the given month's expenses per category ID.
// Shared by the budget evaluator, which compares these spends against limits.
func MonthExpenseByCategory(txs []core.Transaction, month core.Month) map[string]core.Money {
	sums := make(map[string]core.Money)
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.Date.Month() != month {
			continue
		}
		sums[tx.CategoryID] = sums[tx.CategoryID].Add(tx.Amount)
	}
	return sums
}

// MonthExpenseTotal sums the given month's expenses across all categories.
func MonthExpenseTotal(txs []core.Transaction, month core.Month) core.Money {
	var total core.Money
	for _, tx := range txs {
		if tx.Type == core.Expense && tx.Date.Month() == month {
			total = total.Add(tx.Amount)
		}
	}
	return total
}
