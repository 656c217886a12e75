// Package analytics derives spending views from an in-memory expense list:
// category breakdowns, month buckets and month-over-month comparisons.
//
// Every function here is pure. Callers pass the full expense list and, where
// a calendar position matters, the reference instant; nothing is cached and
// no input is modified.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"spendwise/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Summary is the aggregate view of a set of expenses.
type Summary struct {
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	ExpenseCount  int               `json:"expense_count"`
	AverageAmount decimal.Decimal   `json:"average_amount"`
	Categories    []CategorySummary `json:"category_summary"`
}

// CategorySummary is the share of the total spent in one category.
// Name and Color are empty until the summary is labelled with a CategoryLookup.
type CategorySummary struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name,omitempty"`
	Color      string          `json:"color,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// Summarize totals the expenses and breaks the total down by category.
// Categories are ordered by amount, largest first; equal amounts keep the
// order in which their category first appeared in the input.
func Summarize(expenses []models.Expense) Summary {
	if len(expenses) == 0 {
		return Summary{
			TotalAmount:   decimal.Zero,
			AverageAmount: decimal.Zero,
			Categories:    []CategorySummary{},
		}
	}

	total := decimal.Zero
	order := make([]string, 0)
	byCategory := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		total = total.Add(e.Amount)
		sum, seen := byCategory[e.CategoryID]
		if !seen {
			order = append(order, e.CategoryID)
		}
		byCategory[e.CategoryID] = sum.Add(e.Amount)
	}

	count := len(expenses)
	categories := make([]CategorySummary, 0, len(order))
	for _, id := range order {
		amount := byCategory[id]
		categories = append(categories, CategorySummary{
			CategoryID: id,
			Amount:     amount,
			Percentage: percentOf(amount, total),
		})
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Amount.GreaterThan(categories[j].Amount)
	})

	return Summary{
		TotalAmount:   total,
		ExpenseCount:  count,
		AverageAmount: total.Div(decimal.NewFromInt(int64(count))),
		Categories:    categories,
	}
}

// TopCategory returns the largest category of the summary, if any.
func (s Summary) TopCategory() (CategorySummary, bool) {
	if len(s.Categories) == 0 {
		return CategorySummary{}, false
	}
	return s.Categories[0], true
}

// Total sums the amounts of the expenses.
func Total(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// percentOf returns part as a percentage of whole, or 0 when whole is zero.
func percentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}
