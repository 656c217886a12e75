package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/models"
)

// MonthlyTrend is the amount spent in one calendar month.
type MonthlyTrend struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthKey formats the calendar month of t as "YYYY-MM".
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// MonthlyTrends buckets the expenses by calendar month. The result is sorted by
// month key, which for fixed-width keys is chronological order.
func MonthlyTrends(expenses []models.Expense) []MonthlyTrend {
	byMonth := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		key := MonthKey(e.Date)
		byMonth[key] = byMonth[key].Add(e.Amount)
	}

	trends := make([]MonthlyTrend, 0, len(byMonth))
	for month, amount := range byMonth {
		trends = append(trends, MonthlyTrend{Month: month, Amount: amount})
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].Month < trends[j].Month
	})
	return trends
}

// ParseMonthKey is the inverse of MonthKey.
func ParseMonthKey(key string) (Period, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil || len(key) != 7 {
		return Period{}, fmt.Errorf("invalid month key %q: want YYYY-MM", key)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}
