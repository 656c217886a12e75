// Package report turns a filtered expense list into a tabular report and
// writes it as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/analytics"
	"spendwise/internal/format"
	"spendwise/internal/models"
)

// Header is the CSV header row.
var Header = []string{"Date", "Description", "Category", "Amount"}

// Row is one expense as it appears in a report.
type Row struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id"`
	Category    string          `json:"category"`
	Color       string          `json:"color"`
	Amount      decimal.Decimal `json:"amount"`
}

// Report is a filtered expense list with its totals and category breakdown.
type Report struct {
	Rows           []Row             `json:"expenses"`
	Count          int               `json:"count"`
	Total          decimal.Decimal   `json:"total"`
	TotalFormatted string            `json:"total_formatted"`
	Summary        analytics.Summary `json:"summary"`
	Currency       string            `json:"currency"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// Build assembles a report. Expenses keep their input order.
func Build(expenses []models.Expense, lookup analytics.CategoryLookup, currency string, now time.Time) *Report {
	rows := make([]Row, 0, len(expenses))
	for _, e := range expenses {
		name, color := lookup.Resolve(e.CategoryID)
		rows = append(rows, Row{
			ID:          e.ID,
			Date:        format.Date(e.Date),
			Description: e.Description,
			CategoryID:  e.CategoryID,
			Category:    name,
			Color:       color,
			Amount:      e.Amount,
		})
	}

	summary := lookup.Label(analytics.Summarize(expenses))
	return &Report{
		Rows:           rows,
		Count:          summary.ExpenseCount,
		Total:          summary.TotalAmount,
		TotalFormatted: format.Money(summary.TotalAmount, currency),
		Summary:        summary,
		Currency:       currency,
		GeneratedAt:    now,
	}
}

// FileName is the download name of a report generated at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("expense-report-%s.csv", format.Date(now))
}

// safeCell prefixes text that a spreadsheet would evaluate as a formula with
// a single quote.
func safeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// WriteCSV writes the report rows followed by a Total row.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range r.Rows {
		record := []string{row.Date, safeCell(row.Description), safeCell(row.Category), row.Amount.StringFixed(2)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"Total", "", "", r.Total.StringFixed(2)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
