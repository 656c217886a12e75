package analytics

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/models"
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the calendar month containing t, read in t's own location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// CurrentPeriod returns the calendar month containing the reference instant.
func CurrentPeriod(now time.Time) Period {
	return PeriodOf(now)
}

// Previous returns the month before p. January rolls back to December of the
// prior year.
func (p Period) Previous() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Contains reports whether t falls in p. Day and time of day are ignored.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// Start is midnight UTC on the first day of p.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the exclusive upper bound of p: the Start of the following month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Key returns p as "YYYY-MM".
func (p Period) Key() string {
	return MonthKey(p.Start())
}

func (p Period) String() string { return p.Key() }

// MarshalJSON encodes p as its "YYYY-MM" key.
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Key())
}

// UnmarshalJSON accepts a "YYYY-MM" key.
func (p *Period) UnmarshalJSON(data []byte) error {
	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		return err
	}
	parsed, err := ParseMonthKey(key)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SelectPeriod returns the expenses dated within p, in input order.
func SelectPeriod(expenses []models.Expense, p Period) []models.Expense {
	selected := make([]models.Expense, 0)
	for _, e := range expenses {
		if p.Contains(e.Date) {
			selected = append(selected, e)
		}
	}
	return selected
}

// Delta is the relative change between two totals.
type Delta struct {
	Percentage float64 `json:"percentage"`
	Increased  bool    `json:"increased"`
}

// CompareTotals measures current against previous. A previous total of zero
// yields a zero, non-increasing delta whatever the current total is.
func CompareTotals(current, previous decimal.Decimal) Delta {
	if previous.IsZero() {
		return Delta{}
	}
	return Delta{
		Percentage: current.Sub(previous).Abs().Div(previous).Mul(hundred).InexactFloat64(),
		Increased:  current.GreaterThan(previous),
	}
}

// MonthOverMonth compares the month containing the reference instant with the
// month before it.
type MonthOverMonth struct {
	Current         Period           `json:"current_month"`
	Previous        Period           `json:"previous_month"`
	CurrentTotal    decimal.Decimal  `json:"current_total"`
	PreviousTotal   decimal.Decimal  `json:"previous_total"`
	CurrentExpenses []models.Expense `json:"current_expenses"`
	Delta           Delta            `json:"delta"`
}

// CompareMonths selects the current and previous month relative to now and
// compares their totals.
func CompareMonths(expenses []models.Expense, now time.Time) MonthOverMonth {
	current := CurrentPeriod(now)
	previous := current.Previous()

	currentExpenses := SelectPeriod(expenses, current)
	currentTotal := Total(currentExpenses)
	previousTotal := Total(SelectPeriod(expenses, previous))

	return MonthOverMonth{
		Current:         current,
		Previous:        previous,
		CurrentTotal:    currentTotal,
		PreviousTotal:   previousTotal,
		CurrentExpenses: currentExpenses,
		Delta:           CompareTotals(currentTotal, previousTotal),
	}
}
