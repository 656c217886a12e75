// Package format renders amounts and months for people: currency strings for
// digests and reports, short and long month labels for charts.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"spendwise/internal/analytics"
)

// DefaultCurrency is used when a user has not picked one.
const DefaultCurrency = "INR"

// Money formats amount in the given ISO 4217 currency with English digit
// grouping, e.g. "₹1,234.50". Unknown codes fall back to DefaultCurrency.
func Money(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		unit = currency.MustParseISO(DefaultCurrency)
	}

	p := message.NewPrinter(language.English)
	symbol := p.Sprint(currency.NarrowSymbol(unit))

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	return sign + symbol + p.Sprintf("%.2f", amount.Round(2).InexactFloat64())
}

// Percent formats a percentage with one decimal place, e.g. "66.7%".
func Percent(pct float64) string {
	return message.NewPrinter(language.English).Sprintf("%.1f%%", pct)
}

// ShortMonth labels a "YYYY-MM" key with the abbreviated month name ("Jan").
// Keys that do not parse are returned unchanged.
func ShortMonth(key string) string {
	p, err := analytics.ParseMonthKey(key)
	if err != nil {
		return key
	}
	return p.Start().Format("Jan")
}

// LongMonth labels a "YYYY-MM" key with month name and year ("January 2024").
// Keys that do not parse are returned unchanged.
func LongMonth(key string) string {
	p, err := analytics.ParseMonthKey(key)
	if err != nil {
		return key
	}
	return p.Start().Format("January 2006")
}

// Date renders a calendar date as "YYYY-MM-DD".
func Date(t time.Time) string {
	return t.Format(time.DateOnly)
}
