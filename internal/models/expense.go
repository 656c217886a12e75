package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents one recorded spending transaction.
type Expense struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description string          `gorm:"size:500" json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
}

// CalendarDate truncates t to midnight UTC of its own calendar day. Expense
// dates carry no time-of-day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
