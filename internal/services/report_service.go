package services

import (
	"time"

	"spendwise/internal/analytics"
	"spendwise/internal/report"
)

// reportService builds filtered expense reports.
type reportService struct {
	expenses   ExpenseServicer
	categories CategoryServicer
	users      UserServicer
	now        Clock
}

// NewReportService creates a new ReportServicer.
func NewReportService(expenses ExpenseServicer, categories CategoryServicer, users UserServicer, now Clock) ReportServicer {
	if now == nil {
		now = time.Now
	}
	return &reportService{expenses: expenses, categories: categories, users: users, now: now}
}

// GetReport lists the filtered expenses with totals, in the user's currency.
func (s *reportService) GetReport(userID string, filter ExpenseFilter) (*report.Report, error) {
	data, err := loadUserData(s.users, s.expenses, s.categories, userID, filter)
	if err != nil {
		return nil, err
	}

	lookup := analytics.NewCategoryLookup(data.categories)
	return report.Build(data.expenses, lookup, data.user.Currency, s.now()), nil
}
