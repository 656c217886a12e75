package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/analytics"
	"spendwise/internal/models"
	"spendwise/internal/report"
)

// Clock returns the current instant. Services take one so tests can pin "now".
type Clock func() time.Time

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetActiveUsers() ([]models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	UpdatePreferences(userID string, currency *string, darkMode *bool) (*models.User, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name, color, icon string) (*models.Category, error)
	GetUserCategories(userID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, color, icon string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// ExpenseFilter holds optional filter parameters for listing expenses.
// All set fields must match.
type ExpenseFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	CategoryIDs []string
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	Search      string
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID, categoryID string, amount decimal.Decimal, description string, date time.Time) (*models.Expense, error)
	GetUserExpenses(userID string, filter ExpenseFilter) ([]models.Expense, error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID, categoryID string, amount decimal.Decimal, description string, date time.Time) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
	SeedSampleExpenses(userID string) ([]models.Expense, error)
}

// TrendPoint is one month of a spending trend with its chart labels.
type TrendPoint struct {
	Month     string          `json:"month"`
	Label     string          `json:"label"`
	LongLabel string          `json:"long_label"`
	Amount    decimal.Decimal `json:"amount"`
}

// Dashboard bundles everything the overview page shows.
type Dashboard struct {
	Summary        analytics.Summary          `json:"summary"`
	Trends         []TrendPoint               `json:"monthly_trends"`
	MonthOverMonth analytics.MonthOverMonth   `json:"month_over_month"`
	TopCategory    *analytics.CategorySummary `json:"top_category"`
	RecentExpenses []models.Expense           `json:"recent_expenses"`
	Categories     []models.Category          `json:"categories"`
	Currency       string                     `json:"currency"`
	GeneratedAt    time.Time                  `json:"generated_at"`
}

// AnalyticsServicer defines the contract for spending analytics. It listens
// for changes so memoized views can be dropped.
type AnalyticsServicer interface {
	ChangeListener
	GetDashboard(userID string) (*Dashboard, error)
	GetSummary(userID string, filter ExpenseFilter) (*analytics.Summary, error)
	GetTrends(userID string, filter ExpenseFilter) ([]TrendPoint, error)
	GetMonthOverMonth(userID string, month *analytics.Period) (*analytics.MonthOverMonth, error)
}

// ReportServicer defines the contract for filtered expense reports.
type ReportServicer interface {
	GetReport(userID string, filter ExpenseFilter) (*report.Report, error)
}

// DigestResult describes one user's digest for a closed month.
type DigestResult struct {
	UserID      string                     `json:"user_id"`
	Email       string                     `json:"email"`
	Month       analytics.Period           `json:"month"`
	Total       decimal.Decimal            `json:"total"`
	Delta       analytics.Delta            `json:"delta"`
	TopCategory *analytics.CategorySummary `json:"top_category,omitempty"`
	Text        string                     `json:"text"`
}

// DigestRun summarizes one execution of the monthly digest job.
type DigestRun struct {
	Month     analytics.Period `json:"month"`
	Users     int              `json:"users"`
	Published int              `json:"published"`
	Failed    int              `json:"failed"`
}

// DigestServicer defines the contract for the monthly spending digest.
type DigestServicer interface {
	BuildDigest(user *models.User, month analytics.Period) (*DigestResult, error)
	RunMonthlyDigest(ctx context.Context) (*DigestRun, error)
}
