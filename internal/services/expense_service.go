package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
)

// sampleExpense is a demo expense placed in the registration month.
type sampleExpense struct {
	Category    string
	Amount      int64
	Description string
	Day         int
}

var sampleExpenses = []sampleExpense{
	{Category: "Food & Dining", Amount: 2500, Description: "Monthly Groceries", Day: 15},
	{Category: "Utilities", Amount: 1800, Description: "Electricity Bill", Day: 10},
	{Category: "Entertainment", Amount: 1200, Description: "Movie Night", Day: 8},
	{Category: "Housing", Amount: 5000, Description: "House Rent", Day: 1},
	{Category: "Transportation", Amount: 800, Description: "Bus Pass", Day: 5},
}

// expenseService handles expense-related business logic.
type expenseService struct {
	db         *gorm.DB
	categories CategoryServicer
	notifier   *ChangeNotifier
	now        Clock
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, categories CategoryServicer, notifier *ChangeNotifier) ExpenseServicer {
	return &expenseService{
		db:         db,
		categories: categories,
		notifier:   notifier,
		now:        time.Now,
	}
}

// CreateExpense records a new expense. The date is reduced to its calendar day.
func (s *expenseService) CreateExpense(userID, categoryID string, amount decimal.Decimal, description string, date time.Time) (*models.Expense, error) {
	if err := s.validate(userID, categoryID, amount); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = s.now()
	}

	expense := &models.Expense{
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Date:        models.CalendarDate(date),
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify(userID, ActionCreated, expense.ID)
	return expense, nil
}

// GetUserExpenses returns every expense matching filter, newest first.
func (s *expenseService) GetUserExpenses(userID string, filter ExpenseFilter) ([]models.Expense, error) {
	q := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	q = applyExpenseFilters(q, filter)

	var expenses []models.Expense
	if err := q.Order("date DESC").Order("created_at DESC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return matchDescription(expenses, filter.Search), nil
}

// matchDescription keeps the expenses whose description contains term as a
// literal substring, compared under Unicode case folding. SQLite's LOWER only
// folds ASCII, so the match runs here instead of in the query.
func matchDescription(expenses []models.Expense, term string) []models.Expense {
	term = strings.TrimSpace(term)
	if term == "" {
		return expenses
	}
	fold := cases.Fold()
	needle := fold.String(term)

	matched := expenses[:0]
	for _, e := range expenses {
		if strings.Contains(fold.String(e.Description), needle) {
			matched = append(matched, e)
		}
	}
	return matched
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", models.CalendarDate(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date < ?", models.CalendarDate(*f.ToDate).AddDate(0, 0, 1))
	}
	if len(f.CategoryIDs) > 0 {
		q = q.Where("category_id IN ?", f.CategoryIDs)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetExpenseByID retrieves an expense by ID for a specific user
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense replaces every mutable field of an expense.
func (s *expenseService) UpdateExpense(userID, expenseID, categoryID string, amount decimal.Decimal, description string, date time.Time) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(userID, categoryID, amount); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = expense.Date
	}

	expense.CategoryID = categoryID
	expense.Amount = amount
	expense.Description = strings.TrimSpace(description)
	expense.Date = models.CalendarDate(date)

	if err := s.db.Save(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify(userID, ActionUpdated, expense.ID)
	return expense, nil
}

// DeleteExpense soft-deletes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify(userID, ActionDeleted, expenseID)
	return nil
}

// SeedSampleExpenses adds the demo expenses to the current month, creating the
// default categories first if needed. Samples whose category is missing are skipped.
func (s *expenseService) SeedSampleExpenses(userID string) ([]models.Expense, error) {
	categories, err := s.categories.GetUserCategories(userID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
	}

	now := s.now()
	expenses := make([]models.Expense, 0, len(sampleExpenses))
	for _, sample := range sampleExpenses {
		categoryID, ok := byName[sample.Category]
		if !ok {
			continue
		}
		expenses = append(expenses, models.Expense{
			UserID:      userID,
			CategoryID:  categoryID,
			Amount:      decimal.NewFromInt(sample.Amount),
			Description: sample.Description,
			Date:        time.Date(now.Year(), now.Month(), sample.Day, 0, 0, 0, 0, time.UTC),
		})
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&expenses).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify(userID, ActionCreated, "")
	return expenses, nil
}

func (s *expenseService) validate(userID, categoryID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.ErrNegativeAmount
	}
	if categoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id is required")
	}
	_, err := s.categories.GetCategoryByID(userID, categoryID)
	return err
}

func (s *expenseService) notify(userID, action, id string) {
	s.notifier.Notify(Change{
		UserID:     userID,
		Resource:   ResourceExpenses,
		Action:     action,
		ResourceID: id,
		At:         s.now(),
	})
}
