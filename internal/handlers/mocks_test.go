package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"spendwise/internal/analytics"
	"spendwise/internal/logger"
	"spendwise/internal/middleware"
	"spendwise/internal/models"
	"spendwise/internal/report"
	"spendwise/internal/services"
	"spendwise/internal/validator"
)

const (
	testUserID     = "0190a6f4-7b5d-7c3e-8a1b-2c3d4e5f6a7b"
	testCategoryID = "0190a6f4-7b5d-7c3e-8a1b-000000000001"
	testExpenseID  = "0190a6f4-7b5d-7c3e-8a1b-000000000002"
)

// --- mock services ---

type mockUserService struct {
	createUserFn            func(email, password, displayName string) (*models.User, error)
	getUserByEmailFn        func(email string) (*models.User, error)
	getUserByIDFn           func(id string) (*models.User, error)
	getActiveUsersFn        func() ([]models.User, error)
	verifyPasswordFn        func(user *models.User, password string) bool
	attemptLoginFn          func(email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
	updatePreferencesFn     func(userID string, currency *string, darkMode *bool) (*models.User, error)
}

func (m *mockUserService) CreateUser(email, password, displayName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, displayName)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetActiveUsers() ([]models.User, error) {
	if m.getActiveUsersFn != nil {
		return m.getActiveUsersFn()
	}
	return nil, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

func (m *mockUserService) UpdatePreferences(userID string, currency *string, darkMode *bool) (*models.User, error) {
	if m.updatePreferencesFn != nil {
		return m.updatePreferencesFn(userID, currency, darkMode)
	}
	return &models.User{}, nil
}

type mockCategoryService struct {
	createCategoryFn    func(userID, name, color, icon string) (*models.Category, error)
	getUserCategoriesFn func(userID string) ([]models.Category, error)
	getCategoryByIDFn   func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn    func(userID, categoryID, name, color, icon string) (*models.Category, error)
	deleteCategoryFn    func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(userID, name, color, icon string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name, color, icon)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetUserCategories(userID string) ([]models.Category, error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID, name, color, icon string) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, name, color, icon)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

type mockExpenseService struct {
	createExpenseFn   func(userID, categoryID string, amount decimal.Decimal, description string, date time.Time) (*models.Expense, error)
	getUserExpensesFn func(userID string, filter services.ExpenseFilter) ([]models.Expense, error)
	getExpenseByIDFn  func(userID, expenseID string) (*models.Expense, error)
	updateExpenseFn   func(userID, expenseID, categoryID string, amount decimal.Decimal, description string, date time.Time) (*models.Expense, error)
	deleteExpenseFn   func(userID, expenseID string) error
}

func (m *mockExpenseService) CreateExpense(userID, categoryID string, amount decimal.Decimal, description string, date time.Time) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, categoryID, amount, description, date)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetUserExpenses(userID string, filter services.ExpenseFilter) ([]models.Expense, error) {
	if m.getUserExpensesFn != nil {
		return m.getUserExpensesFn(userID, filter)
	}
	return []models.Expense{}, nil
}

func (m *mockExpenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(userID, expenseID, categoryID string, amount decimal.Decimal, description string, date time.Time) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(userID, expenseID, categoryID, amount, description, date)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(userID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

func (m *mockExpenseService) SeedSampleExpenses(string) ([]models.Expense, error) {
	return nil, nil
}

type mockAnalyticsService struct {
	getDashboardFn      func(userID string) (*services.Dashboard, error)
	getSummaryFn        func(userID string, filter services.ExpenseFilter) (*analytics.Summary, error)
	getTrendsFn         func(userID string, filter services.ExpenseFilter) ([]services.TrendPoint, error)
	getMonthOverMonthFn func(userID string, month *analytics.Period) (*analytics.MonthOverMonth, error)
}

func (m *mockAnalyticsService) OnChange(services.Change) {}

func (m *mockAnalyticsService) GetDashboard(userID string) (*services.Dashboard, error) {
	if m.getDashboardFn != nil {
		return m.getDashboardFn(userID)
	}
	return &services.Dashboard{}, nil
}

func (m *mockAnalyticsService) GetSummary(userID string, filter services.ExpenseFilter) (*analytics.Summary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(userID, filter)
	}
	s := analytics.Summarize(nil)
	return &s, nil
}

func (m *mockAnalyticsService) GetTrends(userID string, filter services.ExpenseFilter) ([]services.TrendPoint, error) {
	if m.getTrendsFn != nil {
		return m.getTrendsFn(userID, filter)
	}
	return []services.TrendPoint{}, nil
}

func (m *mockAnalyticsService) GetMonthOverMonth(userID string, month *analytics.Period) (*analytics.MonthOverMonth, error) {
	if m.getMonthOverMonthFn != nil {
		return m.getMonthOverMonthFn(userID, month)
	}
	return &analytics.MonthOverMonth{}, nil
}

type mockReportService struct {
	getReportFn func(userID string, filter services.ExpenseFilter) (*report.Report, error)
}

func (m *mockReportService) GetReport(userID string, filter services.ExpenseFilter) (*report.Report, error) {
	if m.getReportFn != nil {
		return m.getReportFn(userID, filter)
	}
	return report.Build(nil, analytics.NewCategoryLookup(nil), "INR", time.Now()), nil
}

type mockDigestService struct {
	runMonthlyDigestFn func(ctx context.Context) (*services.DigestRun, error)
}

func (m *mockDigestService) BuildDigest(*models.User, analytics.Period) (*services.DigestResult, error) {
	return nil, nil
}

func (m *mockDigestService) RunMonthlyDigest(ctx context.Context) (*services.DigestRun, error) {
	if m.runMonthlyDigestFn != nil {
		return m.runMonthlyDigestFn(ctx)
	}
	return &services.DigestRun{}, nil
}

var (
	_ services.UserServicer      = (*mockUserService)(nil)
	_ services.CategoryServicer  = (*mockCategoryService)(nil)
	_ services.ExpenseServicer   = (*mockExpenseService)(nil)
	_ services.AnalyticsServicer = (*mockAnalyticsService)(nil)
	_ services.ReportServicer    = (*mockReportService)(nil)
	_ services.DigestServicer    = (*mockDigestService)(nil)
)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// newTestRouter mirrors the production chain: handlers record errors and
// ErrorHandler renders them.
func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
