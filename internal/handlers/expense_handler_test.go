package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/services"
)

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := newTestRouter()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/expenses", handler.CreateExpense)
	auth.GET("/expenses", handler.GetUserExpenses)
	auth.GET("/expenses/:id", handler.GetExpenseByID)
	auth.PUT("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 and passes parsed values", func(t *testing.T) {
		var gotAmount decimal.Decimal
		var gotDate time.Time
		expSvc := &mockExpenseService{
			createExpenseFn: func(userID, categoryID string, amount decimal.Decimal, description string, date time.Time) (*models.Expense, error) {
				gotAmount, gotDate = amount, date
				return &models.Expense{
					Base:        models.Base{ID: testExpenseID},
					UserID:      userID,
					CategoryID:  categoryID,
					Amount:      amount,
					Description: description,
					Date:        date,
				}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(expSvc))

		rec := doRequest(r, "POST", "/expenses",
			`{"category_id":"`+testCategoryID+`","amount":"125.50","description":"Lunch","date":"2024-01-15"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !gotAmount.Equal(decimal.RequireFromString("125.5")) {
			t.Errorf("expected amount 125.5, got %s", gotAmount)
		}
		if !gotDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date %v", gotDate)
		}
	})

	t.Run("accepts numeric amount", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/expenses",
			`{"category_id":"`+testCategoryID+`","amount":42,"date":"2024-01-15"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing amount", body: `{"category_id":"` + testCategoryID + `","date":"2024-01-15"}`},
		{name: "missing category", body: `{"amount":"10","date":"2024-01-15"}`},
		{name: "invalid category id", body: `{"category_id":"food","amount":"10","date":"2024-01-15"}`},
		{name: "invalid date", body: `{"category_id":"` + testCategoryID + `","amount":"10","date":"15/01/2024"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

			rec := doRequest(r, "POST", "/expenses", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 400 on negative amount", func(t *testing.T) {
		expSvc := &mockExpenseService{
			createExpenseFn: func(_, _ string, _ decimal.Decimal, _ string, _ time.Time) (*models.Expense, error) {
				return nil, apperrors.ErrNegativeAmount
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(expSvc))

		rec := doRequest(r, "POST", "/expenses",
			`{"category_id":"`+testCategoryID+`","amount":"-5","date":"2024-01-15"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NEGATIVE_AMOUNT")
	})
}

func TestExpenseHandler_GetUserExpenses(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var got services.ExpenseFilter
		expSvc := &mockExpenseService{
			getUserExpensesFn: func(_ string, filter services.ExpenseFilter) ([]models.Expense, error) {
				got = filter
				return []models.Expense{{Base: models.Base{ID: testExpenseID}}}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(expSvc))

		other := "0190a6f4-7b5d-7c3e-8a1b-000000000009"
		rec := doRequest(r, "GET",
			"/expenses?from_date=2024-01-01&to_date=2024-01-31&category_id="+testCategoryID+","+other+
				"&min_amount=10&max_amount=99.99&q=%20lunch%20", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.FromDate == nil || got.ToDate == nil {
			t.Fatal("expected both dates")
		}
		if got.ToDate.Day() != 31 {
			t.Errorf("unexpected to_date %v", got.ToDate)
		}
		if len(got.CategoryIDs) != 2 || got.CategoryIDs[1] != other {
			t.Errorf("unexpected category ids %v", got.CategoryIDs)
		}
		if got.MinAmount == nil || !got.MinAmount.Equal(decimal.NewFromInt(10)) {
			t.Errorf("unexpected min_amount %v", got.MinAmount)
		}
		if got.MaxAmount == nil || got.MaxAmount.String() != "99.99" {
			t.Errorf("unexpected max_amount %v", got.MaxAmount)
		}
		if got.Search != "lunch" {
			t.Errorf("expected trimmed search, got %q", got.Search)
		}
		if parseJSON(t, rec)["count"] != float64(1) {
			t.Error("expected count 1")
		}
	})

	t.Run("accepts repeated category_id", func(t *testing.T) {
		var got services.ExpenseFilter
		expSvc := &mockExpenseService{
			getUserExpensesFn: func(_ string, filter services.ExpenseFilter) ([]models.Expense, error) {
				got = filter
				return nil, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(expSvc))

		rec := doRequest(r, "GET", "/expenses?category_id="+testCategoryID+"&category_id="+testExpenseID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(got.CategoryIDs) != 2 {
			t.Errorf("expected 2 category ids, got %v", got.CategoryIDs)
		}
	})

	tests := []struct {
		name  string
		query string
	}{
		{name: "bad from_date", query: "from_date=yesterday"},
		{name: "reversed range", query: "from_date=2024-02-01&to_date=2024-01-01"},
		{name: "bad category", query: "category_id=food"},
		{name: "bad min_amount", query: "min_amount=ten"},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

			rec := doRequest(r, "GET", "/expenses?"+tt.query, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestExpenseHandler_GetExpenseByID(t *testing.T) {
	expSvc := &mockExpenseService{
		getExpenseByIDFn: func(_, _ string) (*models.Expense, error) {
			return nil, apperrors.ErrExpenseNotFound
		},
	}
	r := setupExpenseRouter(NewExpenseHandler(expSvc))

	rec := doRequest(r, "GET", "/expenses/"+testExpenseID, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
}

func TestExpenseHandler_UpdateExpense(t *testing.T) {
	var gotID string
	expSvc := &mockExpenseService{
		updateExpenseFn: func(_, expenseID, categoryID string, amount decimal.Decimal, description string, date time.Time) (*models.Expense, error) {
			gotID = expenseID
			return &models.Expense{Base: models.Base{ID: expenseID}, CategoryID: categoryID, Amount: amount, Description: description, Date: date}, nil
		},
	}
	r := setupExpenseRouter(NewExpenseHandler(expSvc))

	rec := doRequest(r, "PUT", "/expenses/"+testExpenseID,
		`{"category_id":"`+testCategoryID+`","amount":"80","description":"Taxi","date":"2024-02-03"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != testExpenseID {
		t.Errorf("expected %s, got %s", testExpenseID, gotID)
	}
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "DELETE", "/expenses/"+testExpenseID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "DELETE", "/expenses/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
