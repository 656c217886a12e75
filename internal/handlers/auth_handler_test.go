package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/middleware"
	"spendwise/internal/models"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := newTestRouter()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.Refresh)
	r.GET("/profile", injectUserID(testUserID), handler.GetProfile)
	r.PUT("/profile/preferences", injectUserID(testUserID), handler.UpdatePreferences)
	return r
}

func testUser() *models.User {
	return &models.User{
		Base:        models.Base{ID: testUserID},
		Email:       "test@example.com",
		DisplayName: "Test User",
		Currency:    "INR",
	}
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 with tokens", func(t *testing.T) {
		var storedHash string
		userSvc := &mockUserService{
			createUserFn: func(email, _, displayName string) (*models.User, error) {
				u := testUser()
				u.Email = email
				u.DisplayName = displayName
				return u, nil
			},
			storeRefreshTokenHashFn: func(_, hash string) error {
				storedHash = hash
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/register",
			`{"email":"new@example.com","password":"password123","display_name":"New"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["access_token"] == "" || result["refresh_token"] == "" {
			t.Error("expected both tokens in response")
		}
		if storedHash != middleware.HashToken(result["refresh_token"].(string)) {
			t.Error("expected refresh token hash to be stored")
		}
		user := result["user"].(map[string]interface{})
		if user["email"] != "new@example.com" || user["display_name"] != "New" {
			t.Errorf("unexpected user %v", user)
		}
	})

	t.Run("returns 400 on short password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}))

		rec := doRequest(r, "POST", "/auth/register", `{"email":"new@example.com","password":"short"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 on duplicate email", func(t *testing.T) {
		userSvc := &mockUserService{
			createUserFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/register", `{"email":"dup@example.com","password":"password123"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 with tokens", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return testUser(), nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"test@example.com","password":"password123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if _, ok := result["access_token"].(string); !ok {
			t.Error("expected access_token")
		}
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"test@example.com","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 423 when locked", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrAccountLocked
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"test@example.com","password":"password123"}`)

		if rec.Code != http.StatusLocked {
			t.Fatalf("expected 423, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid email", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"not-an-email","password":"x"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	user := testUser()
	refresh, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}
	access, _ := middleware.GenerateAccessToken(user)

	t.Run("rotates a valid refresh token", func(t *testing.T) {
		stored := middleware.HashToken(refresh)
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(string) (string, error) { return stored, nil },
			getUserByIDFn:         func(string) (*models.User, error) { return user, nil },
			storeRefreshTokenHashFn: func(_, hash string) error {
				stored = hash
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if stored != middleware.HashToken(result["refresh_token"].(string)) {
			t.Error("expected the new refresh token hash to be stored")
		}
	})

	t.Run("rejects a revoked refresh token", func(t *testing.T) {
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(string) (string, error) { return middleware.HashToken("something-else"), nil },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TOKEN")
	})

	t.Run("rejects an access token", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}))

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, access))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TOKEN")
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns profile with preferences", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				if id != testUserID {
					t.Errorf("expected user id %s, got %s", testUserID, id)
				}
				u := testUser()
				u.DarkMode = true
				return u, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["currency"] != "INR" || user["dark_mode"] != true {
			t.Errorf("unexpected preferences %v", user)
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		r := newTestRouter()
		r.GET("/profile", NewAuthHandler(&mockUserService{}).GetProfile)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_UpdatePreferences(t *testing.T) {
	t.Run("passes only provided fields", func(t *testing.T) {
		var gotCurrency *string
		var gotDarkMode *bool
		userSvc := &mockUserService{
			updatePreferencesFn: func(_ string, currency *string, darkMode *bool) (*models.User, error) {
				gotCurrency, gotDarkMode = currency, darkMode
				u := testUser()
				u.Currency = *currency
				return u, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "PUT", "/profile/preferences", `{"currency":"USD"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotCurrency == nil || *gotCurrency != "USD" {
			t.Errorf("expected currency USD, got %v", gotCurrency)
		}
		if gotDarkMode != nil {
			t.Error("expected dark_mode to be left unset")
		}
	})

	t.Run("returns 400 on unknown currency", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}))

		rec := doRequest(r, "PUT", "/profile/preferences", `{"currency":"XYZ1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}
