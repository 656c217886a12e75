package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := parseBody(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	code, _ := errObj["code"].(string)
	return code
}

func testUser() *models.User {
	return &models.User{
		Base:  models.Base{ID: "0190a6f4-7b5d-7c3e-8a1b-2c3d4e5f6a7b"},
		Email: "test@example.com",
	}
}

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey), "email": c.GetString(EmailKey)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	user := testUser()
	access, err := GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	refresh, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID:    user.ID,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("failed to sign forged token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "valid_access_token", header: "Bearer " + access, wantStatus: http.StatusOK},
		{name: "missing_header", header: "", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "wrong_scheme", header: "Token " + access, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "refresh_token_rejected", header: "Bearer " + refresh, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "garbage_token", header: "Bearer not.a.token", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "wrong_secret", header: "Bearer " + forged, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			setupAuthRouter().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("error code = %q, want %q", code, tt.wantCode)
				}
				return
			}
			body := parseBody(t, rec)
			if body["user_id"] != user.ID {
				t.Errorf("user_id = %v, want %s", body["user_id"], user.ID)
			}
			if body["email"] != user.Email {
				t.Errorf("email = %v, want %s", body["email"], user.Email)
			}
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	user := testUser()

	refresh, _ := GenerateRefreshToken(user)
	claims, err := ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != user.ID || claims.Subject != user.ID {
		t.Errorf("unexpected claims %+v", claims)
	}

	access, _ := GenerateAccessToken(user)
	if _, err := ValidateRefreshToken(access); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("expected INVALID_TOKEN for access token, got %v", err)
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
	if a != HashToken("token-a") {
		t.Error("expected hashing to be deterministic")
	}
	if a == HashToken("token-b") {
		t.Error("expected different tokens to hash differently")
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{name: "valid_api_key", configuredKey: "secret-job-key", requestKey: "secret-job-key", wantStatus: http.StatusOK},
		{name: "invalid_api_key", configuredKey: "secret-job-key", requestKey: "wrong-key", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "missing_api_key", configuredKey: "secret-job-key", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "empty_configured_key", requestKey: "any-key", wantStatus: http.StatusServiceUnavailable, wantErrorCode: "JOBS_NOT_CONFIGURED"},
		{name: "partial_match_rejected", configuredKey: "secret-job-key", requestKey: "secret-job", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(APIKeyMiddleware(tt.configuredKey))
			r.POST("/run", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})

			req := httptest.NewRequest(http.MethodPost, "/run", http.NoBody)
			if tt.requestKey != "" {
				req.Header.Set("X-API-Key", tt.requestKey)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErrorCode != "" {
				if code := errorCode(t, rec); code != tt.wantErrorCode {
					t.Errorf("error code = %q, want %q", code, tt.wantErrorCode)
				}
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "app_error", err: apperrors.ErrExpenseNotFound, wantStatus: http.StatusNotFound, wantCode: "EXPENSE_NOT_FOUND"},
		{name: "wrapped_app_error", err: apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("db down")), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
		{name: "plain_error", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/fail", func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", http.NoBody))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("error code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestErrorHandler_ResponseAlreadyWritten(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/partial", func(c *gin.Context) {
		c.String(http.StatusAccepted, "queued")
		_ = c.Error(fmt.Errorf("late failure"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/partial", http.NoBody))

	if rec.Code != http.StatusAccepted || rec.Body.String() != "queued" {
		t.Errorf("expected the written response to be kept, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	t.Run("generates_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))

		id := rec.Header().Get("X-Request-ID")
		if id == "" {
			t.Fatal("expected X-Request-ID header")
		}
		if rec.Body.String() != id {
			t.Errorf("context id %q does not match header %q", rec.Body.String(), id)
		}
	})

	t.Run("reuses_incoming_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("X-Request-ID", "upstream-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "upstream-123" {
			t.Errorf("X-Request-ID = %q, want upstream-123", got)
		}
	})
}
