package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

// userService handles user-related business logic.
type userService struct {
	db       *gorm.DB
	currency string
	now      Clock
	samples  ExpenseServicer
	notifier *ChangeNotifier
}

// UserOption customizes a user service.
type UserOption func(*userService)

// WithDefaultCurrency sets the currency given to new users.
func WithDefaultCurrency(code string) UserOption {
	return func(s *userService) { s.currency = strings.ToUpper(code) }
}

// WithSampleExpenses seeds sample expenses for every newly registered user.
func WithSampleExpenses(expenses ExpenseServicer) UserOption {
	return func(s *userService) { s.samples = expenses }
}

// WithUserClock overrides the clock used for lockouts and login timestamps.
func WithUserClock(now Clock) UserOption {
	return func(s *userService) { s.now = now }
}

// WithUserNotifier reports preference changes to notifier.
func WithUserNotifier(notifier *ChangeNotifier) UserOption {
	return func(s *userService) { s.notifier = notifier }
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, opts ...UserOption) UserServicer {
	s := &userService{db: db, currency: "INR", now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a new user
func (s *userService) CreateUser(email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:       email,
		Password:    string(hashedPassword),
		DisplayName: strings.TrimSpace(displayName),
		Currency:    s.currency,
		IsActive:    true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.samples != nil {
		if _, err := s.samples.SeedSampleExpenses(user.ID); err != nil {
			logger.Get().Warnw("Failed to seed sample expenses", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(email), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetActiveUsers lists every active user, oldest first.
func (s *userService) GetActiveUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("is_active = ?", true).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return users, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin checks credentials and tracks failures. The fifth consecutive
// failure locks the account for lockoutDuration.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUserNotFound.Code {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.VerifyPassword(user, password) {
		updates := map[string]interface{}{"failed_login_attempts": user.FailedLoginAttempts + 1}
		if user.FailedLoginAttempts+1 >= maxFailedLogins {
			updates["locked_until"] = now.Add(lockoutDuration)
		}
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	return user, nil
}

// StoreRefreshTokenHash saves the hash of the user's current refresh token.
func (s *userService) StoreRefreshTokenHash(userID, tokenHash string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash.
func (s *userService) GetRefreshTokenHash(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// UpdatePreferences changes the display currency and/or dark mode flag.
func (s *userService) UpdatePreferences(userID string, currency *string, darkMode *bool) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*currency))
		if len(code) != 3 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be an ISO 4217 code")
		}
		updates["currency"] = code
	}
	if darkMode != nil {
		updates["dark_mode"] = *darkMode
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if currency != nil {
		user.Currency = updates["currency"].(string)
	}
	if darkMode != nil {
		user.DarkMode = *darkMode
	}

	s.notifier.Notify(Change{
		UserID:     userID,
		Resource:   ResourceProfile,
		Action:     ActionUpdated,
		ResourceID: userID,
		At:         s.now(),
	})
	return user, nil
}
