package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	DisplayName         string     `json:"display_name"`
	Currency            string     `gorm:"size:3;not null;default:INR" json:"currency"`
	DarkMode            bool       `gorm:"default:false" json:"dark_mode"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	Categories          []Category `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Expenses            []Expense  `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
}
