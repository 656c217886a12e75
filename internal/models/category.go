package models

// Category is a user-defined label with a display color. Expenses point at it
// by ID; deleting a category leaves those references dangling on purpose.
type Category struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`
	Color  string `gorm:"size:7" json:"color"`
	Icon   string `json:"icon,omitempty"`
}
