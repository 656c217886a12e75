package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func newValidate() *validator.Validate {
	v := validator.New()
	registerAll(v)
	return v
}

func TestCustomTags(t *testing.T) {
	v := newValidate()

	tests := []struct {
		tag   string
		value string
		valid bool
	}{
		{"iso4217", "INR", true},
		{"iso4217", "USD", true},
		{"iso4217", "usd", false},
		{"iso4217", "ABC", false},
		{"iso4217", "EURO", false},
		{"hex_color", "#F59E0B", true},
		{"hex_color", "#fff", true},
		{"hex_color", "F59E0B", false},
		{"hex_color", "#GGGGGG", false},
		{"month_key", "2024-01", true},
		{"month_key", "2024-12", true},
		{"month_key", "2024-13", false},
		{"month_key", "2024-1", false},
		{"calendar_date", "2024-02-29", true},
		{"calendar_date", "2023-02-29", false},
		{"calendar_date", "15/01/2024", false},
		{"not_blank", "Groceries", true},
		{"not_blank", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.value, func(t *testing.T) {
			err := v.Var(tt.value, tt.tag)
			if tt.valid && err != nil {
				t.Errorf("expected %q to pass %s: %v", tt.value, tt.tag, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected %q to fail %s", tt.value, tt.tag)
			}
		})
	}
}
