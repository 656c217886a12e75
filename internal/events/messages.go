package events

import (
	"encoding/json"
	"time"

	"spendwise/internal/services"
)

// Routing keys used on the events exchange.
const (
	RoutingKeyExpensesChanged   = "expenses.changed"
	RoutingKeyCategoriesChanged = "categories.changed"
	RoutingKeyProfileChanged    = "profile.changed"
	RoutingKeyMonthlyDigest     = "digest.monthly"
)

// ChangeMessage announces that a user's expenses, categories or profile changed.
type ChangeMessage struct {
	UserID     string    `json:"user_id"`
	Resource   string    `json:"resource"`
	Action     string    `json:"action"`
	ResourceID string    `json:"resource_id,omitempty"`
	At         time.Time `json:"at"`
}

// NewChangeMessage converts a service change into its wire form.
func NewChangeMessage(c services.Change) *ChangeMessage {
	return &ChangeMessage{
		UserID:     c.UserID,
		Resource:   c.Resource,
		Action:     c.Action,
		ResourceID: c.ResourceID,
		At:         c.At,
	}
}

// RoutingKey returns the key the message is published under.
func (m *ChangeMessage) RoutingKey() string {
	switch m.Resource {
	case services.ResourceCategories:
		return RoutingKeyCategoriesChanged
	case services.ResourceProfile:
		return RoutingKeyProfileChanged
	default:
		return RoutingKeyExpensesChanged
	}
}

// ToJSON serializes the message.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DigestMessage carries one user's monthly digest.
type DigestMessage struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Month       string    `json:"month"`
	Total       string    `json:"total"`
	TopCategory string    `json:"top_category,omitempty"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sent_at"`
}

// NewDigestMessage converts a digest into its wire form.
func NewDigestMessage(d *services.DigestResult, sentAt time.Time) *DigestMessage {
	msg := &DigestMessage{
		UserID: d.UserID,
		Email:  d.Email,
		Month:  d.Month.Key(),
		Total:  d.Total.StringFixed(2),
		Text:   d.Text,
		SentAt: sentAt,
	}
	if d.TopCategory != nil {
		msg.TopCategory = d.TopCategory.Name
	}
	return msg
}

// ToJSON serializes the message.
func (m *DigestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON deserializes a change message.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DigestMessageFromJSON deserializes a digest message.
func DigestMessageFromJSON(data []byte) (*DigestMessage, error) {
	var msg DigestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
