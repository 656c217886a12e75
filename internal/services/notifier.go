package services

import (
	"sync"
	"time"
)

// Resources reported in a Change.
const (
	ResourceExpenses   = "expenses"
	ResourceCategories = "categories"
	ResourceProfile    = "profile"
)

// Actions reported in a Change.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Change describes a committed write to a user's data.
type Change struct {
	UserID     string    `json:"user_id"`
	Resource   string    `json:"resource"`
	Action     string    `json:"action"`
	ResourceID string    `json:"resource_id"`
	At         time.Time `json:"at"`
}

// ChangeListener is told about every committed write.
type ChangeListener interface {
	OnChange(change Change)
}

// ChangeListenerFunc adapts a function to ChangeListener.
type ChangeListenerFunc func(change Change)

// OnChange calls f(change).
func (f ChangeListenerFunc) OnChange(change Change) { f(change) }

// ChangeNotifier fans changes out to subscribed listeners, synchronously and
// in subscription order. A nil *ChangeNotifier drops every change.
type ChangeNotifier struct {
	mu        sync.RWMutex
	listeners []ChangeListener
}

// NewChangeNotifier creates a notifier with no listeners.
func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{}
}

// Subscribe adds a listener.
func (n *ChangeNotifier) Subscribe(l ChangeListener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// Notify delivers change to every listener.
func (n *ChangeNotifier) Notify(change Change) {
	if n == nil {
		return
	}
	n.mu.RLock()
	listeners := n.listeners
	n.mu.RUnlock()

	for _, l := range listeners {
		l.OnChange(change)
	}
}
