// Package notify carries user-visible events out of the organizer core.
// Components that need to surface a toast-style message call through the
// Notifier port instead of reaching into any shared UI state.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Level classifies a notification for presentation.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one user-visible message. Blocking notifications
// require acknowledgement (failed bulk actions); dismissible ones can be
// closed or expire on their own (degraded-feed warnings, acks).
type Notification struct {
	ID          string    `json:"id"`
	Level       Level     `json:"level"`
	Message     string    `json:"message"`
	Blocking    bool      `json:"blocking"`
	Dismissible bool      `json:"dismissible"`
	CreatedAt   time.Time `json:"created_at"`
}

// New builds a non-blocking, dismissible notification.
func New(level Level, message string) Notification {
	return Notification{
		ID:          uuid.New().String(),
		Level:       level,
		Message:     message,
		Dismissible: true,
		CreatedAt:   time.Now(),
	}
}

// NewBlocking builds a notification that requires acknowledgement.
func NewBlocking(level Level, message string) Notification {
	n := New(level, message)
	n.Blocking = true
	n.Dismissible = false
	return n
}

// Notifier is the port through which the organizer core emits
// notifications. Implementations must not block the caller.
type Notifier interface {
	Notify(n Notification)
}
