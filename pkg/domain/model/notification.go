package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

// DefaultNotificationDuration is applied when a notification does not set one
const DefaultNotificationDuration = 5 * time.Second

// Notification is an ephemeral user-facing message.
// A nil Duration means the default applies; zero keeps it until dismissed.
type Notification struct {
	ID        string
	Type      types.NotificationType
	Title     string
	Message   string
	Duration  *time.Duration
	CreatedAt time.Time
}

// NewNotificationID generates a unique notification ID
func NewNotificationID() string {
	return uuid.New().String()
}

// Persistent reports whether the notification stays until explicitly dismissed
func (n *Notification) Persistent() bool {
	return n.Duration != nil && *n.Duration == 0
}
