package model

import "time"

// NetworkStatus is the last known connectivity state
type NetworkStatus struct {
	Online            bool
	LastChecked       time.Time
	LastOnline        *time.Time
	LastOffline       *time.Time
	ReconnectAttempts int
}
