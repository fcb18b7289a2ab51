package types

import "fmt"

// EventStatus represents the lifecycle status of a community event
type EventStatus string

const (
	EventStatusPending    EventStatus = "Pending"
	EventStatusApproved   EventStatus = "Approved"
	EventStatusInProgress EventStatus = "InProgress"
	EventStatusCompleted  EventStatus = "Completed"
	EventStatusCancelled  EventStatus = "Cancelled"
	EventStatusRejected   EventStatus = "Rejected"
	EventStatusClosed     EventStatus = "Closed"
)

// AllEventStatuses returns all valid event statuses
func AllEventStatuses() []EventStatus {
	return []EventStatus{
		EventStatusPending,
		EventStatusApproved,
		EventStatusInProgress,
		EventStatusCompleted,
		EventStatusCancelled,
		EventStatusRejected,
		EventStatusClosed,
	}
}

// ActiveEventStatuses returns the statuses that occupy the calendar.
// Two events in these statuses must never overlap.
func ActiveEventStatuses() []EventStatus {
	return []EventStatus{
		EventStatusApproved,
		EventStatusInProgress,
		EventStatusCompleted,
	}
}

// IsValid checks if the event status is valid
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusPending,
		EventStatusApproved,
		EventStatusInProgress,
		EventStatusCompleted,
		EventStatusCancelled,
		EventStatusRejected,
		EventStatusClosed:
		return true
	default:
		return false
	}
}

// IsActive reports whether the status blocks the event's date range for other events
func (s EventStatus) IsActive() bool {
	switch s {
	case EventStatusApproved, EventStatusInProgress, EventStatusCompleted:
		return true
	default:
		return false
	}
}

var eventStatusTransitions = map[EventStatus][]EventStatus{
	EventStatusPending:    {EventStatusApproved, EventStatusRejected, EventStatusCancelled},
	EventStatusApproved:   {EventStatusInProgress, EventStatusCancelled},
	EventStatusInProgress: {EventStatusCompleted, EventStatusCancelled},
	EventStatusCompleted:  {EventStatusClosed},
}

// CanTransitionTo reports whether an event may move from s to next
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	for _, allowed := range eventStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String returns the string representation of the event status
func (s EventStatus) String() string {
	return string(s)
}

// ParseEventStatus parses a string into an EventStatus
func ParseEventStatus(s string) (EventStatus, error) {
	status := EventStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid event status: %s", s)
	}
	return status, nil
}
