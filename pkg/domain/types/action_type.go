package types

import "fmt"

// ActionType identifies a mutating operation that may be deferred while offline
type ActionType string

const (
	ActionTypeSubmitRating     ActionType = "submitRating"
	ActionTypeCreateSubmission ActionType = "createSubmission"
	ActionTypeSubmitFeedback   ActionType = "submitFeedback"
)

// AllActionTypes returns every action type the offline queue knows how to replay
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionTypeSubmitRating,
		ActionTypeCreateSubmission,
		ActionTypeSubmitFeedback,
	}
}

// IsValid checks if the action type is known
func (t ActionType) IsValid() bool {
	switch t {
	case ActionTypeSubmitRating,
		ActionTypeCreateSubmission,
		ActionTypeSubmitFeedback:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action type
func (t ActionType) String() string {
	return string(t)
}

// ParseActionType parses a string into an ActionType
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid action type: %s", s)
	}
	return t, nil
}
