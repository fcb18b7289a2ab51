package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidDate          = goerr.New("invalid date")
	ErrInvalidDateRange     = goerr.New("end date is before start date")
	ErrInvalidTeamCount     = goerr.New("number of teams must be positive")
	ErrTooManyTeams         = goerr.New("number of teams exceeds the allowed maximum")
	ErrNotEnoughMembers     = goerr.New("not enough participants for the requested teams")
	ErrXpBatchTooLarge      = goerr.New("too many users for a single XP award batch")
	ErrXpBatchMissingEvent  = goerr.New("event id and name are required for XP awards")
	ErrInvalidPayload       = goerr.New("invalid action payload")
	ErrMissingRequiredInput = goerr.New("required input is missing")
)

// Context keys for error values
const (
	EventIDKey    = "event_id"
	StartKey      = "start"
	EndKey        = "end"
	ActionTypeKey = "action_type"
	UserCountKey  = "user_count"
)
