package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrEventNotFound = errors.New("event not found")
	ErrTeamNotFound  = errors.New("team not found")

	// Status errors
	ErrInvalidTransition = errors.New("event status transition is not allowed")
	ErrEventNotOpen      = errors.New("event does not accept this action in its current status")
	ErrDateConflict      = errors.New("event dates conflict with an existing event")
	ErrXpAlreadyAwarded  = errors.New("XP already awarded for event")
	ErrNotTeamEvent      = errors.New("event is not a team event")

	// Access control errors
	ErrAccessDenied    = errors.New("access denied")
	ErrNotParticipant  = errors.New("user is not a participant of the event")
	ErrOwnTeamRating   = errors.New("cannot rate your own team or yourself")
	ErrUnauthenticated = errors.New("authentication failed")

	// Offline errors
	ErrOffline              = errors.New("client is offline")
	ErrOfflineUnsupported   = errors.New("action cannot be queued while offline")
	ErrQueuedActionNotFound = errors.New("queued action not found")
)

// Context keys for error values
const (
	EventIDKey  = "event_id"
	UserIDKey   = "user_id"
	ActionIDKey = "action_id"
	StatusKey   = "status"
	TeamNameKey = "team_name"
)
