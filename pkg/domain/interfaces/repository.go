package interfaces

import "github.com/m-mizutani/goerr/v2"

// Errors shared by all repository backends
var (
	ErrNotFound         = goerr.New("not found")
	ErrStatusChanged    = goerr.New("event status changed concurrently")
	ErrXpAlreadyAwarded = goerr.New("XP already awarded for event")
	ErrTeamNotFound     = goerr.New("team not found")
)

// Repository defines the interface for data persistence
type Repository interface {
	Event() EventRepository
	Xp() XpRepository
	Close() error
}
