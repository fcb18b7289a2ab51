package interfaces

import (
	"context"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

// EventRepository defines the interface for Event data access
type EventRepository interface {
	// Create stores a new event. ID and timestamps are assigned when empty.
	Create(ctx context.Context, event *model.Event) (*model.Event, error)

	// Get retrieves an event by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id model.EventID) (*model.Event, error)

	// List retrieves all events ordered by start date
	List(ctx context.Context) ([]*model.Event, error)

	// ListByStatuses retrieves events whose status is one of statuses
	ListByStatuses(ctx context.Context, statuses []types.EventStatus) ([]*model.Event, error)

	// UpdateStatus moves an event from one status to another atomically.
	// Returns ErrStatusChanged if the stored status is no longer from.
	UpdateStatus(ctx context.Context, id model.EventID, from, to types.EventStatus) (*model.Event, error)

	// SetTeams replaces the event's teams
	SetTeams(ctx context.Context, id model.EventID, teams []model.Team) (*model.Event, error)

	// AddParticipant adds userID to the participants if absent
	AddParticipant(ctx context.Context, id model.EventID, userID string) (*model.Event, error)

	// AddRating appends a rating to the named team, or to the event when teamName is empty.
	// Returns false without writing if a rating with the same ID already exists.
	AddRating(ctx context.Context, id model.EventID, teamName string, rating *model.Rating) (bool, error)

	// AddSubmission appends a submission to the named team, or to the event when teamName is empty.
	// Returns false without writing if a submission with the same ID already exists.
	AddSubmission(ctx context.Context, id model.EventID, teamName string, submission *model.Submission) (bool, error)

	// AddFeedback appends feedback to the event.
	// Returns false without writing if feedback with the same ID already exists.
	AddFeedback(ctx context.Context, id model.EventID, feedback *model.Feedback) (bool, error)
}
