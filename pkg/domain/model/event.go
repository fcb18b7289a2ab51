package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

// EventID is a UUID-based identifier for Event
type EventID string

// NewEventID generates a new UUID v4 EventID
func NewEventID() EventID {
	return EventID(uuid.New().String())
}

// String returns the string representation of EventID
func (id EventID) String() string {
	return string(id)
}

// EventDate is the inclusive date range an event occupies
type EventDate struct {
	Start time.Time
	End   time.Time
}

// EventDetails holds the requester-provided description of an event
type EventDetails struct {
	EventName   string
	Type        string
	Format      types.EventFormat
	Description string
	Date        EventDate
	Organizers  []string
}

// Validate checks the details submitted with an event request
func (d *EventDetails) Validate() error {
	if strings.TrimSpace(d.EventName) == "" {
		return goerr.Wrap(ErrMissingRequiredInput, "event name is required")
	}
	if !d.Format.IsValid() {
		return goerr.Wrap(ErrMissingRequiredInput, "invalid event format", goerr.V("format", d.Format))
	}
	if d.Date.Start.IsZero() || d.Date.End.IsZero() {
		return goerr.Wrap(ErrInvalidDate, "event dates are required")
	}
	if d.Date.End.Before(d.Date.Start) {
		return goerr.Wrap(ErrInvalidDateRange, "event ends before it starts",
			goerr.V(StartKey, d.Date.Start), goerr.V(EndKey, d.Date.End))
	}
	return nil
}

// Event is a community event and everything recorded against it
type Event struct {
	ID            EventID
	Details       EventDetails
	Status        types.EventStatus
	RequestedBy   string
	Participants  []string
	Teams         []Team
	Submissions   []Submission // individual-format submissions
	Ratings       []Rating     // individual-format ratings
	Feedback      []Feedback
	XPAwarded     bool
	CreatedAt     time.Time
	LastUpdatedAt time.Time
	ClosedAt      *time.Time
}

// FindTeam returns the team with the given name, or nil
func (e *Event) FindTeam(name string) *Team {
	for i := range e.Teams {
		if e.Teams[i].TeamName == name {
			return &e.Teams[i]
		}
	}
	return nil
}

// IsParticipant reports whether userID joined the event or belongs to one of its teams
func (e *Event) IsParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p == userID {
			return true
		}
	}
	for _, t := range e.Teams {
		if t.HasMember(userID) {
			return true
		}
	}
	return false
}

// Team is a group of participants competing together in a team-format event
type Team struct {
	TeamName    string
	Members     []string
	Submissions []Submission
	Ratings     []Rating
}

// HasMember reports whether userID is in the team
func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Rating is one rater's scores for a team or an individual participant
type Rating struct {
	ID      string
	RatedBy string
	Target  string // participant user ID for individual events; empty for team ratings
	Scores  map[string]int
	Comment string
	RatedAt time.Time
}

// Submission is a project handed in for an event
type Submission struct {
	ID          string
	SubmittedBy string
	ProjectName string
	Link        string
	Description string
	SubmittedAt time.Time
}

// Feedback is a participant's opinion of an event
type Feedback struct {
	ID          string
	UserID      string
	Score       int
	Comment     string
	SubmittedAt time.Time
}

// HasRating reports whether a rating with id is already recorded
func HasRating(ratings []Rating, id string) bool {
	for _, r := range ratings {
		if r.ID == id {
			return true
		}
	}
	return false
}

// HasSubmission reports whether a submission with id is already recorded
func HasSubmission(submissions []Submission, id string) bool {
	for _, s := range submissions {
		if s.ID == id {
			return true
		}
	}
	return false
}

// HasFeedback reports whether feedback with id is already recorded
func HasFeedback(feedback []Feedback, id string) bool {
	for _, f := range feedback {
		if f.ID == id {
			return true
		}
	}
	return false
}
