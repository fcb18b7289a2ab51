package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

type eventRepository struct {
	mu     sync.RWMutex
	events map[model.EventID]*model.Event
}

func newEventRepository() *eventRepository {
	return &eventRepository{
		events: make(map[model.EventID]*model.Event),
	}
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyEvent(event)
	if created.ID == "" {
		created.ID = model.NewEventID()
	}
	if _, exists := r.events[created.ID]; exists {
		return nil, goerr.New("event already exists", goerr.V(model.EventIDKey, created.ID))
	}

	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.LastUpdatedAt = now

	r.events[created.ID] = created
	return copyEvent(created), nil
}

func (r *eventRepository) Get(ctx context.Context, id model.EventID) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "event not found", goerr.V(model.EventIDKey, id))
	}
	return copyEvent(e), nil
}

func (r *eventRepository) List(ctx context.Context) ([]*model.Event, error) {
	return r.list(func(*model.Event) bool { return true }), nil
}

func (r *eventRepository) ListByStatuses(ctx context.Context, statuses []types.EventStatus) ([]*model.Event, error) {
	return r.list(func(e *model.Event) bool {
		return slices.Contains(statuses, e.Status)
	}), nil
}

func (r *eventRepository) list(match func(*model.Event) bool) []*model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*model.Event, 0, len(r.events))
	for _, e := range r.events {
		if match(e) {
			events = append(events, copyEvent(e))
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Details.Date.Start.Equal(events[j].Details.Date.Start) {
			return events[i].ID < events[j].ID
		}
		return events[i].Details.Date.Start.Before(events[j].Details.Date.Start)
	})
	return events
}

// update runs fn on the stored event under the write lock and returns a copy of the result
func (r *eventRepository) update(id model.EventID, fn func(e *model.Event) error) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "event not found", goerr.V(model.EventIDKey, id))
	}

	// work on a copy so a failed fn leaves the stored event untouched
	working := copyEvent(e)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.LastUpdatedAt = time.Now().UTC()
	r.events[id] = working
	return copyEvent(working), nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id model.EventID, from, to types.EventStatus) (*model.Event, error) {
	return r.update(id, func(e *model.Event) error {
		if e.Status != from {
			return goerr.Wrap(interfaces.ErrStatusChanged, "cannot update event status",
				goerr.V(model.EventIDKey, id), goerr.V("expected", from), goerr.V("actual", e.Status))
		}
		e.Status = to
		return nil
	})
}

func (r *eventRepository) SetTeams(ctx context.Context, id model.EventID, teams []model.Team) (*model.Event, error) {
	return r.update(id, func(e *model.Event) error {
		e.Teams = make([]model.Team, len(teams))
		for i, t := range teams {
			e.Teams[i] = copyTeam(t)
		}
		return nil
	})
}

func (r *eventRepository) AddParticipant(ctx context.Context, id model.EventID, userID string) (*model.Event, error) {
	return r.update(id, func(e *model.Event) error {
		if !slices.Contains(e.Participants, userID) {
			e.Participants = append(e.Participants, userID)
		}
		return nil
	})
}

func (r *eventRepository) AddRating(ctx context.Context, id model.EventID, teamName string, rating *model.Rating) (bool, error) {
	added := false
	_, err := r.update(id, func(e *model.Event) error {
		target := &e.Ratings
		if teamName != "" {
			team := e.FindTeam(teamName)
			if team == nil {
				return goerr.Wrap(interfaces.ErrTeamNotFound, "cannot add rating",
					goerr.V(model.EventIDKey, id), goerr.V("team_name", teamName))
			}
			target = &team.Ratings
		}
		if model.HasRating(*target, rating.ID) {
			return nil
		}
		*target = append(*target, copyRating(*rating))
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (r *eventRepository) AddSubmission(ctx context.Context, id model.EventID, teamName string, submission *model.Submission) (bool, error) {
	added := false
	_, err := r.update(id, func(e *model.Event) error {
		target := &e.Submissions
		if teamName != "" {
			team := e.FindTeam(teamName)
			if team == nil {
				return goerr.Wrap(interfaces.ErrTeamNotFound, "cannot add submission",
					goerr.V(model.EventIDKey, id), goerr.V("team_name", teamName))
			}
			target = &team.Submissions
		}
		if model.HasSubmission(*target, submission.ID) {
			return nil
		}
		*target = append(*target, *submission)
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (r *eventRepository) AddFeedback(ctx context.Context, id model.EventID, feedback *model.Feedback) (bool, error) {
	added := false
	_, err := r.update(id, func(e *model.Event) error {
		if model.HasFeedback(e.Feedback, feedback.ID) {
			return nil
		}
		e.Feedback = append(e.Feedback, *feedback)
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}
