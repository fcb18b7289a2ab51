package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Document field paths used by event queries and their indexes
const (
	EventStatusPath    = "Status"
	EventStartDatePath = "Details.Date.Start"
)

type eventRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newEventRepository(client *firestore.Client) *eventRepository {
	return &eventRepository{
		client:           client,
		collectionPrefix: "",
	}
}

// EventsCollection returns the events collection name for a collection prefix
func EventsCollection(prefix string) string {
	if prefix != "" {
		return prefix + "_events"
	}
	return "events"
}

func (r *eventRepository) eventsCollection() string {
	return EventsCollection(r.collectionPrefix)
}

func (r *eventRepository) doc(id model.EventID) *firestore.DocumentRef {
	return r.client.Collection(r.eventsCollection()).Doc(id.String())
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	created := *event
	if created.ID == "" {
		created.ID = model.NewEventID()
	}

	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.LastUpdatedAt = now

	if _, err := r.doc(created.ID).Create(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create event", goerr.V(model.EventIDKey, created.ID))
	}

	return &created, nil
}

func (r *eventRepository) Get(ctx context.Context, id model.EventID) (*model.Event, error) {
	docSnap, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "event not found", goerr.V(model.EventIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get event", goerr.V(model.EventIDKey, id))
	}

	var e model.Event
	if err := docSnap.DataTo(&e); err != nil {
		return nil, goerr.Wrap(err, "failed to decode event", goerr.V(model.EventIDKey, id))
	}

	return &e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*model.Event, error) {
	query := r.client.Collection(r.eventsCollection()).
		OrderBy(EventStartDatePath, firestore.Asc)
	return r.collect(ctx, query)
}

// ListByStatuses uses an "in" query, which requires the (Status, Details.Date.Start)
// composite index created by the migrate command.
func (r *eventRepository) ListByStatuses(ctx context.Context, statuses []types.EventStatus) ([]*model.Event, error) {
	if len(statuses) == 0 {
		return []*model.Event{}, nil
	}

	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = s.String()
	}

	query := r.client.Collection(r.eventsCollection()).
		Where(EventStatusPath, "in", values).
		OrderBy(EventStartDatePath, firestore.Asc)
	return r.collect(ctx, query)
}

func (r *eventRepository) collect(ctx context.Context, query firestore.Query) ([]*model.Event, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	events := []*model.Event{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate events")
		}

		var e model.Event
		if err := docSnap.DataTo(&e); err != nil {
			return nil, goerr.Wrap(err, "failed to decode event", goerr.V("doc_id", docSnap.Ref.ID))
		}
		events = append(events, &e)
	}

	return events, nil
}

// update reads, modifies and writes the event in one transaction
func (r *eventRepository) update(ctx context.Context, id model.EventID, fn func(e *model.Event) (bool, error)) (*model.Event, error) {
	ref := r.doc(id)

	var result model.Event
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "event not found", goerr.V(model.EventIDKey, id))
			}
			return goerr.Wrap(err, "failed to get event", goerr.V(model.EventIDKey, id))
		}

		var e model.Event
		if err := docSnap.DataTo(&e); err != nil {
			return goerr.Wrap(err, "failed to decode event", goerr.V(model.EventIDKey, id))
		}

		changed, err := fn(&e)
		if err != nil {
			return err
		}
		result = e
		if !changed {
			return nil
		}

		result.LastUpdatedAt = time.Now().UTC()
		return tx.Set(ref, &result)
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id model.EventID, from, to types.EventStatus) (*model.Event, error) {
	return r.update(ctx, id, func(e *model.Event) (bool, error) {
		if e.Status != from {
			return false, goerr.Wrap(interfaces.ErrStatusChanged, "cannot update event status",
				goerr.V(model.EventIDKey, id), goerr.V("expected", from), goerr.V("actual", e.Status))
		}
		e.Status = to
		return true, nil
	})
}

func (r *eventRepository) SetTeams(ctx context.Context, id model.EventID, teams []model.Team) (*model.Event, error) {
	return r.update(ctx, id, func(e *model.Event) (bool, error) {
		e.Teams = teams
		return true, nil
	})
}

func (r *eventRepository) AddParticipant(ctx context.Context, id model.EventID, userID string) (*model.Event, error) {
	return r.update(ctx, id, func(e *model.Event) (bool, error) {
		if slices.Contains(e.Participants, userID) {
			return false, nil
		}
		e.Participants = append(e.Participants, userID)
		return true, nil
	})
}

func (r *eventRepository) AddRating(ctx context.Context, id model.EventID, teamName string, rating *model.Rating) (bool, error) {
	added := false
	_, err := r.update(ctx, id, func(e *model.Event) (bool, error) {
		target := &e.Ratings
		if teamName != "" {
			team := e.FindTeam(teamName)
			if team == nil {
				return false, goerr.Wrap(interfaces.ErrTeamNotFound, "cannot add rating",
					goerr.V(model.EventIDKey, id), goerr.V("team_name", teamName))
			}
			target = &team.Ratings
		}
		if model.HasRating(*target, rating.ID) {
			return false, nil
		}
		*target = append(*target, *rating)
		added = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (r *eventRepository) AddSubmission(ctx context.Context, id model.EventID, teamName string, submission *model.Submission) (bool, error) {
	added := false
	_, err := r.update(ctx, id, func(e *model.Event) (bool, error) {
		target := &e.Submissions
		if teamName != "" {
			team := e.FindTeam(teamName)
			if team == nil {
				return false, goerr.Wrap(interfaces.ErrTeamNotFound, "cannot add submission",
					goerr.V(model.EventIDKey, id), goerr.V("team_name", teamName))
			}
			target = &team.Submissions
		}
		if model.HasSubmission(*target, submission.ID) {
			return false, nil
		}
		*target = append(*target, *submission)
		added = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (r *eventRepository) AddFeedback(ctx context.Context, id model.EventID, feedback *model.Feedback) (bool, error) {
	added := false
	_, err := r.update(ctx, id, func(e *model.Event) (bool, error) {
		if model.HasFeedback(e.Feedback, feedback.ID) {
			return false, nil
		}
		e.Feedback = append(e.Feedback, *feedback)
		added = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}
