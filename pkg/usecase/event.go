package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// EventUseCase implements the event request and lifecycle workflow
type EventUseCase struct {
	app *UseCases

	// activeMu is held from the calendar check to the status write when an event enters
	// an active status, so two overlapping events cannot both be approved.
	activeMu sync.Mutex
}

// CheckDateConflict reports whether [start, end] overlaps an approved, running or completed
// event. excludeEventID lets an event be checked against everything but itself.
func (uc *EventUseCase) CheckDateConflict(ctx context.Context, start, end time.Time, excludeEventID model.EventID) (*model.DateConflict, error) {
	events, err := uc.app.repo.Event().ListByStatuses(ctx, types.ActiveEventStatuses())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active events")
	}
	return uc.app.calendar.FindConflict(start, end, events, excludeEventID)
}

func (uc *EventUseCase) conflictError(conflict *model.DateConflict) error {
	values := []goerr.Option{goerr.V("conflicting_event", conflict.ConflictingEventName)}
	if conflict.NextAvailableDate != nil {
		values = append(values, goerr.V("next_available_date", uc.app.calendar.Format(*conflict.NextAvailableDate)))
	}
	return goerr.Wrap(ErrDateConflict, "event dates are taken", values...)
}

// RequestEvent files a new event request on behalf of userID. The request starts Pending.
func (uc *EventUseCase) RequestEvent(ctx context.Context, userID string, details model.EventDetails) (*model.Event, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}

	cal := uc.app.calendar
	details.Date.Start = cal.Day(details.Date.Start)
	details.Date.End = cal.Day(details.Date.End)
	if !slices.Contains(details.Organizers, userID) {
		details.Organizers = append([]string{userID}, details.Organizers...)
	}

	conflict, err := uc.CheckDateConflict(ctx, details.Date.Start, details.Date.End, "")
	if err != nil {
		return nil, err
	}
	if conflict.HasConflict {
		return nil, uc.conflictError(conflict)
	}

	event := &model.Event{
		ID:           model.NewEventID(),
		Details:      details,
		Status:       types.EventStatusPending,
		RequestedBy:  userID,
		Participants: []string{},
		Teams:        []model.Team{},
		Submissions:  []model.Submission{},
		Ratings:      []model.Rating{},
		Feedback:     []model.Feedback{},
		CreatedAt:    uc.app.now().UTC(),
	}

	created, err := uc.app.repo.Event().Create(ctx, event)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create event", goerr.V(UserIDKey, userID))
	}

	logging.From(ctx).Info("event requested",
		"event_id", created.ID, "event_name", created.Details.EventName, "requested_by", userID)
	uc.app.notifications.Success("Event requested", fmt.Sprintf("%q is waiting for approval", created.Details.EventName))

	return created, nil
}

// GetEvent returns one event
func (uc *EventUseCase) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	event, err := uc.app.repo.Event().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrEventNotFound, "event not found", goerr.V(EventIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get event", goerr.V(EventIDKey, id))
	}
	return event, nil
}

// ListEvents returns events with one of statuses, or every event when none is given
func (uc *EventUseCase) ListEvents(ctx context.Context, statuses ...types.EventStatus) ([]*model.Event, error) {
	if len(statuses) == 0 {
		events, err := uc.app.repo.Event().List(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list events")
		}
		return events, nil
	}

	events, err := uc.app.repo.Event().ListByStatuses(ctx, statuses)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list events", goerr.V("statuses", statuses))
	}
	return events, nil
}

// JoinEvent adds userID to the participants of an approved or running event
func (uc *EventUseCase) JoinEvent(ctx context.Context, userID string, id model.EventID) (*model.Event, error) {
	event, err := uc.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if event.Status != types.EventStatusApproved && event.Status != types.EventStatusInProgress {
		return nil, goerr.Wrap(ErrEventNotOpen, "cannot join event",
			goerr.V(EventIDKey, id), goerr.V(StatusKey, event.Status))
	}
	if event.Details.Format == types.EventFormatTeam && len(event.Teams) > 0 && !event.IsParticipant(userID) {
		return nil, goerr.Wrap(ErrEventNotOpen, "teams are already formed",
			goerr.V(EventIDKey, id))
	}

	updated, err := uc.app.repo.Event().AddParticipant(ctx, id, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to join event", goerr.V(EventIDKey, id), goerr.V(UserIDKey, userID))
	}
	return updated, nil
}

func (uc *EventUseCase) canManage(userID string, event *model.Event) bool {
	return uc.app.isAdmin(userID) ||
		event.RequestedBy == userID ||
		slices.Contains(event.Details.Organizers, userID)
}

// UpdateStatus moves an event along its lifecycle. Approval and rejection are reserved to
// admins; organizers drive the remaining transitions. Entering an active status re-checks
// the calendar so two active events never overlap.
func (uc *EventUseCase) UpdateStatus(ctx context.Context, userID string, id model.EventID, next types.EventStatus) (*model.Event, error) {
	event, err := uc.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	// Closed is reached only through CloseEvent so XP is never skipped
	if next == types.EventStatusClosed || !event.Status.CanTransitionTo(next) {
		return nil, goerr.Wrap(ErrInvalidTransition, "cannot change event status",
			goerr.V(EventIDKey, id), goerr.V("from", event.Status), goerr.V("to", next))
	}

	switch next {
	case types.EventStatusApproved, types.EventStatusRejected:
		if !uc.app.isAdmin(userID) {
			return nil, goerr.Wrap(ErrAccessDenied, "only admins can review event requests",
				goerr.V(EventIDKey, id), goerr.V(UserIDKey, userID))
		}
	default:
		if !uc.canManage(userID, event) {
			return nil, goerr.Wrap(ErrAccessDenied, "only organizers can change event status",
				goerr.V(EventIDKey, id), goerr.V(UserIDKey, userID))
		}
	}

	updated, err := uc.writeStatus(ctx, event, next)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("event status changed",
		"event_id", id, "from", event.Status, "to", next, "by", userID)

	switch next {
	case types.EventStatusApproved, types.EventStatusRejected:
		uc.app.sendPush(ctx, &model.PushMessage{
			TargetUserIDs: recipients(updated.RequestedBy, updated.Details.Organizers),
			Title:         fmt.Sprintf("Event %s", lowerStatus(next)),
			Body:          fmt.Sprintf("Your event request %q was %s.", updated.Details.EventName, lowerStatus(next)),
			EventURL:      uc.app.eventURL(id),
			Data:          map[string]string{"eventId": id.String(), "status": next.String()},
		})
	}

	return updated, nil
}

// writeStatus persists the transition of event to next. Entering an active status from an
// inactive one checks the calendar and writes under activeMu.
func (uc *EventUseCase) writeStatus(ctx context.Context, event *model.Event, next types.EventStatus) (*model.Event, error) {
	id := event.ID
	if next.IsActive() && !event.Status.IsActive() {
		uc.activeMu.Lock()
		defer uc.activeMu.Unlock()

		conflict, err := uc.CheckDateConflict(ctx, event.Details.Date.Start, event.Details.Date.End, id)
		if err != nil {
			return nil, err
		}
		if conflict.HasConflict {
			return nil, uc.conflictError(conflict)
		}
	}

	updated, err := uc.app.repo.Event().UpdateStatus(ctx, id, event.Status, next)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update event status",
			goerr.V(EventIDKey, id), goerr.V("to", next))
	}
	return updated, nil
}

// GenerateTeams splits the participants of a team event into numberOfTeams teams and
// replaces any previous teams
func (uc *EventUseCase) GenerateTeams(ctx context.Context, userID string, id model.EventID, numberOfTeams int) (*model.Event, error) {
	event, err := uc.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if event.Details.Format != types.EventFormatTeam {
		return nil, goerr.Wrap(ErrNotTeamEvent, "cannot generate teams", goerr.V(EventIDKey, id))
	}
	if event.Status != types.EventStatusApproved && event.Status != types.EventStatusInProgress {
		return nil, goerr.Wrap(ErrEventNotOpen, "cannot generate teams",
			goerr.V(EventIDKey, id), goerr.V(StatusKey, event.Status))
	}
	if !uc.canManage(userID, event) {
		return nil, goerr.Wrap(ErrAccessDenied, "only organizers can generate teams",
			goerr.V(EventIDKey, id), goerr.V(UserIDKey, userID))
	}

	teams, err := model.AutoGenerateTeamsWith(uc.app.shuffle, event.Participants, numberOfTeams, uc.app.maxTeams)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate teams", goerr.V(EventIDKey, id))
	}

	updated, err := uc.app.repo.Event().SetTeams(ctx, id, teams)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save teams", goerr.V(EventIDKey, id))
	}

	logging.From(ctx).Info("teams generated", "event_id", id, "teams", len(teams))
	uc.app.sendPush(ctx, &model.PushMessage{
		TargetUserIDs: updated.Participants,
		Title:         "Teams are ready",
		Body:          fmt.Sprintf("Teams for %q have been formed. Check which team you are in.", updated.Details.EventName),
		EventURL:      uc.app.eventURL(id),
		Data:          map[string]string{"eventId": id.String()},
	})

	return updated, nil
}

func recipients(first string, rest []string) []string {
	out := make([]string, 0, len(rest)+1)
	if first != "" {
		out = append(out, first)
	}
	for _, id := range rest {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func lowerStatus(s types.EventStatus) string {
	switch s {
	case types.EventStatusApproved:
		return "approved"
	case types.EventStatusRejected:
		return "rejected"
	default:
		return s.String()
	}
}
