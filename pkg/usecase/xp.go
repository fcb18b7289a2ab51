package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// XpUseCase awards and reports experience points
type XpUseCase struct {
	app *UseCases
}

// CloseEvent closes a completed event and awards the given XP in one atomic commit.
// An event is closed at most once, so XP can never be awarded twice.
func (uc *XpUseCase) CloseEvent(ctx context.Context, userID string, id model.EventID, xpChanges map[string]model.XpFieldUpdates) (*model.Event, error) {
	event, err := uc.app.Event.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if !uc.app.Event.canManage(userID, event) {
		return nil, goerr.Wrap(ErrAccessDenied, "only organizers can close events",
			goerr.V(EventIDKey, id), goerr.V(UserIDKey, userID))
	}
	if event.XPAwarded {
		return nil, goerr.Wrap(ErrXpAlreadyAwarded, "cannot close event", goerr.V(EventIDKey, id))
	}
	if event.Status != types.EventStatusCompleted {
		return nil, goerr.Wrap(ErrInvalidTransition, "only completed events can be closed",
			goerr.V(EventIDKey, id), goerr.V(StatusKey, event.Status))
	}

	batch, err := model.BuildXpAwardBatch(xpChanges, event.ID, event.Details.EventName, uc.app.now().UTC())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build XP awards", goerr.V(EventIDKey, id))
	}

	closed, err := uc.app.repo.Xp().CloseEventWithAwards(ctx, batch)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrXpAlreadyAwarded):
			return nil, goerr.Wrap(ErrXpAlreadyAwarded, "cannot close event", goerr.V(EventIDKey, id))
		case errors.Is(err, interfaces.ErrStatusChanged):
			return nil, goerr.Wrap(ErrInvalidTransition, "event status changed before closing", goerr.V(EventIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to close event", goerr.V(EventIDKey, id))
	}

	logging.From(ctx).Info("event closed",
		"event_id", id, "awarded_users", len(batch.Awards), "by", userID)
	uc.app.notifications.Success("Event closed", fmt.Sprintf("XP awarded to %d participants", len(batch.Awards)))

	targets := make([]string, 0, len(batch.Awards))
	for _, award := range batch.Awards {
		targets = append(targets, award.UserID)
	}
	uc.app.sendPush(ctx, &model.PushMessage{
		TargetUserIDs: targets,
		Title:         "XP awarded",
		Body:          fmt.Sprintf("%q is closed and your XP has been updated.", closed.Details.EventName),
		EventURL:      uc.app.eventURL(id),
		Data:          map[string]string{"eventId": id.String()},
	})

	return closed, nil
}

// GetUserXp returns a user's XP. Users without awards get an empty record.
func (uc *XpUseCase) GetUserXp(ctx context.Context, userID string) (*model.UserXp, error) {
	xp, err := uc.app.repo.Xp().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return &model.UserXp{
				UserID:  userID,
				Fields:  map[types.XpField]int{},
				History: []model.XpHistoryEntry{},
			}, nil
		}
		return nil, goerr.Wrap(err, "failed to get user XP", goerr.V(UserIDKey, userID))
	}
	return xp, nil
}
