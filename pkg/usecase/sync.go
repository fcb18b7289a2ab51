package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/offline"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// SyncUseCase replays actions captured while offline
type SyncUseCase struct {
	app *UseCases
}

// Dispatch applies one queued action on behalf of the user who captured it.
// The action ID is reused as the stored record ID so a replay that already reached the
// store is not applied twice.
func (uc *SyncUseCase) Dispatch(ctx context.Context, action *model.QueuedAction) error {
	var envelope model.OfflinePayload
	if err := model.DecodePayload(action.Payload, &envelope); err != nil {
		return goerr.Wrap(err, "invalid queued action", goerr.V(ActionIDKey, action.ID))
	}

	var (
		applied bool
		err     error
	)
	switch action.Type {
	case types.ActionTypeSubmitRating:
		var in model.RatingInput
		if err := model.DecodePayload(envelope.Input, &in); err != nil {
			return goerr.Wrap(err, "invalid rating action", goerr.V(ActionIDKey, action.ID))
		}
		applied, err = uc.app.Activity.applyRating(ctx, envelope.UserID, action.ID, action.Timestamp, &in)

	case types.ActionTypeCreateSubmission:
		var in model.SubmissionInput
		if err := model.DecodePayload(envelope.Input, &in); err != nil {
			return goerr.Wrap(err, "invalid submission action", goerr.V(ActionIDKey, action.ID))
		}
		applied, err = uc.app.Activity.applySubmission(ctx, envelope.UserID, action.ID, action.Timestamp, &in)

	case types.ActionTypeSubmitFeedback:
		var in model.FeedbackInput
		if err := model.DecodePayload(envelope.Input, &in); err != nil {
			return goerr.Wrap(err, "invalid feedback action", goerr.V(ActionIDKey, action.ID))
		}
		applied, err = uc.app.Activity.applyFeedback(ctx, envelope.UserID, action.ID, action.Timestamp, &in)

	default:
		return goerr.Wrap(model.ErrInvalidPayload, "unknown action type",
			goerr.V(ActionIDKey, action.ID), goerr.V(model.ActionTypeKey, action.Type))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to replay action",
			goerr.V(ActionIDKey, action.ID), goerr.V(model.ActionTypeKey, action.Type))
	}

	if !applied {
		logging.From(ctx).Info("queued action was already applied", "action_id", action.ID)
	}
	return nil
}

// actionOwner returns the user who captured action, or "" when its envelope is unreadable
func actionOwner(action *model.QueuedAction) string {
	var envelope model.OfflinePayload
	if err := model.DecodePayload(action.Payload, &envelope); err != nil {
		return ""
	}
	return envelope.UserID
}

// ownedBy matches the actions userID may see and manage. Admins manage every action.
func (uc *SyncUseCase) ownedBy(userID string) func(*model.QueuedAction) bool {
	if uc.app.isAdmin(userID) {
		return func(*model.QueuedAction) bool { return true }
	}
	return func(a *model.QueuedAction) bool { return actionOwner(a) == userID }
}

// ListQueue returns the pending and failed actions visible to userID
func (uc *SyncUseCase) ListQueue(userID string) (pending, failed []*model.QueuedAction) {
	match := uc.ownedBy(userID)
	pending = slices.DeleteFunc(uc.app.queue.Pending(), func(a *model.QueuedAction) bool { return !match(a) })
	failed = slices.DeleteFunc(uc.app.queue.Failed(), func(a *model.QueuedAction) bool { return !match(a) })
	return pending, failed
}

// ClearQueue drops the queued actions of userID, or every action when userID is an admin,
// and returns how many were dropped
func (uc *SyncUseCase) ClearQueue(ctx context.Context, userID string) int {
	dropped := uc.app.queue.RemoveFunc(uc.ownedBy(userID))
	logging.From(ctx).Info("offline queue cleared", "by", userID, "dropped", dropped)
	return dropped
}

// RemoveQueued drops one queued action. Actions captured by another user are reported as
// not found unless userID is an admin.
func (uc *SyncUseCase) RemoveQueued(ctx context.Context, userID, actionID string) error {
	match := uc.ownedBy(userID)
	removed := uc.app.queue.RemoveFunc(func(a *model.QueuedAction) bool {
		return a.ID == actionID && match(a)
	})
	if removed == 0 {
		return goerr.Wrap(ErrQueuedActionNotFound, "cannot remove queued action",
			goerr.V(ActionIDKey, actionID), goerr.V(UserIDKey, userID))
	}
	logging.From(ctx).Info("queued action removed", "action_id", actionID, "by", userID)
	return nil
}

// SetOnline forces the connectivity state. Only admins may do this since it pauses or
// resumes replay for every user.
func (uc *SyncUseCase) SetOnline(ctx context.Context, userID string, online bool) (model.NetworkStatus, error) {
	if !uc.app.isAdmin(userID) {
		return model.NetworkStatus{}, goerr.Wrap(ErrAccessDenied, "only admins can change the network state",
			goerr.V(UserIDKey, userID))
	}
	if online {
		uc.app.network.SetOnline(ctx)
	} else {
		uc.app.network.SetOffline(ctx)
	}
	return uc.app.network.Status(), nil
}

// Replay replays every pending action and announces the outcome
func (uc *SyncUseCase) Replay(ctx context.Context) (*offline.ReplayResult, error) {
	if !uc.app.network.IsOnline() {
		return nil, goerr.Wrap(ErrOffline, "cannot replay queued actions")
	}

	result, err := uc.app.queue.Replay(ctx, offline.DispatcherFunc(uc.Dispatch))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to replay queued actions")
	}

	if result.Succeeded > 0 {
		uc.app.notifications.Success("Synced", fmt.Sprintf("%d offline change(s) were saved", result.Succeeded))
	}
	if result.GivenUp > 0 {
		uc.app.notifications.Error("Sync failed", fmt.Sprintf("%d offline change(s) could not be saved", result.GivenUp))
	}
	if retrying := result.Failed - result.GivenUp; retrying > 0 {
		uc.app.notifications.Warning("Sync incomplete", fmt.Sprintf("%d offline change(s) will be retried", retrying))
	}
	return result, nil
}

// ReplayQueue is the reconnect handler of the network monitor. A replay that is already
// running is not an error.
func (uc *SyncUseCase) ReplayQueue(ctx context.Context) error {
	if _, err := uc.Replay(ctx); err != nil {
		if errors.Is(err, offline.ErrReplayInProgress) {
			logging.From(ctx).Debug("replay already running")
			return nil
		}
		return err
	}
	return nil
}

func (uc *SyncUseCase) announceNetworkChange(status model.NetworkStatus) {
	if !status.Online {
		uc.app.notifications.Warning("You are offline", "Changes will be saved and synced when you reconnect")
		return
	}

	if pending := len(uc.app.queue.Pending()); pending > 0 {
		uc.app.notifications.Info("Back online", fmt.Sprintf("Syncing %d pending change(s)", pending))
		return
	}
	uc.app.notifications.Info("Back online", "Your connection has been restored")
}
