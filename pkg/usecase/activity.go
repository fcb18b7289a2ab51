package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// ActivityUseCase handles participant actions that may be captured offline
type ActivityUseCase struct {
	app *UseCases
}

// ActionResult reports what happened to a participant action.
// Queued is set when the action was captured for offline replay; Applied is false when
// an identical action had already been stored.
type ActionResult struct {
	Queued  bool
	Action  *model.QueuedAction
	Applied bool
}

// SubmitRating rates a team, or a participant of an individual event
func (uc *ActivityUseCase) SubmitRating(ctx context.Context, userID string, in *model.RatingInput) (*ActionResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !uc.app.network.IsOnline() {
		return uc.enqueue(ctx, userID, types.ActionTypeSubmitRating, in)
	}

	applied, err := uc.applyRating(ctx, userID, uuid.NewString(), uc.app.now().UTC(), in)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Applied: applied}, nil
}

// CreateSubmission records a project submission for the user's team or for the user
func (uc *ActivityUseCase) CreateSubmission(ctx context.Context, userID string, in *model.SubmissionInput) (*ActionResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !uc.app.network.IsOnline() {
		return uc.enqueue(ctx, userID, types.ActionTypeCreateSubmission, in)
	}

	applied, err := uc.applySubmission(ctx, userID, uuid.NewString(), uc.app.now().UTC(), in)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Applied: applied}, nil
}

// SubmitFeedback records event feedback from a participant
func (uc *ActivityUseCase) SubmitFeedback(ctx context.Context, userID string, in *model.FeedbackInput) (*ActionResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !uc.app.network.IsOnline() {
		return uc.enqueue(ctx, userID, types.ActionTypeSubmitFeedback, in)
	}

	applied, err := uc.applyFeedback(ctx, userID, uuid.NewString(), uc.app.now().UTC(), in)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Applied: applied}, nil
}

func (uc *ActivityUseCase) enqueue(ctx context.Context, userID string, actionType types.ActionType, in any) (*ActionResult, error) {
	if !uc.app.queue.IsAllowed(actionType) {
		return nil, goerr.Wrap(ErrOfflineUnsupported, "cannot perform action while offline",
			goerr.V(model.ActionTypeKey, actionType))
	}

	input, err := json.Marshal(in)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal action input", goerr.V(model.ActionTypeKey, actionType))
	}
	payload, err := json.Marshal(&model.OfflinePayload{UserID: userID, Input: input})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal offline payload", goerr.V(model.ActionTypeKey, actionType))
	}

	action, ok := uc.app.queue.Enqueue(actionType, payload)
	if !ok {
		return nil, goerr.Wrap(ErrOfflineUnsupported, "cannot perform action while offline",
			goerr.V(model.ActionTypeKey, actionType))
	}

	logging.From(ctx).Info("action saved for later", "action_id", action.ID, "action_type", actionType, "user_id", userID)
	uc.app.notifications.Info("Saved offline", "Your change will be synced when you are back online")
	return &ActionResult{Queued: true, Action: action}, nil
}

func (uc *ActivityUseCase) applyRating(ctx context.Context, userID, id string, at time.Time, in *model.RatingInput) (bool, error) {
	event, err := uc.app.Event.GetEvent(ctx, in.EventID)
	if err != nil {
		return false, err
	}
	if event.Status != types.EventStatusInProgress && event.Status != types.EventStatusCompleted {
		return false, goerr.Wrap(ErrEventNotOpen, "ratings are not accepted",
			goerr.V(EventIDKey, event.ID), goerr.V(StatusKey, event.Status))
	}

	rating := &model.Rating{
		ID:      id,
		RatedBy: userID,
		Scores:  in.Scores,
		Comment: in.Comment,
		RatedAt: at,
	}

	if in.TeamName != "" {
		team := event.FindTeam(in.TeamName)
		if team == nil {
			return false, goerr.Wrap(ErrTeamNotFound, "cannot rate team",
				goerr.V(EventIDKey, event.ID), goerr.V(TeamNameKey, in.TeamName))
		}
		if team.HasMember(userID) {
			return false, goerr.Wrap(ErrOwnTeamRating, "cannot rate own team",
				goerr.V(EventIDKey, event.ID), goerr.V(TeamNameKey, in.TeamName))
		}
	} else {
		if in.Target == userID {
			return false, goerr.Wrap(ErrOwnTeamRating, "cannot rate yourself", goerr.V(EventIDKey, event.ID))
		}
		if !event.IsParticipant(in.Target) {
			return false, goerr.Wrap(ErrNotParticipant, "rating target is not a participant",
				goerr.V(EventIDKey, event.ID), goerr.V("target", in.Target))
		}
		rating.Target = in.Target
	}

	added, err := uc.app.repo.Event().AddRating(ctx, event.ID, in.TeamName, rating)
	if err != nil {
		return false, translateRepoError(err, event.ID, in.TeamName, "failed to add rating")
	}
	return added, nil
}

func (uc *ActivityUseCase) applySubmission(ctx context.Context, userID, id string, at time.Time, in *model.SubmissionInput) (bool, error) {
	event, err := uc.app.Event.GetEvent(ctx, in.EventID)
	if err != nil {
		return false, err
	}
	if event.Status != types.EventStatusInProgress {
		return false, goerr.Wrap(ErrEventNotOpen, "submissions are not accepted",
			goerr.V(EventIDKey, event.ID), goerr.V(StatusKey, event.Status))
	}
	if !event.IsParticipant(userID) {
		return false, goerr.Wrap(ErrNotParticipant, "only participants can submit",
			goerr.V(EventIDKey, event.ID), goerr.V(UserIDKey, userID))
	}

	teamName := ""
	if event.Details.Format == types.EventFormatTeam {
		team := memberTeam(event, userID)
		if team == nil || (in.TeamName != "" && in.TeamName != team.TeamName) {
			return false, goerr.Wrap(ErrTeamNotFound, "user has no matching team",
				goerr.V(EventIDKey, event.ID), goerr.V(TeamNameKey, in.TeamName))
		}
		teamName = team.TeamName
	}

	submission := &model.Submission{
		ID:          id,
		SubmittedBy: userID,
		ProjectName: in.ProjectName,
		Link:        in.Link,
		Description: in.Description,
		SubmittedAt: at,
	}
	added, err := uc.app.repo.Event().AddSubmission(ctx, event.ID, teamName, submission)
	if err != nil {
		return false, translateRepoError(err, event.ID, teamName, "failed to add submission")
	}
	return added, nil
}

func (uc *ActivityUseCase) applyFeedback(ctx context.Context, userID, id string, at time.Time, in *model.FeedbackInput) (bool, error) {
	event, err := uc.app.Event.GetEvent(ctx, in.EventID)
	if err != nil {
		return false, err
	}
	if event.Status != types.EventStatusCompleted && event.Status != types.EventStatusClosed {
		return false, goerr.Wrap(ErrEventNotOpen, "feedback is not accepted",
			goerr.V(EventIDKey, event.ID), goerr.V(StatusKey, event.Status))
	}
	if !event.IsParticipant(userID) {
		return false, goerr.Wrap(ErrNotParticipant, "only participants can give feedback",
			goerr.V(EventIDKey, event.ID), goerr.V(UserIDKey, userID))
	}

	feedback := &model.Feedback{
		ID:          id,
		UserID:      userID,
		Score:       in.Score,
		Comment:     in.Comment,
		SubmittedAt: at,
	}
	added, err := uc.app.repo.Event().AddFeedback(ctx, event.ID, feedback)
	if err != nil {
		return false, translateRepoError(err, event.ID, "", "failed to add feedback")
	}
	return added, nil
}

func memberTeam(event *model.Event, userID string) *model.Team {
	for i := range event.Teams {
		if event.Teams[i].HasMember(userID) {
			return &event.Teams[i]
		}
	}
	return nil
}

func translateRepoError(err error, eventID model.EventID, teamName, msg string) error {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return goerr.Wrap(ErrEventNotFound, msg, goerr.V(EventIDKey, eventID))
	case errors.Is(err, interfaces.ErrTeamNotFound):
		return goerr.Wrap(ErrTeamNotFound, msg, goerr.V(EventIDKey, eventID), goerr.V(TeamNameKey, teamName))
	default:
		return goerr.Wrap(err, msg, goerr.V(EventIDKey, eventID))
	}
}
