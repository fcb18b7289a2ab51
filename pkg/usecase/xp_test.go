package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
)

func TestCloseEvent(t *testing.T) {
	ctx := context.Background()

	awards := map[string]model.XpFieldUpdates{
		"u1": {types.XpFieldDeveloper: 10, types.XpFieldCountWins: 1},
		"u2": {types.XpFieldPresenter: 5, types.XpFieldDesigner: 0},
	}

	t.Run("awards XP once", func(t *testing.T) {
		app := newTestApp(t)
		event := startEvent(t, app, "Finale", types.EventFormatIndividual, "2024-06-01", "2024-06-02", "u1", "u2")

		_, err := app.Xp.CloseEvent(ctx, organizerID, event.ID, awards)
		gt.Error(t, err).Is(usecase.ErrInvalidTransition)

		_, err = app.Event.UpdateStatus(ctx, organizerID, event.ID, types.EventStatusCompleted)
		gt.NoError(t, err).Required()

		closed, err := app.Xp.CloseEvent(ctx, organizerID, event.ID, awards)
		gt.NoError(t, err).Required()
		gt.Value(t, closed.Status).Equal(types.EventStatusClosed)
		gt.Bool(t, closed.XPAwarded).True()
		gt.Value(t, closed.ClosedAt).NotNil()

		xp, err := app.Xp.GetUserXp(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Value(t, xp.Fields[types.XpFieldDeveloper]).Equal(10)
		gt.Value(t, xp.CountWins).Equal(1)
		gt.Value(t, xp.TotalCalculatedXp).Equal(10)

		_, err = app.Xp.CloseEvent(ctx, organizerID, event.ID, awards)
		gt.Error(t, err).Is(usecase.ErrXpAlreadyAwarded)

		xp, err = app.Xp.GetUserXp(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Value(t, xp.TotalCalculatedXp).Equal(10)
	})

	t.Run("only organizers close", func(t *testing.T) {
		app := newTestApp(t)
		event := startEvent(t, app, "Finale", types.EventFormatIndividual, "2024-06-01", "2024-06-02", "u1")
		_, err := app.Event.UpdateStatus(ctx, organizerID, event.ID, types.EventStatusCompleted)
		gt.NoError(t, err).Required()

		_, err = app.Xp.CloseEvent(ctx, "u1", event.ID, awards)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
	})

	t.Run("oversized batches are refused and the event stays open", func(t *testing.T) {
		app := newTestApp(t)
		event := startEvent(t, app, "Huge", types.EventFormatIndividual, "2024-06-01", "2024-06-02", "u1")
		_, err := app.Event.UpdateStatus(ctx, organizerID, event.ID, types.EventStatusCompleted)
		gt.NoError(t, err).Required()

		huge := make(map[string]model.XpFieldUpdates)
		for i := range model.MaxXpBatchUsers + 1 {
			huge[fmt.Sprintf("user-%d", i)] = model.XpFieldUpdates{types.XpFieldParticipation: 1}
		}
		_, err = app.Xp.CloseEvent(ctx, organizerID, event.ID, huge)
		gt.Error(t, err).Is(model.ErrXpBatchTooLarge)

		got, err := app.Event.GetEvent(ctx, event.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.EventStatusCompleted)
	})
}

func TestGetUserXpWithoutAwards(t *testing.T) {
	app := newTestApp(t)
	xp, err := app.Xp.GetUserXp(context.Background(), "nobody")
	gt.NoError(t, err).Required()
	gt.Value(t, xp.UserID).Equal("nobody")
	gt.Value(t, xp.TotalCalculatedXp).Equal(0)
}
