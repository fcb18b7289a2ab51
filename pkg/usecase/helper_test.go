package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/repository/memory"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/network"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
)

const (
	adminID     = "admin"
	organizerID = "organizer"
)

func newTestApp(t *testing.T, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()
	base := []usecase.Option{
		usecase.WithAdmins(adminID),
		usecase.WithNetworkMonitor(network.New(network.WithSettleDelay(time.Hour))),
		usecase.WithShuffler(func(int, func(i, j int)) {}),
	}
	app := usecase.New(memory.New(), append(base, opts...)...)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func mustDate(t *testing.T, app *usecase.UseCases, s string) time.Time {
	t.Helper()
	d, err := app.Calendar().ParseDate(s)
	gt.NoError(t, err).Required()
	return d
}

func eventDetails(t *testing.T, app *usecase.UseCases, name string, format types.EventFormat, start, end string) model.EventDetails {
	t.Helper()
	return model.EventDetails{
		EventName: name,
		Type:      "Hackathon",
		Format:    format,
		Date: model.EventDate{
			Start: mustDate(t, app, start),
			End:   mustDate(t, app, end),
		},
	}
}

// startEvent requests, approves and starts an event with the given participants
func startEvent(t *testing.T, app *usecase.UseCases, name string, format types.EventFormat, start, end string, participants ...string) *model.Event {
	t.Helper()
	ctx := context.Background()

	event, err := app.Event.RequestEvent(ctx, organizerID, eventDetails(t, app, name, format, start, end))
	gt.NoError(t, err).Required()

	_, err = app.Event.UpdateStatus(ctx, adminID, event.ID, types.EventStatusApproved)
	gt.NoError(t, err).Required()

	for _, p := range participants {
		_, err = app.Event.JoinEvent(ctx, p, event.ID)
		gt.NoError(t, err).Required()
	}

	event, err = app.Event.UpdateStatus(ctx, organizerID, event.ID, types.EventStatusInProgress)
	gt.NoError(t, err).Required()
	return event
}
