package errutil_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		gt.NoError(t, errutil.Handle(context.Background(), nil, "noop"))
	})

	t.Run("returns the same error", func(t *testing.T) {
		base := errors.New("boom")
		err := goerr.Wrap(base, "wrapped", goerr.V("event_id", "e1"))

		got := errutil.Handle(context.Background(), err, "failed")
		gt.Error(t, got).Is(base)
	})
}

func TestHandleHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("bad input"), http.StatusBadRequest)

	gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	gt.String(t, w.Body.String()).Contains("bad input")
}

type eventRecorder struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (r *eventRecorder) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	// Drop the event so nothing leaves the process.
	return nil
}

func (r *eventRecorder) captured() []*sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*sentry.Event(nil), r.events...)
}

func newSentryContext(t *testing.T) (context.Context, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:        "",
		SampleRate: 1.0,
		BeforeSend: rec.beforeSend,
	})
	gt.NoError(t, err)

	hub := sentry.NewHub(client, sentry.NewScope())
	return sentry.SetHubOnContext(context.Background(), hub), rec
}

func TestHandleCapturesToSentry(t *testing.T) {
	ctx, rec := newSentryContext(t)

	err := goerr.Wrap(errors.New("boom"), "approve failed", goerr.V("event_id", "e1"))
	gt.Error(t, errutil.Handle(ctx, err, "failed to approve event"))

	events := rec.captured()
	gt.A(t, events).Length(1)
	ev := events[0]
	gt.Value(t, ev.Tags["message"]).Equal("failed to approve event")
	gt.M(t, ev.Contexts).HasKey("goerr")
	gt.Value(t, ev.Contexts["goerr"]["event_id"]).Equal(any("e1"))
}

func TestHandleCapturesPlainError(t *testing.T) {
	ctx, rec := newSentryContext(t)

	gt.Error(t, errutil.Handle(ctx, errors.New("plain"), "plain failure"))

	events := rec.captured()
	gt.A(t, events).Length(1)
	_, ok := events[0].Contexts["goerr"]
	gt.False(t, ok)
}

func TestHandleHTTPCapturesOnlyServerErrors(t *testing.T) {
	ctx, rec := newSentryContext(t)

	errutil.HandleHTTP(ctx, httptest.NewRecorder(), goerr.New("bad input"), http.StatusBadRequest)
	gt.A(t, rec.captured()).Length(0)

	w := httptest.NewRecorder()
	errutil.HandleHTTP(ctx, w, goerr.New("store down", goerr.V("collection", "events")), http.StatusInternalServerError)
	gt.Value(t, w.Code).Equal(http.StatusInternalServerError)

	events := rec.captured()
	gt.A(t, events).Length(1)
	gt.Value(t, events[0].Tags["message"]).Equal("HTTP error")
	gt.Value(t, events[0].Contexts["goerr"]["collection"]).Equal(any("events"))
}
