package offline_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/offline"
)

func payload(s string) json.RawMessage {
	return json.RawMessage(s)
}

// recorder dispatches in order and fails the actions whose ID is in failIDs
type recorder struct {
	mu      sync.Mutex
	seen    []string
	failIDs map[string]error
}

func (r *recorder) Dispatch(ctx context.Context, action *model.QueuedAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, action.ID)
	if err, ok := r.failIDs[action.ID]; ok {
		return err
	}
	return nil
}

func TestEnqueue(t *testing.T) {
	t.Run("assigns ID and timestamp", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
		q := offline.New(offline.WithClock(func() time.Time { return now }))

		action, ok := q.Enqueue(types.ActionTypeSubmitFeedback, payload(`{"eventId":"ev-1","score":5}`))
		gt.Bool(t, ok).True()
		gt.Value(t, action.ID).NotEqual("")
		gt.Value(t, action.Timestamp).Equal(now)
		gt.Value(t, action.Retries).Equal(0)
		gt.Value(t, q.Len()).Equal(1)
	})

	t.Run("unsupported type is ignored", func(t *testing.T) {
		q := offline.New(offline.WithAllowedTypes(types.ActionTypeSubmitRating))

		action, ok := q.Enqueue(types.ActionTypeSubmitFeedback, payload(`{}`))
		gt.Bool(t, ok).False()
		gt.Value(t, action).Nil()
		gt.Value(t, q.Len()).Equal(0)

		_, ok = q.Enqueue(types.ActionType("deleteEvent"), payload(`{}`))
		gt.Bool(t, ok).False()
	})

	t.Run("returned action is a copy", func(t *testing.T) {
		q := offline.New()
		action, ok := q.Enqueue(types.ActionTypeSubmitRating, payload(`{"a":1}`))
		gt.Bool(t, ok).True()
		action.Retries = 10
		action.Payload[0] = '['

		pending := q.Pending()
		gt.Value(t, pending[0].Retries).Equal(0)
		gt.Value(t, string(pending[0].Payload)).Equal(`{"a":1}`)
	})
}

func TestReplay(t *testing.T) {
	t.Run("replays in capture order and removes successes", func(t *testing.T) {
		q := offline.New()
		a1, _ := q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))
		a2, _ := q.Enqueue(types.ActionTypeCreateSubmission, payload(`{}`))
		a3, _ := q.Enqueue(types.ActionTypeSubmitFeedback, payload(`{}`))

		rec := &recorder{}
		result, err := q.Replay(context.Background(), rec)
		gt.NoError(t, err).Required()
		gt.Value(t, rec.seen).Equal([]string{a1.ID, a2.ID, a3.ID})
		gt.Value(t, result.Succeeded).Equal(3)
		gt.Value(t, result.Remaining).Equal(0)
		gt.Value(t, q.Len()).Equal(0)
	})

	t.Run("failure does not block later actions", func(t *testing.T) {
		q := offline.New()
		a1, _ := q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))
		a2, _ := q.Enqueue(types.ActionTypeSubmitFeedback, payload(`{}`))

		rec := &recorder{failIDs: map[string]error{a1.ID: errors.New("backend unavailable")}}
		result, err := q.Replay(context.Background(), rec)
		gt.NoError(t, err).Required()
		gt.Value(t, rec.seen).Equal([]string{a1.ID, a2.ID})
		gt.Value(t, result.Succeeded).Equal(1)
		gt.Value(t, result.Failed).Equal(1)

		pending := q.Pending()
		gt.Array(t, pending).Length(1)
		gt.Value(t, pending[0].ID).Equal(a1.ID)
		gt.Value(t, pending[0].Retries).Equal(1)
		gt.Value(t, pending[0].Error).Equal("backend unavailable")
	})

	t.Run("middle failure keeps only the failed action", func(t *testing.T) {
		q := offline.New()
		a1, _ := q.Enqueue(types.ActionTypeSubmitRating, payload(`{"eventId":"ev-1"}`))
		a2, _ := q.Enqueue(types.ActionTypeCreateSubmission, payload(`{"eventId":"ev-1"}`))
		a3, _ := q.Enqueue(types.ActionTypeSubmitFeedback, payload(`{"eventId":"ev-1"}`))

		rec := &recorder{failIDs: map[string]error{a2.ID: errors.New("submission rejected upstream")}}
		result, err := q.Replay(context.Background(), rec)
		gt.NoError(t, err).Required()
		gt.Value(t, rec.seen).Equal([]string{a1.ID, a2.ID, a3.ID})
		gt.Value(t, result.Attempted).Equal(3)
		gt.Value(t, result.Succeeded).Equal(2)
		gt.Value(t, result.Failed).Equal(1)
		gt.Value(t, result.GivenUp).Equal(0)
		gt.Value(t, result.Remaining).Equal(1)

		pending := q.Pending()
		gt.Array(t, pending).Length(1).Required()
		gt.Value(t, pending[0].ID).Equal(a2.ID)
		gt.Value(t, pending[0].Type).Equal(types.ActionTypeCreateSubmission)
		gt.Value(t, pending[0].Retries).Equal(1)
		gt.Value(t, pending[0].Error).Equal("submission rejected upstream")
		gt.Array(t, q.Failed()).Length(0)
	})

	t.Run("action is given up after max retries", func(t *testing.T) {
		q := offline.New(offline.WithMaxRetries(3))
		a1, _ := q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))
		rec := &recorder{failIDs: map[string]error{a1.ID: errors.New("boom")}}

		for i := 0; i < 2; i++ {
			_, err := q.Replay(context.Background(), rec)
			gt.NoError(t, err).Required()
			gt.Value(t, q.Len()).Equal(1)
		}

		result, err := q.Replay(context.Background(), rec)
		gt.NoError(t, err).Required()
		gt.Value(t, result.GivenUp).Equal(1)
		gt.Value(t, q.Len()).Equal(0)

		failed := q.Failed()
		gt.Array(t, failed).Length(1)
		gt.Value(t, failed[0].Retries).Equal(3)

		_, err = q.Replay(context.Background(), rec)
		gt.NoError(t, err).Required()
		gt.Array(t, rec.seen).Length(3)
	})

	t.Run("permanent error skips retries", func(t *testing.T) {
		q := offline.New()
		a1, _ := q.Enqueue(types.ActionTypeSubmitFeedback, payload(`{"bogus":true}`))
		rec := &recorder{failIDs: map[string]error{a1.ID: model.ErrInvalidPayload}}

		result, err := q.Replay(context.Background(), rec)
		gt.NoError(t, err).Required()
		gt.Value(t, result.GivenUp).Equal(1)
		gt.Array(t, q.Failed()).Length(1)
	})

	t.Run("RetryFailed moves actions back with retries reset", func(t *testing.T) {
		q := offline.New(offline.WithMaxRetries(1))
		a1, _ := q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))
		rec := &recorder{failIDs: map[string]error{a1.ID: errors.New("boom")}}
		_, err := q.Replay(context.Background(), rec)
		gt.NoError(t, err).Required()
		gt.Array(t, q.Failed()).Length(1)

		gt.Value(t, q.RetryFailed()).Equal(1)
		gt.Array(t, q.Failed()).Length(0)
		pending := q.Pending()
		gt.Array(t, pending).Length(1)
		gt.Value(t, pending[0].Retries).Equal(0)
		gt.Value(t, pending[0].ID).Equal(a1.ID)
	})

	t.Run("cancelled context leaves actions pending", func(t *testing.T) {
		q := offline.New()
		q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))
		q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		dispatcher := offline.DispatcherFunc(func(ctx context.Context, action *model.QueuedAction) error {
			calls++
			cancel()
			return nil
		})

		result, err := q.Replay(ctx, dispatcher)
		gt.NoError(t, err).Required()
		gt.Value(t, calls).Equal(1)
		gt.Value(t, result.Remaining).Equal(1)
	})

	t.Run("concurrent replay is refused", func(t *testing.T) {
		q := offline.New()
		q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))

		started := make(chan struct{})
		release := make(chan struct{})
		dispatcher := offline.DispatcherFunc(func(ctx context.Context, action *model.QueuedAction) error {
			close(started)
			<-release
			return nil
		})

		done := make(chan error, 1)
		go func() {
			_, err := q.Replay(context.Background(), dispatcher)
			done <- err
		}()

		<-started
		_, err := q.Replay(context.Background(), dispatcher)
		gt.Error(t, err).Is(offline.ErrReplayInProgress)

		close(release)
		gt.NoError(t, <-done)
		gt.Value(t, q.Len()).Equal(0)
	})

	t.Run("actions queued during replay are kept", func(t *testing.T) {
		q := offline.New()
		q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))

		dispatcher := offline.DispatcherFunc(func(ctx context.Context, action *model.QueuedAction) error {
			q.Enqueue(types.ActionTypeSubmitFeedback, payload(`{}`))
			return nil
		})

		result, err := q.Replay(context.Background(), dispatcher)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Attempted).Equal(1)
		gt.Value(t, result.Remaining).Equal(1)
	})

	t.Run("bounded concurrency dispatches every action once", func(t *testing.T) {
		q := offline.New(offline.WithConcurrency(4))
		for i := 0; i < 20; i++ {
			q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))
		}

		var inFlight, maxInFlight, total atomic.Int32
		dispatcher := offline.DispatcherFunc(func(ctx context.Context, action *model.QueuedAction) error {
			n := inFlight.Add(1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			total.Add(1)
			return nil
		})

		result, err := q.Replay(context.Background(), dispatcher)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Succeeded).Equal(20)
		gt.Value(t, total.Load()).Equal(int32(20))
		gt.Bool(t, maxInFlight.Load() <= 4).True()
	})
}

func TestClearAndRemove(t *testing.T) {
	q := offline.New(offline.WithMaxRetries(1))
	a1, _ := q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))
	a2, _ := q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))

	gt.Bool(t, q.Remove(a1.ID)).True()
	gt.Bool(t, q.Remove(a1.ID)).False()
	gt.Value(t, q.Pending()[0].ID).Equal(a2.ID)

	q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))
	q.Clear()
	gt.Value(t, q.Len()).Equal(0)
	gt.Array(t, q.Failed()).Length(0)
}

func TestRemoveFunc(t *testing.T) {
	q := offline.New(offline.WithMaxRetries(1))
	mine1, _ := q.Enqueue(types.ActionTypeSubmitRating, payload(`{"userId":"u1"}`))
	theirs, _ := q.Enqueue(types.ActionTypeSubmitRating, payload(`{"userId":"u2"}`))
	mine2, _ := q.Enqueue(types.ActionTypeSubmitFeedback, payload(`{"userId":"u1"}`))

	// all three end up in the failed list
	rec := &recorder{failIDs: map[string]error{mine1.ID: errors.New("boom"), theirs.ID: errors.New("boom"), mine2.ID: errors.New("boom")}}
	_, err := q.Replay(context.Background(), rec)
	gt.NoError(t, err).Required()
	gt.Array(t, q.Failed()).Length(3)
	q.Enqueue(types.ActionTypeSubmitRating, payload(`{"userId":"u2"}`))

	var notified int
	unsubscribe := q.Subscribe(func(int, int) { notified++ })
	defer unsubscribe()

	owned := func(a *model.QueuedAction) bool { return string(a.Payload) != `{"userId":"u2"}` }
	gt.Value(t, q.RemoveFunc(owned)).Equal(2)
	gt.Value(t, notified).Equal(1)

	failed := q.Failed()
	gt.Array(t, failed).Length(1)
	gt.Value(t, failed[0].ID).Equal(theirs.ID)
	gt.Array(t, q.Pending()).Length(1)

	gt.Value(t, q.RemoveFunc(owned)).Equal(0)
	gt.Value(t, notified).Equal(1)
}

func TestSubscribe(t *testing.T) {
	q := offline.New()

	var mu sync.Mutex
	var counts []int
	unsubscribe := q.Subscribe(func(pending, failed int) {
		mu.Lock()
		defer mu.Unlock()
		counts = append(counts, pending)
	})

	q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))
	q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))
	q.Clear()
	unsubscribe()
	q.Enqueue(types.ActionTypeSubmitRating, payload(`{}`))

	mu.Lock()
	defer mu.Unlock()
	gt.Value(t, counts).Equal([]int{1, 2, 0})
}
