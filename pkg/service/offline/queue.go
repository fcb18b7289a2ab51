package offline

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxRetries is the number of failed replays after which an action is given up
const DefaultMaxRetries = 3

// ErrReplayInProgress is returned when Replay is called while another replay is running
var ErrReplayInProgress = goerr.New("replay already in progress")

// Dispatcher executes one queued action against the backend
type Dispatcher interface {
	Dispatch(ctx context.Context, action *model.QueuedAction) error
}

// DispatcherFunc adapts a function to Dispatcher
type DispatcherFunc func(ctx context.Context, action *model.QueuedAction) error

func (f DispatcherFunc) Dispatch(ctx context.Context, action *model.QueuedAction) error {
	return f(ctx, action)
}

// ReplayResult summarizes one Replay call
type ReplayResult struct {
	Attempted int
	Succeeded int
	Failed    int
	// GivenUp counts actions moved to the failed list during this replay
	GivenUp int
	// Remaining is the number of actions still pending after the replay
	Remaining int
}

// Listener is notified with the pending and failed counts after every queue change
type Listener func(pending, failed int)

// Queue holds mutating actions captured while offline until they can be replayed.
// Actions are replayed in capture order; callers only ever receive copies.
type Queue struct {
	mu          sync.Mutex
	pending     []*model.QueuedAction
	failed      []*model.QueuedAction
	allowed     map[types.ActionType]struct{}
	maxRetries  int
	concurrency int
	permanent   []error
	now         func() time.Time

	replaying atomic.Bool

	listenerMu sync.RWMutex
	listeners  map[int]Listener
	nextID     int
}

// Option configures a Queue
type Option func(*Queue)

// WithAllowedTypes restricts which action types may be queued
func WithAllowedTypes(actionTypes ...types.ActionType) Option {
	return func(q *Queue) {
		q.allowed = make(map[types.ActionType]struct{}, len(actionTypes))
		for _, t := range actionTypes {
			q.allowed[t] = struct{}{}
		}
	}
}

// WithMaxRetries sets how many failed replays an action survives
func WithMaxRetries(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxRetries = n
		}
	}
}

// WithConcurrency sets how many actions are dispatched at once during replay.
// With n > 1, actions are started in capture order but may complete out of order.
func WithConcurrency(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.concurrency = n
		}
	}
}

// WithPermanentErrors marks dispatch errors that are never worth retrying.
// An action failing with one of them goes straight to the failed list.
func WithPermanentErrors(errs ...error) Option {
	return func(q *Queue) {
		q.permanent = append(q.permanent, errs...)
	}
}

// WithClock overrides the time source used for capture timestamps
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

// New creates an empty queue accepting every known action type
func New(opts ...Option) *Queue {
	q := &Queue{
		maxRetries:  DefaultMaxRetries,
		concurrency: 1,
		now:         time.Now,
		listeners:   make(map[int]Listener),
		permanent:   []error{model.ErrInvalidPayload, model.ErrMissingRequiredInput},
	}
	WithAllowedTypes(types.AllActionTypes()...)(q)

	for _, opt := range opts {
		opt(q)
	}
	return q
}

// IsAllowed reports whether actionType may be queued
func (q *Queue) IsAllowed(actionType types.ActionType) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.allowed[actionType]
	return ok
}

// Enqueue captures an action for later replay. Unsupported types are ignored and
// reported with ok == false.
func (q *Queue) Enqueue(actionType types.ActionType, payload json.RawMessage) (*model.QueuedAction, bool) {
	q.mu.Lock()
	if _, ok := q.allowed[actionType]; !ok {
		q.mu.Unlock()
		logging.Default().Warn("action type not supported offline", "action_type", actionType)
		return nil, false
	}

	action := &model.QueuedAction{
		ID:        model.NewQueuedActionID(),
		Type:      actionType,
		Payload:   append(json.RawMessage(nil), payload...),
		Timestamp: q.now().UTC(),
	}
	q.pending = append(q.pending, action)
	result := action.Clone()
	q.mu.Unlock()

	logging.Default().Info("action queued for offline replay",
		"action_id", action.ID, "action_type", actionType)
	q.notify()
	return result, true
}

// Replay dispatches a snapshot of the pending actions in capture order.
// Successful actions are removed. Failed ones stay pending with Retries and Error
// updated, and move to the failed list once Retries reaches the limit. A failure never
// stops later actions. When ctx is cancelled no further actions are started.
func (q *Queue) Replay(ctx context.Context, dispatcher Dispatcher) (*ReplayResult, error) {
	if !q.replaying.CompareAndSwap(false, true) {
		return nil, goerr.Wrap(ErrReplayInProgress, "cannot start replay")
	}
	defer q.replaying.Store(false)

	snapshot := q.Pending()
	result := &ReplayResult{}
	if len(snapshot) == 0 {
		return result, nil
	}

	logger := logging.From(ctx)
	logger.Info("replaying offline actions", "count", len(snapshot))

	var resultMu sync.Mutex
	run := func(action *model.QueuedAction) {
		err := dispatcher.Dispatch(ctx, action)
		givenUp := q.settle(action.ID, err)

		resultMu.Lock()
		defer resultMu.Unlock()
		result.Attempted++
		if err == nil {
			result.Succeeded++
			return
		}
		result.Failed++
		if givenUp {
			result.GivenUp++
		}
		logger.Warn("offline action replay failed",
			"action_id", action.ID,
			"action_type", action.Type,
			"error", err.Error(),
			"given_up", givenUp,
		)
	}

	if q.concurrency <= 1 {
		for _, action := range snapshot {
			if ctx.Err() != nil {
				break
			}
			run(action)
		}
	} else {
		var eg errgroup.Group
		eg.SetLimit(q.concurrency)
		for _, action := range snapshot {
			if ctx.Err() != nil {
				break
			}
			eg.Go(func() error {
				run(action)
				return nil
			})
		}
		_ = eg.Wait()
	}

	result.Remaining = q.Len()
	logger.Info("offline replay finished",
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"given_up", result.GivenUp,
		"remaining", result.Remaining,
	)
	return result, nil
}

// settle applies the outcome of one dispatch and reports whether the action was given up.
// Actions removed while they were being dispatched are left alone.
func (q *Queue) settle(id string, dispatchErr error) bool {
	q.mu.Lock()
	idx := slices.IndexFunc(q.pending, func(a *model.QueuedAction) bool { return a.ID == id })
	if idx < 0 {
		q.mu.Unlock()
		return false
	}

	givenUp := false
	if dispatchErr == nil {
		q.pending = slices.Delete(q.pending, idx, idx+1)
	} else {
		action := q.pending[idx]
		action.Retries++
		action.Error = dispatchErr.Error()
		if action.Retries >= q.maxRetries || q.isPermanent(dispatchErr) {
			q.pending = slices.Delete(q.pending, idx, idx+1)
			q.failed = append(q.failed, action)
			givenUp = true
		}
	}
	q.mu.Unlock()

	q.notify()
	return givenUp
}

func (q *Queue) isPermanent(err error) bool {
	for _, target := range q.permanent {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Clear drops every pending and failed action, e.g. on logout
func (q *Queue) Clear() {
	q.mu.Lock()
	dropped := len(q.pending) + len(q.failed)
	q.pending = nil
	q.failed = nil
	q.mu.Unlock()

	logging.Default().Info("offline queue cleared", "dropped", dropped)
	q.notify()
}

// Remove drops one pending or failed action and reports whether it existed
func (q *Queue) Remove(id string) bool {
	return q.RemoveFunc(func(a *model.QueuedAction) bool { return a.ID == id }) > 0
}

// RemoveFunc drops every pending or failed action for which match returns true and
// returns how many were dropped. match must not modify or retain the action.
func (q *Queue) RemoveFunc(match func(*model.QueuedAction) bool) int {
	q.mu.Lock()
	before := len(q.pending) + len(q.failed)
	q.pending = slices.DeleteFunc(q.pending, match)
	q.failed = slices.DeleteFunc(q.failed, match)
	removed := before - len(q.pending) - len(q.failed)
	q.mu.Unlock()

	if removed > 0 {
		q.notify()
	}
	return removed
}

// RetryFailed moves every failed action back to the end of the pending list with its
// retry count reset, and returns how many were moved
func (q *Queue) RetryFailed() int {
	q.mu.Lock()
	moved := len(q.failed)
	for _, action := range q.failed {
		action.Retries = 0
		q.pending = append(q.pending, action)
	}
	q.failed = nil
	q.mu.Unlock()

	if moved > 0 {
		q.notify()
	}
	return moved
}

// Pending returns copies of the pending actions in capture order
func (q *Queue) Pending() []*model.QueuedAction {
	q.mu.Lock()
	defer q.mu.Unlock()
	return cloneAll(q.pending)
}

// Failed returns copies of the actions that exhausted their retries
func (q *Queue) Failed() []*model.QueuedAction {
	q.mu.Lock()
	defer q.mu.Unlock()
	return cloneAll(q.failed)
}

// Len returns the number of pending actions
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Subscribe registers fn to be called after every change. The returned function
// unregisters it.
func (q *Queue) Subscribe(fn Listener) func() {
	q.listenerMu.Lock()
	defer q.listenerMu.Unlock()

	id := q.nextID
	q.nextID++
	q.listeners[id] = fn

	return func() {
		q.listenerMu.Lock()
		defer q.listenerMu.Unlock()
		delete(q.listeners, id)
	}
}

func (q *Queue) notify() {
	q.mu.Lock()
	pending, failed := len(q.pending), len(q.failed)
	q.mu.Unlock()

	q.listenerMu.RLock()
	defer q.listenerMu.RUnlock()
	for _, fn := range q.listeners {
		fn(pending, failed)
	}
}

func cloneAll(actions []*model.QueuedAction) []*model.QueuedAction {
	out := make([]*model.QueuedAction, len(actions))
	for i, a := range actions {
		out[i] = a.Clone()
	}
	return out
}
