package worker

import (
	"context"
	"time"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// ReplayFunc replays the pending offline actions once
type ReplayFunc func(ctx context.Context) error

// QueueReplayWorker periodically replays pending offline actions. It backs up the
// reconnect trigger: actions that failed transiently are retried without waiting for
// the next offline to online transition.
//
// Architecture assumptions:
// - Single server instance; the queue lives in process memory
type QueueReplayWorker struct {
	replay   ReplayFunc
	ready    func() bool
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewQueueReplayWorker creates a worker calling replay every interval while ready reports true
func NewQueueReplayWorker(replay ReplayFunc, ready func() bool, interval time.Duration) *QueueReplayWorker {
	return &QueueReplayWorker{
		replay:   replay,
		ready:    ready,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background loop without blocking
func (w *QueueReplayWorker) Start(ctx context.Context) {
	logging.Default().Info("Queue replay worker starting", "interval", w.interval.String())
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for the loop to exit
func (w *QueueReplayWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Queue replay worker stopped")
}

func (w *QueueReplayWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Queue replay worker context cancelled")
			return
		}
	}
}

func (w *QueueReplayWorker) tick(ctx context.Context) {
	if w.ready != nil && !w.ready() {
		return
	}
	if err := w.replay(ctx); err != nil {
		logging.From(ctx).Error("Periodic queue replay failed (will retry next interval)",
			"error", err.Error())
	}
}
