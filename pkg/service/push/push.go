package push

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Service delivers push messages
type Service = interfaces.PushSender

var (
	// ErrDeliveryFailed is returned when the push backend does not confirm delivery
	ErrDeliveryFailed = goerr.New("push delivery failed")

	// ErrEmptyMessage is returned for messages without a title or body
	ErrEmptyMessage = goerr.New("push message needs a title or body")
)

func validate(msg *model.PushMessage) error {
	if msg == nil || (msg.Title == "" && msg.Body == "") {
		return goerr.Wrap(ErrEmptyMessage, "cannot send push message")
	}
	return nil
}

// Nop discards every message. It is used when no push backend is configured.
type Nop struct{}

func (Nop) Send(ctx context.Context, msg *model.PushMessage) error {
	logging.From(ctx).Debug("push disabled, message dropped", "title", msg.Title)
	return nil
}

// Multi sends each message to every backend concurrently
type Multi []Service

func (m Multi) Send(ctx context.Context, msg *model.PushMessage) error {
	var eg errgroup.Group
	for _, svc := range m {
		eg.Go(func() error {
			return svc.Send(ctx, msg)
		})
	}
	if err := eg.Wait(); err != nil {
		return goerr.Wrap(err, "failed to send push message", goerr.V("backends", len(m)))
	}
	return nil
}
