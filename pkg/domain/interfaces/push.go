package interfaces

import (
	"context"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
)

// PushSender delivers push messages to users
type PushSender interface {
	Send(ctx context.Context, msg *model.PushMessage) error
}
