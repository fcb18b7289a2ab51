package interfaces

import (
	"context"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

// DraftStore persists unfinished forms per user
type DraftStore interface {
	Save(ctx context.Context, userID string, key types.DraftKey, data []byte) (*model.Draft, error)

	// Load returns the saved draft. Returns ErrNotFound if nothing is saved under key.
	Load(ctx context.Context, userID string, key types.DraftKey) (*model.Draft, error)

	Delete(ctx context.Context, userID string, key types.DraftKey) error
	Close() error
}
