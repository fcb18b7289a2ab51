package interfaces

import (
	"context"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
)

// XpRepository defines the interface for user XP data access
type XpRepository interface {
	// CloseEventWithAwards commits every award in batch additively and marks the event
	// Closed with XP awarded, all in one atomic write. The event must be Completed.
	// Returns ErrXpAlreadyAwarded if the event already has XP awarded.
	CloseEventWithAwards(ctx context.Context, batch *model.XpAwardBatch) (*model.Event, error)

	// Get retrieves a user's XP. Returns ErrNotFound if the user has none.
	Get(ctx context.Context, userID string) (*model.UserXp, error)
}
