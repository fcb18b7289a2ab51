package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

type xpRepository struct {
	mu     sync.RWMutex
	users  map[string]*model.UserXp
	events *eventRepository
}

func newXpRepository(events *eventRepository) *xpRepository {
	return &xpRepository{
		users:  make(map[string]*model.UserXp),
		events: events,
	}
}

func (r *xpRepository) CloseEventWithAwards(ctx context.Context, batch *model.XpAwardBatch) (*model.Event, error) {
	if batch == nil {
		return nil, goerr.New("XP award batch is nil")
	}

	// lock order: events, then users
	r.events.mu.Lock()
	defer r.events.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events.events[batch.EventID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "event not found", goerr.V(model.EventIDKey, batch.EventID))
	}
	if e.XPAwarded {
		return nil, goerr.Wrap(interfaces.ErrXpAlreadyAwarded, "cannot close event",
			goerr.V(model.EventIDKey, batch.EventID))
	}
	if e.Status != types.EventStatusCompleted {
		return nil, goerr.Wrap(interfaces.ErrStatusChanged, "cannot close event",
			goerr.V(model.EventIDKey, batch.EventID), goerr.V("status", e.Status))
	}

	now := time.Now().UTC()
	for _, award := range batch.Awards {
		u, ok := r.users[award.UserID]
		if !ok {
			u = &model.UserXp{
				UserID: award.UserID,
				Fields: make(map[types.XpField]int),
			}
			r.users[award.UserID] = u
		}
		for field, points := range award.Increments {
			u.Fields[field] += points
		}
		u.CountWins += award.CountWins
		u.TotalCalculatedXp += award.Total
		u.History = append(u.History, award.History...)
		u.LastUpdatedAt = now
	}

	closed := copyEvent(e)
	closed.Status = types.EventStatusClosed
	closed.XPAwarded = true
	closed.ClosedAt = &now
	closed.LastUpdatedAt = now
	r.events.events[batch.EventID] = closed

	return copyEvent(closed), nil
}

func (r *xpRepository) Get(ctx context.Context, userID string) (*model.UserXp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "user XP not found", goerr.V("user_id", userID))
	}
	return copyUserXp(u), nil
}
