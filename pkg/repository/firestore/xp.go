package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// userXpDoc is the Firestore document representation of model.UserXp.
// Field names are stable because awards are applied as server-side increments on them.
type userXpDoc struct {
	UserID            string           `firestore:"userId"`
	Fields            map[string]int64 `firestore:"fields"`
	CountWins         int64            `firestore:"count_wins"`
	TotalCalculatedXp int64            `firestore:"totalCalculatedXp"`
	History           []xpHistoryDoc   `firestore:"xpHistory"`
	LastUpdatedAt     time.Time        `firestore:"lastUpdatedAt"`
}

type xpHistoryDoc struct {
	EventID   string    `firestore:"eventId"`
	EventName string    `firestore:"eventName"`
	Role      string    `firestore:"role"`
	Points    int64     `firestore:"points"`
	AwardedAt time.Time `firestore:"awardedAt"`
}

func fromUserXpDoc(d *userXpDoc) *model.UserXp {
	x := &model.UserXp{
		UserID:            d.UserID,
		Fields:            make(map[types.XpField]int, len(d.Fields)),
		CountWins:         int(d.CountWins),
		TotalCalculatedXp: int(d.TotalCalculatedXp),
		History:           make([]model.XpHistoryEntry, 0, len(d.History)),
		LastUpdatedAt:     d.LastUpdatedAt,
	}
	for field, points := range d.Fields {
		x.Fields[types.XpField(field)] = int(points)
	}
	for _, h := range d.History {
		x.History = append(x.History, model.XpHistoryEntry{
			EventID:   model.EventID(h.EventID),
			EventName: h.EventName,
			Role:      h.Role,
			Points:    int(h.Points),
			AwardedAt: h.AwardedAt,
		})
	}
	return x
}

// awardUpdate builds the merge-set payload applying one user's award with server-side transforms
func awardUpdate(award *model.UserXpAward, now time.Time) map[string]interface{} {
	fields := make(map[string]interface{}, len(award.Increments))
	for field, points := range award.Increments {
		fields[field.String()] = firestore.Increment(points)
	}

	history := make([]interface{}, 0, len(award.History))
	for _, h := range award.History {
		history = append(history, xpHistoryDoc{
			EventID:   h.EventID.String(),
			EventName: h.EventName,
			Role:      h.Role,
			Points:    int64(h.Points),
			AwardedAt: h.AwardedAt,
		})
	}

	data := map[string]interface{}{
		"userId":            award.UserID,
		"totalCalculatedXp": firestore.Increment(award.Total),
		"lastUpdatedAt":     now,
	}
	if len(fields) > 0 {
		data["fields"] = fields
	}
	if award.CountWins > 0 {
		data["count_wins"] = firestore.Increment(award.CountWins)
	}
	if len(history) > 0 {
		data["xpHistory"] = firestore.ArrayUnion(history...)
	}
	return data
}

type xpRepository struct {
	client           *firestore.Client
	collectionPrefix string
	events           *eventRepository
}

func newXpRepository(client *firestore.Client, events *eventRepository) *xpRepository {
	return &xpRepository{
		client:           client,
		collectionPrefix: "",
		events:           events,
	}
}

func (r *xpRepository) xpCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_xp"
	}
	return "xp"
}

// CloseEventWithAwards writes at most MaxXpBatchUsers user documents plus the event
// document, which keeps the transaction under Firestore's 500-write limit.
func (r *xpRepository) CloseEventWithAwards(ctx context.Context, batch *model.XpAwardBatch) (*model.Event, error) {
	if batch == nil {
		return nil, goerr.New("XP award batch is nil")
	}
	if len(batch.Awards) > model.MaxXpBatchUsers {
		return nil, goerr.Wrap(model.ErrXpBatchTooLarge, "cannot commit XP award batch",
			goerr.V(model.EventIDKey, batch.EventID), goerr.V(model.UserCountKey, len(batch.Awards)))
	}

	eventRef := r.events.doc(batch.EventID)

	var closed model.Event
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(eventRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "event not found", goerr.V(model.EventIDKey, batch.EventID))
			}
			return goerr.Wrap(err, "failed to get event", goerr.V(model.EventIDKey, batch.EventID))
		}

		var e model.Event
		if err := docSnap.DataTo(&e); err != nil {
			return goerr.Wrap(err, "failed to decode event", goerr.V(model.EventIDKey, batch.EventID))
		}
		if e.XPAwarded {
			return goerr.Wrap(interfaces.ErrXpAlreadyAwarded, "cannot close event",
				goerr.V(model.EventIDKey, batch.EventID))
		}
		if e.Status != types.EventStatusCompleted {
			return goerr.Wrap(interfaces.ErrStatusChanged, "cannot close event",
				goerr.V(model.EventIDKey, batch.EventID), goerr.V("status", e.Status))
		}

		now := time.Now().UTC()
		for i := range batch.Awards {
			award := &batch.Awards[i]
			ref := r.client.Collection(r.xpCollection()).Doc(award.UserID)
			if err := tx.Set(ref, awardUpdate(award, now), firestore.MergeAll); err != nil {
				return goerr.Wrap(err, "failed to stage XP award", goerr.V("user_id", award.UserID))
			}
		}

		e.Status = types.EventStatusClosed
		e.XPAwarded = true
		e.ClosedAt = &now
		e.LastUpdatedAt = now
		closed = e
		return tx.Set(eventRef, &closed)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to commit XP award batch",
			goerr.V(model.EventIDKey, batch.EventID), goerr.V(model.UserCountKey, len(batch.Awards)))
	}

	return &closed, nil
}

func (r *xpRepository) Get(ctx context.Context, userID string) (*model.UserXp, error) {
	docSnap, err := r.client.Collection(r.xpCollection()).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user XP not found", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to get user XP", goerr.V("user_id", userID))
	}

	var d userXpDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user XP", goerr.V("user_id", userID))
	}

	return fromUserXpDoc(&d), nil
}
