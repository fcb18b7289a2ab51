package model

import (
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

// MaxXpBatchUsers is the largest number of users one award batch may touch.
// The document store commits at most 500 writes atomically; two are kept in reserve.
const MaxXpBatchUsers = 498

// XpFieldUpdates maps XP fields to the increment requested for one user
type XpFieldUpdates map[types.XpField]int

// XpHistoryEntry records one role award to one user
type XpHistoryEntry struct {
	EventID   EventID
	EventName string
	Role      string
	Points    int
	AwardedAt time.Time
}

// UserXpAward is the additive update for a single user within a batch
type UserXpAward struct {
	UserID     string
	Increments map[types.XpField]int
	CountWins  int
	Total      int
	History    []XpHistoryEntry
}

// XpAwardBatch is a set of per-user increments that must be committed atomically
type XpAwardBatch struct {
	EventID   EventID
	EventName string
	AwardedAt time.Time
	Awards    []UserXpAward
}

// IsEmpty reports whether the batch has nothing to write
func (b *XpAwardBatch) IsEmpty() bool {
	return b == nil || len(b.Awards) == 0
}

// BuildXpAwardBatch turns requested per-user XP changes into one additive batch.
// Zero, negative and unknown fields are dropped silently; users left without any positive
// increment are skipped. The batch is refused when the event is unidentified or when more
// than MaxXpBatchUsers users would be written.
func BuildXpAwardBatch(changes map[string]XpFieldUpdates, eventID EventID, eventName string, awardedAt time.Time) (*XpAwardBatch, error) {
	if eventID == "" || strings.TrimSpace(eventName) == "" {
		return nil, goerr.Wrap(ErrXpBatchMissingEvent, "refusing XP award batch",
			goerr.V(EventIDKey, eventID), goerr.V("event_name", eventName))
	}

	userIDs := make([]string, 0, len(changes))
	for userID := range changes {
		if strings.TrimSpace(userID) != "" {
			userIDs = append(userIDs, userID)
		}
	}
	sort.Strings(userIDs)

	awards := make([]UserXpAward, 0, len(userIDs))
	for _, userID := range userIDs {
		award, ok := buildUserAward(userID, changes[userID], eventID, eventName, awardedAt)
		if !ok {
			continue
		}
		awards = append(awards, award)
	}

	if len(awards) > MaxXpBatchUsers {
		return nil, goerr.Wrap(ErrXpBatchTooLarge, "refusing XP award batch",
			goerr.V(EventIDKey, eventID), goerr.V(UserCountKey, len(awards)),
			goerr.V("limit", MaxXpBatchUsers))
	}

	return &XpAwardBatch{
		EventID:   eventID,
		EventName: eventName,
		AwardedAt: awardedAt,
		Awards:    awards,
	}, nil
}

func buildUserAward(userID string, updates XpFieldUpdates, eventID EventID, eventName string, awardedAt time.Time) (UserXpAward, bool) {
	award := UserXpAward{
		UserID:     userID,
		Increments: make(map[types.XpField]int),
	}

	for _, field := range types.AllXpRoleFields() {
		points := updates[field]
		if points <= 0 {
			continue
		}
		award.Increments[field] = points
		award.Total += points
		award.History = append(award.History, XpHistoryEntry{
			EventID:   eventID,
			EventName: eventName,
			Role:      field.Role(),
			Points:    points,
			AwardedAt: awardedAt,
		})
	}

	if wins := updates[types.XpFieldCountWins]; wins > 0 {
		award.CountWins = wins
	}

	if award.Total == 0 && award.CountWins == 0 {
		return UserXpAward{}, false
	}
	return award, true
}

// UserXp is a user's accumulated XP record
type UserXp struct {
	UserID            string
	Fields            map[types.XpField]int
	CountWins         int
	TotalCalculatedXp int
	History           []XpHistoryEntry
	LastUpdatedAt     time.Time
}
