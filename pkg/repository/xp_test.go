package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

func runXpRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	createCompleted := func(t *testing.T, repo interfaces.Repository, name string) *model.Event {
		t.Helper()
		created, err := repo.Event().Create(context.Background(), newTestEvent(name, base, 1, types.EventStatusCompleted))
		gt.NoError(t, err).Required()
		return created
	}

	t.Run("awards are additive across events", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := createCompleted(t, repo, "First")
		batch, err := model.BuildXpAwardBatch(map[string]model.XpFieldUpdates{
			"userA": {types.XpFieldOrganizer: 50},
			"userB": {types.XpFieldDeveloper: 20, types.XpFieldCountWins: 1},
		}, first.ID, first.Details.EventName, base)
		gt.NoError(t, err).Required()

		closed, err := repo.Xp().CloseEventWithAwards(ctx, batch)
		gt.NoError(t, err).Required()
		gt.Value(t, closed.Status).Equal(types.EventStatusClosed)
		gt.Bool(t, closed.XPAwarded).True()
		gt.Value(t, closed.ClosedAt).NotNil()

		second := createCompleted(t, repo, "Second")
		batch, err = model.BuildXpAwardBatch(map[string]model.XpFieldUpdates{
			"userA": {types.XpFieldOrganizer: 10, types.XpFieldPresenter: 5},
		}, second.ID, second.Details.EventName, base.AddDate(0, 0, 1))
		gt.NoError(t, err).Required()
		_, err = repo.Xp().CloseEventWithAwards(ctx, batch)
		gt.NoError(t, err).Required()

		userA, err := repo.Xp().Get(ctx, "userA")
		gt.NoError(t, err).Required()
		gt.Value(t, userA.Fields[types.XpFieldOrganizer]).Equal(60)
		gt.Value(t, userA.Fields[types.XpFieldPresenter]).Equal(5)
		gt.Value(t, userA.TotalCalculatedXp).Equal(65)
		gt.Array(t, userA.History).Length(3)

		userB, err := repo.Xp().Get(ctx, "userB")
		gt.NoError(t, err).Required()
		gt.Value(t, userB.CountWins).Equal(1)
		gt.Value(t, userB.TotalCalculatedXp).Equal(20)

		got, err := repo.Event().Get(ctx, first.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.EventStatusClosed)
	})

	t.Run("second close is refused", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ev := createCompleted(t, repo, "Once")
		batch, err := model.BuildXpAwardBatch(map[string]model.XpFieldUpdates{
			"userA": {types.XpFieldParticipation: 10},
		}, ev.ID, ev.Details.EventName, base)
		gt.NoError(t, err).Required()

		_, err = repo.Xp().CloseEventWithAwards(ctx, batch)
		gt.NoError(t, err).Required()
		_, err = repo.Xp().CloseEventWithAwards(ctx, batch)
		gt.Error(t, err).Is(interfaces.ErrXpAlreadyAwarded)

		userA, err := repo.Xp().Get(ctx, "userA")
		gt.NoError(t, err).Required()
		gt.Value(t, userA.TotalCalculatedXp).Equal(10)
	})

	t.Run("event must be completed", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ev, err := repo.Event().Create(ctx, newTestEvent("Running", base, 1, types.EventStatusInProgress))
		gt.NoError(t, err).Required()
		batch, err := model.BuildXpAwardBatch(map[string]model.XpFieldUpdates{
			"userA": {types.XpFieldParticipation: 10},
		}, ev.ID, ev.Details.EventName, base)
		gt.NoError(t, err).Required()

		_, err = repo.Xp().CloseEventWithAwards(ctx, batch)
		gt.Error(t, err).Is(interfaces.ErrStatusChanged)

		_, err = repo.Xp().Get(ctx, "userA")
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("empty batch still closes the event", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ev := createCompleted(t, repo, "Quiet")
		batch, err := model.BuildXpAwardBatch(nil, ev.ID, ev.Details.EventName, base)
		gt.NoError(t, err).Required()

		closed, err := repo.Xp().CloseEventWithAwards(ctx, batch)
		gt.NoError(t, err).Required()
		gt.Value(t, closed.Status).Equal(types.EventStatusClosed)
	})
}

func TestMemoryXpRepository(t *testing.T) {
	runXpRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreXpRepository(t *testing.T) {
	runXpRepositoryTest(t, newFirestoreRepository)
}
