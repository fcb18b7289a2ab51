package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

func newEvent(t *testing.T, cal *model.Calendar, id, name, start, end string, status types.EventStatus) *model.Event {
	t.Helper()
	s, err := cal.ParseDate(start)
	gt.NoError(t, err).Required()
	e, err := cal.ParseDate(end)
	gt.NoError(t, err).Required()
	return &model.Event{
		ID:     model.EventID(id),
		Status: status,
		Details: model.EventDetails{
			EventName: name,
			Format:    types.EventFormatIndividual,
			Date:      model.EventDate{Start: s, End: e},
		},
	}
}

func TestCalendarFindConflict(t *testing.T) {
	cal := model.DefaultCalendar()
	hackathon := newEvent(t, cal, "ev-1", "Hackathon", "2024-06-01", "2024-06-05", types.EventStatusApproved)

	mustDate := func(s string) time.Time {
		d, err := cal.ParseDate(s)
		gt.NoError(t, err).Required()
		return d
	}

	t.Run("overlapping range reports next available day", func(t *testing.T) {
		result, err := cal.FindConflict(mustDate("2024-06-03"), mustDate("2024-06-10"), []*model.Event{hackathon}, "")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.HasConflict).True()
		gt.Value(t, result.ConflictingEventName).Equal("Hackathon")
		gt.Value(t, result.ConflictingEvent.ID).Equal(model.EventID("ev-1"))
		gt.Value(t, result.NextAvailableDate).NotNil()
		gt.Value(t, cal.Format(*result.NextAvailableDate)).Equal("2024-06-06")
	})

	t.Run("touching boundary day is a conflict", func(t *testing.T) {
		result, err := cal.FindConflict(mustDate("2024-06-05"), mustDate("2024-06-05"), []*model.Event{hackathon}, "")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.HasConflict).True()
	})

	t.Run("disjoint range has no conflict", func(t *testing.T) {
		result, err := cal.FindConflict(mustDate("2024-06-06"), mustDate("2024-06-08"), []*model.Event{hackathon}, "")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.HasConflict).False()
		gt.Value(t, result.NextAvailableDate).Nil()
		gt.Value(t, result.ConflictingEvent).Nil()
	})

	t.Run("excluded event is ignored", func(t *testing.T) {
		result, err := cal.FindConflict(mustDate("2024-06-02"), mustDate("2024-06-03"), []*model.Event{hackathon}, "ev-1")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.HasConflict).False()
	})

	t.Run("inactive events are ignored", func(t *testing.T) {
		pending := newEvent(t, cal, "ev-2", "Pending", "2024-06-01", "2024-06-05", types.EventStatusPending)
		cancelled := newEvent(t, cal, "ev-3", "Cancelled", "2024-06-01", "2024-06-05", types.EventStatusCancelled)
		result, err := cal.FindConflict(mustDate("2024-06-02"), mustDate("2024-06-03"), []*model.Event{pending, cancelled}, "")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.HasConflict).False()
	})

	t.Run("first overlap wins", func(t *testing.T) {
		second := newEvent(t, cal, "ev-4", "Workshop", "2024-06-07", "2024-06-09", types.EventStatusInProgress)
		result, err := cal.FindConflict(mustDate("2024-06-04"), mustDate("2024-06-08"), []*model.Event{hackathon, second}, "")
		gt.NoError(t, err).Required()
		gt.Value(t, result.ConflictingEventName).Equal("Hackathon")
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		late := time.Date(2024, 6, 5, 23, 30, 0, 0, cal.Location())
		result, err := cal.FindConflict(late, late, []*model.Event{hackathon}, "")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.HasConflict).True()
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		_, err := cal.FindConflict(mustDate("2024-06-10"), mustDate("2024-06-03"), nil, "")
		gt.Error(t, err).Is(model.ErrInvalidDateRange)
	})

	t.Run("zero date is rejected", func(t *testing.T) {
		_, err := cal.FindConflict(time.Time{}, mustDate("2024-06-03"), nil, "")
		gt.Error(t, err).Is(model.ErrInvalidDate)
	})
}

func TestCalendarParseDate(t *testing.T) {
	cal := model.DefaultCalendar()

	d, err := cal.ParseDate("2024-06-01")
	gt.NoError(t, err).Required()
	gt.Value(t, cal.Format(d)).Equal("2024-06-01")

	// 2024-05-31T20:00Z is already June 1st in Asia/Kolkata
	d, err = cal.ParseDate("2024-05-31T20:00:00Z")
	gt.NoError(t, err).Required()
	gt.Value(t, cal.Format(d)).Equal("2024-06-01")

	_, err = cal.ParseDate("June first")
	gt.Error(t, err).Is(model.ErrInvalidDate)
}

func TestNewCalendarUnknownZone(t *testing.T) {
	_, err := model.NewCalendar("Not/AZone")
	gt.Value(t, err).NotNil()
}
