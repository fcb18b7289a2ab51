package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultTimezone is the zone all event dates are compared in
	DefaultTimezone = "Asia/Kolkata"

	// DateLayout is the day-granularity wire format for event dates
	DateLayout = "2006-01-02"
)

// istZone is used when the tz database is unavailable on the host
var istZone = time.FixedZone("IST", 5*60*60+30*60)

// Calendar normalizes timestamps to midnight in a single fixed timezone
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a Calendar for the named IANA zone
func NewCalendar(name string) (*Calendar, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultTimezone {
			return &Calendar{loc: istZone}, nil
		}
		return nil, goerr.Wrap(err, "failed to load timezone", goerr.V("timezone", name))
	}
	return &Calendar{loc: loc}, nil
}

// DefaultCalendar returns a Calendar in DefaultTimezone
func DefaultCalendar() *Calendar {
	cal, _ := NewCalendar(DefaultTimezone)
	return cal
}

// Location returns the calendar's timezone
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Day truncates t to midnight of its calendar day in the calendar's zone
func (c *Calendar) Day(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// ParseDate accepts "2006-01-02" (interpreted in the calendar's zone) or RFC3339
func (c *Calendar) ParseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, s, c.loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(ErrInvalidDate, "unparseable date", goerr.V("value", s))
	}
	return t, nil
}

// Format renders t as a day in the calendar's zone
func (c *Calendar) Format(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// DateConflict is the outcome of checking a proposed date range against the calendar
type DateConflict struct {
	HasConflict          bool
	NextAvailableDate    *time.Time
	ConflictingEvent     *Event
	ConflictingEventName string
}

// FindConflict scans events for the first active one whose day range overlaps [start, end].
// Ranges are closed intervals at day granularity. The event with excludeID is ignored so an
// event can be re-checked against everything but itself.
func (c *Calendar) FindConflict(start, end time.Time, events []*Event, excludeID EventID) (*DateConflict, error) {
	if start.IsZero() || end.IsZero() {
		return nil, goerr.Wrap(ErrInvalidDate, "start and end dates are required",
			goerr.V(StartKey, start), goerr.V(EndKey, end))
	}

	proposedStart := c.Day(start)
	proposedEnd := c.Day(end)
	if proposedEnd.Before(proposedStart) {
		return nil, goerr.Wrap(ErrInvalidDateRange, "end date is before start date",
			goerr.V(StartKey, c.Format(proposedStart)), goerr.V(EndKey, c.Format(proposedEnd)))
	}

	for _, ev := range events {
		if ev == nil || !ev.Status.IsActive() {
			continue
		}
		if excludeID != "" && ev.ID == excludeID {
			continue
		}
		if ev.Details.Date.Start.IsZero() || ev.Details.Date.End.IsZero() {
			continue
		}

		existingStart := c.Day(ev.Details.Date.Start)
		existingEnd := c.Day(ev.Details.Date.End)

		if !proposedStart.After(existingEnd) && !proposedEnd.Before(existingStart) {
			next := existingEnd.AddDate(0, 0, 1)
			return &DateConflict{
				HasConflict:          true,
				NextAvailableDate:    &next,
				ConflictingEvent:     ev,
				ConflictingEventName: ev.Details.EventName,
			}, nil
		}
	}

	return &DateConflict{}, nil
}
