package registry

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendo/agendo/pkg/event"
)

func dt(year int, month time.Month, day, hour, minute int) civil.DateTime {
	return civil.DateTime{
		Date: civil.Date{Year: year, Month: month, Day: day},
		Time: civil.Time{Hour: hour, Minute: minute},
	}
}

func date(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: day}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(event.DefaultWorkingHours())
}

func seedCalendar(t *testing.T, reg *Registry, name, zoneID string) {
	t.Helper()
	_, err := reg.CreateCalendar(name, zoneID)
	require.NoError(t, err)
}

func seedEvent(t *testing.T, reg *Registry, calName, subject string, start, end civil.DateTime) event.Event {
	t.Helper()
	cal, err := reg.Calendar(calName)
	require.NoError(t, err)
	e, err := cal.CreateEvent(subject, start, end)
	require.NoError(t, err)
	return e
}

func TestRegistry_CreateCalendar(t *testing.T) {
	t.Run("creates and lists calendars sorted by name", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "work", "America/New_York")
		seedCalendar(t, reg, "personal", "Europe/Warsaw")

		assert.Equal(t, []string{"personal", "work"}, reg.CalendarNames())
		assert.True(t, reg.HasCalendar("work"))
		assert.False(t, reg.HasCalendar("school"))
	})

	t.Run("rejects a duplicate name", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "work", "America/New_York")

		_, err := reg.CreateCalendar("work", "Europe/Warsaw")
		var invalidOp *event.InvalidOperationError
		require.ErrorAs(t, err, &invalidOp)
		assert.Contains(t, invalidOp.Reason, "already exists")
	})

	t.Run("rejects an unknown timezone", func(t *testing.T) {
		reg := newTestRegistry(t)
		_, err := reg.CreateCalendar("work", "Moon/Tranquility")
		require.Error(t, err)
		assert.False(t, reg.HasCalendar("work"))
	})
}

func TestRegistry_RenameCalendar(t *testing.T) {
	t.Run("renames atomically", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "work", "America/New_York")

		require.NoError(t, reg.RenameCalendar("work", "office"))

		assert.False(t, reg.HasCalendar("work"))
		cal, err := reg.Calendar("office")
		require.NoError(t, err)
		assert.Equal(t, "office", cal.Name())
	})

	t.Run("rejects a collision and keeps both calendars intact", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "work", "America/New_York")
		seedCalendar(t, reg, "office", "Europe/Warsaw")

		err := reg.RenameCalendar("work", "office")
		require.Error(t, err)

		cal, err := reg.Calendar("work")
		require.NoError(t, err)
		assert.Equal(t, "work", cal.Name())
		assert.True(t, reg.HasCalendar("office"))
	})

	t.Run("renaming to the current name is allowed", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "work", "America/New_York")

		require.NoError(t, reg.RenameCalendar("work", "work"))
		assert.True(t, reg.HasCalendar("work"))
	})

	t.Run("rejects a blank name without losing the calendar", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "work", "America/New_York")

		err := reg.RenameCalendar("work", "   ")
		require.Error(t, err)
		assert.True(t, reg.HasCalendar("work"))
	})

	t.Run("errors for an unknown calendar", func(t *testing.T) {
		reg := newTestRegistry(t)
		err := reg.RenameCalendar("work", "office")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no such calendar")
	})
}

func TestRegistry_ChangeTimezone(t *testing.T) {
	t.Run("re-expresses stored events in the new zone", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "work", "America/New_York")
		seedEvent(t, reg, "work", "Call", dt(2025, 11, 10, 14, 0), dt(2025, 11, 10, 15, 0))

		// Honolulu is five hours behind New York that week.
		require.NoError(t, reg.ChangeTimezone("work", "Pacific/Honolulu"))

		cal, err := reg.Calendar("work")
		require.NoError(t, err)
		events := cal.Events()
		require.Len(t, events, 1)
		assert.Equal(t, dt(2025, 11, 10, 9, 0), events[0].Start)
		assert.Equal(t, dt(2025, 11, 10, 10, 0), events[0].End)
	})

	t.Run("errors for an unknown calendar", func(t *testing.T) {
		reg := newTestRegistry(t)
		require.Error(t, reg.ChangeTimezone("work", "Europe/Warsaw"))
	})
}

func TestRegistry_CopyEvent(t *testing.T) {
	t.Run("copies with preserved duration and fields", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")
		seedCalendar(t, reg, "target", "America/New_York")
		seedEvent(t, reg, "source", "Team Meeting", dt(2025, 11, 10, 9, 0), dt(2025, 11, 10, 10, 30))
		src, _ := reg.Calendar("source")
		require.NoError(t, src.EditEvent("Team Meeting", dt(2025, 11, 10, 9, 0), event.PropertyLocation, "Room 12"))
		require.NoError(t, src.EditEvent("Team Meeting", dt(2025, 11, 10, 9, 0), event.PropertyVisibility, "private"))

		copied, err := reg.CopyEvent("source", "Team Meeting", dt(2025, 11, 10, 9, 0), "target", dt(2025, 11, 15, 14, 0))
		require.NoError(t, err)

		assert.Equal(t, dt(2025, 11, 15, 14, 0), copied.Start)
		assert.Equal(t, dt(2025, 11, 15, 15, 30), copied.End)
		assert.Equal(t, "Room 12", copied.Location.String)
		assert.False(t, copied.Public)

		dst, _ := reg.Calendar("target")
		assert.Len(t, dst.Events(), 1)
	})

	t.Run("errors when nothing matches", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")
		seedCalendar(t, reg, "target", "America/New_York")

		_, err := reg.CopyEvent("source", "Team Meeting", dt(2025, 11, 10, 9, 0), "target", dt(2025, 11, 15, 14, 0))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no matching event to copy")
	})

	t.Run("errors when several events match", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")
		seedCalendar(t, reg, "target", "America/New_York")
		seedEvent(t, reg, "source", "Meeting", dt(2025, 11, 10, 9, 0), dt(2025, 11, 10, 10, 0))
		seedEvent(t, reg, "source", "Meeting", dt(2025, 11, 10, 9, 0), dt(2025, 11, 10, 11, 0))

		_, err := reg.CopyEvent("source", "Meeting", dt(2025, 11, 10, 9, 0), "target", dt(2025, 11, 15, 14, 0))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ambiguous event to copy")
	})

	t.Run("propagates a destination duplicate", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")
		seedCalendar(t, reg, "target", "America/New_York")
		seedEvent(t, reg, "source", "Meeting", dt(2025, 11, 10, 9, 0), dt(2025, 11, 10, 10, 0))
		seedEvent(t, reg, "target", "Meeting", dt(2025, 11, 15, 14, 0), dt(2025, 11, 15, 15, 0))

		_, err := reg.CopyEvent("source", "Meeting", dt(2025, 11, 10, 9, 0), "target", dt(2025, 11, 15, 14, 0))
		var invalidOp *event.InvalidOperationError
		require.ErrorAs(t, err, &invalidOp)
	})
}

func TestRegistry_CopyEventsOnDate(t *testing.T) {
	t.Run("projects times into the target zone on the target date", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")
		seedCalendar(t, reg, "target", "Europe/Warsaw")
		seedEvent(t, reg, "source", "Sync", dt(2025, 11, 10, 9, 0), dt(2025, 11, 10, 10, 0))
		seedEvent(t, reg, "source", "Late Call", dt(2025, 11, 10, 23, 0), dt(2025, 11, 10, 23, 30))

		copied, err := reg.CopyEventsOnDate("source", date(2025, 11, 10), "target", date(2025, 12, 1))
		require.NoError(t, err)
		assert.Equal(t, 2, copied)

		dst, _ := reg.Calendar("target")
		events := dst.Events()
		require.Len(t, events, 2)
		// 23:00 New York is 05:00 next day in Warsaw; only the time of day
		// carries over, the date stays the target date.
		assert.Equal(t, dt(2025, 12, 1, 5, 0), events[0].Start)
		assert.Equal(t, "Late Call", events[0].Subject)
		assert.Equal(t, dt(2025, 12, 1, 15, 0), events[1].Start)
		assert.Equal(t, dt(2025, 12, 1, 16, 0), events[1].End)
	})

	t.Run("skips candidates whose subject already occupies the target day", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")
		seedCalendar(t, reg, "target", "America/New_York")
		seedEvent(t, reg, "source", "Standup", dt(2025, 11, 10, 9, 0), dt(2025, 11, 10, 9, 30))
		seedEvent(t, reg, "source", "Lunch", dt(2025, 11, 10, 12, 0), dt(2025, 11, 10, 13, 0))
		seedEvent(t, reg, "target", "Standup", dt(2025, 12, 1, 20, 0), dt(2025, 12, 1, 21, 0))

		copied, err := reg.CopyEventsOnDate("source", date(2025, 11, 10), "target", date(2025, 12, 1))
		require.NoError(t, err)
		assert.Equal(t, 1, copied)

		dst, _ := reg.Calendar("target")
		events := dst.Events()
		require.Len(t, events, 2)
		assert.Equal(t, "Lunch", events[0].Subject)
	})

	t.Run("errors for an unknown calendar", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")

		_, err := reg.CopyEventsOnDate("source", date(2025, 11, 10), "target", date(2025, 12, 1))
		require.Error(t, err)
	})
}

func TestRegistry_CopyEventsBetween(t *testing.T) {
	t.Run("copies the occurrences inside the range with their day offsets", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")
		seedCalendar(t, reg, "target", "America/New_York")
		src, _ := reg.Calendar("source")
		series, err := src.CreateEventSeries("MWF Class",
			dt(2025, 11, 10, 9, 0), dt(2025, 11, 10, 10, 0),
			[]time.Weekday{time.Monday, time.Wednesday, time.Friday}, 5)
		require.NoError(t, err)
		require.Len(t, series, 5)

		copied, err := reg.CopyEventsBetween("source", date(2025, 11, 12), date(2025, 11, 18), "target", date(2025, 12, 1))
		require.NoError(t, err)
		assert.Equal(t, 3, copied)

		dst, _ := reg.Calendar("target")
		events := dst.Events()
		require.Len(t, events, 3)
		assert.Equal(t, date(2025, 12, 1), events[0].Start.Date)
		assert.Equal(t, date(2025, 12, 3), events[1].Start.Date)
		assert.Equal(t, date(2025, 12, 6), events[2].Start.Date)
		for _, e := range events {
			assert.Equal(t, series[0].SeriesID, e.SeriesID, "partial copy keeps the original series identifier")
			assert.Equal(t, 9, e.Start.Time.Hour)
			assert.Equal(t, 10, e.End.Time.Hour)
		}
	})

	t.Run("an event starting before the range lands before the target date", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")
		seedCalendar(t, reg, "target", "America/New_York")
		seedEvent(t, reg, "source", "Conference", dt(2025, 11, 9, 9, 0), dt(2025, 11, 13, 17, 0))

		copied, err := reg.CopyEventsBetween("source", date(2025, 11, 12), date(2025, 11, 18), "target", date(2025, 12, 1))
		require.NoError(t, err)
		assert.Equal(t, 1, copied)

		dst, _ := reg.Calendar("target")
		events := dst.Events()
		require.Len(t, events, 1)
		assert.Equal(t, dt(2025, 11, 28, 9, 0), events[0].Start)
	})

	t.Run("keeps wall-clock time across a spring-forward boundary", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")
		seedCalendar(t, reg, "target", "America/New_York")
		seedEvent(t, reg, "source", "Spring Forward Event", dt(2025, 3, 9, 1, 30), dt(2025, 3, 9, 2, 30))

		copied, err := reg.CopyEventsBetween("source", date(2025, 3, 9), date(2025, 3, 9), "target", date(2025, 3, 16))
		require.NoError(t, err)
		assert.Equal(t, 1, copied)

		dst, _ := reg.Calendar("target")
		assert.Equal(t, dt(2025, 3, 16, 1, 30), dst.Events()[0].Start)
	})

	t.Run("skips subjects already present on the computed target day", func(t *testing.T) {
		reg := newTestRegistry(t)
		seedCalendar(t, reg, "source", "America/New_York")
		seedCalendar(t, reg, "target", "America/New_York")
		seedEvent(t, reg, "source", "Standup", dt(2025, 11, 12, 9, 0), dt(2025, 11, 12, 9, 30))
		seedEvent(t, reg, "source", "Review", dt(2025, 11, 13, 15, 0), dt(2025, 11, 13, 16, 0))
		seedEvent(t, reg, "target", "Standup", dt(2025, 12, 1, 11, 0), dt(2025, 12, 1, 11, 30))

		copied, err := reg.CopyEventsBetween("source", date(2025, 11, 12), date(2025, 11, 18), "target", date(2025, 12, 1))
		require.NoError(t, err)
		assert.Equal(t, 1, copied)

		dst, _ := reg.Calendar("target")
		events := dst.Events()
		require.Len(t, events, 2)
		assert.Equal(t, dt(2025, 12, 2, 15, 0), events[1].Start)
	})
}
