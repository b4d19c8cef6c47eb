package event

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// WorkingHours is the working-day bounds used to default absent end times
// and to classify all-day events. It is injected from configuration and
// read-only after startup.
type WorkingHours struct {
	Start civil.Time
	End   civil.Time
}

// DefaultWorkingHours is the standard 08:00-17:00 working day.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{
		Start: civil.Time{Hour: 8},
		End:   civil.Time{Hour: 17},
	}
}

// NullString is a string that may be absent. The zero value is absent.
type NullString struct {
	String string
	Valid  bool
}

// Event is one immutable calendar occurrence. Start and end are wall-clock
// values interpreted in the owning calendar's timezone. SeriesID is set iff
// the event was produced by a recurrence rule or copied from one.
type Event struct {
	Subject     string
	Start       civil.DateTime
	End         civil.DateTime
	Description NullString
	Location    NullString
	Public      bool
	SeriesID    uuid.NullUUID
}

// SameOccurrence reports whether two events describe the same occurrence:
// equal subject, start, and end. This equality, not field-for-field
// identity, drives duplicate detection and in-place replacement.
func (e Event) SameOccurrence(o Event) bool {
	return e.Subject == o.Subject && e.Start == o.Start && e.End == o.End
}

// Duration returns the wall-clock span between start and end.
func (e Event) Duration() time.Duration {
	return e.End.In(time.UTC).Sub(e.Start.In(time.UTC))
}

// IsAllDay reports whether the event spans exactly one working day.
func (e Event) IsAllDay(hours WorkingHours) bool {
	return e.Start.Date == e.End.Date &&
		e.Start.Time == hours.Start &&
		e.End.Time == hours.End
}

// Compare orders events by start, then end, then subject. The calendar's
// event sequence is sorted with this comparator.
func Compare(a, b Event) int {
	if c := CompareDateTime(a.Start, b.Start); c != 0 {
		return c
	}
	if c := CompareDateTime(a.End, b.End); c != 0 {
		return c
	}
	return strings.Compare(a.Subject, b.Subject)
}
