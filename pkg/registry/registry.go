package registry

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"github.com/agendo/agendo/pkg/calendar"
	"github.com/agendo/agendo/pkg/event"
)

// Registry owns the named calendars and orchestrates the operations that
// involve more than one of them: the single, same-day, and date-range copy
// forms. Calendars are only reached through their public operations.
type Registry struct {
	hours     event.WorkingHours
	calendars map[string]*calendar.Calendar
}

func New(hours event.WorkingHours) *Registry {
	return &Registry{
		hours:     hours,
		calendars: make(map[string]*calendar.Calendar),
	}
}

// WorkingHours returns the process-wide working-day bounds every calendar
// defaults against.
func (r *Registry) WorkingHours() event.WorkingHours {
	return r.hours
}

// CreateCalendar adds an empty calendar under a unique name.
func (r *Registry) CreateCalendar(name, zoneID string) (*calendar.Calendar, error) {
	if _, ok := r.calendars[name]; ok {
		return nil, event.Invalidf("calendar %q already exists", name)
	}
	cal, err := calendar.New(name, zoneID, r.hours)
	if err != nil {
		return nil, err
	}
	r.calendars[name] = cal
	return cal, nil
}

// Calendar looks up a calendar by name.
func (r *Registry) Calendar(name string) (*calendar.Calendar, error) {
	cal, ok := r.calendars[name]
	if !ok {
		return nil, event.Invalidf("no such calendar %q", name)
	}
	return cal, nil
}

func (r *Registry) HasCalendar(name string) bool {
	_, ok := r.calendars[name]
	return ok
}

// CalendarNames returns all calendar names in ascending order.
func (r *Registry) CalendarNames() []string {
	names := make([]string, 0, len(r.calendars))
	for name := range r.calendars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenameCalendar moves a calendar to a new unique name. The registry key
// and the calendar's own name change together or not at all.
func (r *Registry) RenameCalendar(oldName, newName string) error {
	cal, err := r.Calendar(oldName)
	if err != nil {
		return err
	}
	if _, ok := r.calendars[newName]; ok && newName != oldName {
		return event.Invalidf("calendar %q already exists", newName)
	}
	if err := cal.Rename(newName); err != nil {
		return err
	}
	delete(r.calendars, oldName)
	r.calendars[newName] = cal
	return nil
}

// ChangeTimezone reassigns a calendar's timezone, re-expressing its events.
func (r *Registry) ChangeTimezone(name, zoneID string) error {
	cal, err := r.Calendar(name)
	if err != nil {
		return err
	}
	return cal.SetZone(zoneID)
}

// CopyEvent copies the single occurrence matching subject and start from
// one calendar to another at a new start, preserving duration and every
// other field including series membership. Zero or several source matches
// is an error, as is a duplicate in the destination.
func (r *Registry) CopyEvent(fromName, subject string, start civil.DateTime, toName string, newStart civil.DateTime) (event.Event, error) {
	src, err := r.Calendar(fromName)
	if err != nil {
		return event.Event{}, err
	}
	dst, err := r.Calendar(toName)
	if err != nil {
		return event.Event{}, err
	}

	matches := src.FindEvents(subject, start)
	if len(matches) == 0 {
		return event.Event{}, event.Invalidf("no matching event to copy")
	}
	if len(matches) > 1 {
		return event.Event{}, event.Invalidf("ambiguous event to copy")
	}
	template := matches[0]
	newEnd := civil.DateTimeOf(newStart.In(time.UTC).Add(template.Duration()))
	return dst.CopyFrom(template, newStart, newEnd)
}

// CopyEventsOnDate copies every event on a source date onto a target date
// in another calendar. Each event's start instant is projected into the
// target calendar's zone and its projected time of day lands on the target
// date; duration is preserved. Candidates the destination should not take
// are skipped, not failed. Returns the number copied.
func (r *Registry) CopyEventsOnDate(fromName string, d civil.Date, toName string, targetDate civil.Date) (int, error) {
	src, err := r.Calendar(fromName)
	if err != nil {
		return 0, err
	}
	dst, err := r.Calendar(toName)
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, e := range src.EventsOnDate(d) {
		projected := event.ProjectInstant(e.Start, src.Location(), dst.Location())
		newStart := civil.DateTime{Date: targetDate, Time: projected.Time}
		if skipCopy(dst, e.Subject, newStart) {
			continue
		}
		newEnd := civil.DateTimeOf(newStart.In(time.UTC).Add(e.Duration()))
		if _, err := dst.CopyFrom(e, newStart, newEnd); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

// CopyEventsBetween copies every event overlapping the inclusive source
// date range into another calendar, preserving each event's day offset
// from the range start: an event N days into the range lands N days after
// the target start date (events that began before the range land before
// it). Time-of-day projection and skip rules match CopyEventsOnDate, so a
// partial series overlap copies just those occurrences under the original
// series identifier. Returns the number copied.
func (r *Registry) CopyEventsBetween(fromName string, startDate, endDate civil.Date, toName string, targetStartDate civil.Date) (int, error) {
	src, err := r.Calendar(fromName)
	if err != nil {
		return 0, err
	}
	dst, err := r.Calendar(toName)
	if err != nil {
		return 0, err
	}

	rangeStart := civil.DateTime{Date: startDate}
	rangeEnd := civil.DateTime{Date: endDate, Time: civil.Time{Hour: 23, Minute: 59, Second: 59}}

	copied := 0
	for _, e := range src.EventsInRange(rangeStart, rangeEnd) {
		offset := e.Start.Date.DaysSince(startDate)
		targetDay := targetStartDate.AddDays(offset)
		projected := event.ProjectInstant(e.Start, src.Location(), dst.Location())
		newStart := civil.DateTime{Date: targetDay, Time: projected.Time}
		if skipCopy(dst, e.Subject, newStart) {
			continue
		}
		newEnd := civil.DateTimeOf(newStart.In(time.UTC).Add(e.Duration()))
		if _, err := dst.CopyFrom(e, newStart, newEnd); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

// skipCopy reports whether a batch-copy candidate must be silently
// dropped: the destination already has an event with the same subject and
// start, or any event with the same subject touching the candidate's
// target date.
func skipCopy(dst *calendar.Calendar, subject string, newStart civil.DateTime) bool {
	if len(dst.FindEvents(subject, newStart)) > 0 {
		return true
	}
	for _, existing := range dst.EventsOnDate(newStart.Date) {
		if existing.Subject == subject {
			return true
		}
	}
	return false
}
