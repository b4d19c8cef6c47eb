package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/agendo/agendo/pkg/event"
)

// Calendar owns the ordered event sequence for one name and timezone pair.
// Events are kept sorted by (start, end, subject) with no two
// occurrence-equal events coexisting; the series index is maintained
// together with the sequence by every mutating operation. All date-times
// are wall-clock values interpreted in the calendar's zone.
type Calendar struct {
	name   string
	zoneID string
	loc    *time.Location
	hours  event.WorkingHours
	events []event.Event
	series *SeriesIndex
}

// New creates an empty calendar with the given name and IANA timezone.
func New(name, zoneID string, hours event.WorkingHours) (*Calendar, error) {
	if strings.TrimSpace(name) == "" {
		return nil, event.Invalidf("calendar name must not be blank")
	}
	loc, err := loadZone(zoneID)
	if err != nil {
		return nil, err
	}
	return &Calendar{
		name:   name,
		zoneID: zoneID,
		loc:    loc,
		hours:  hours,
		series: NewSeriesIndex(),
	}, nil
}

func loadZone(zoneID string) (*time.Location, error) {
	if strings.TrimSpace(zoneID) == "" {
		return nil, event.Invalidf("calendar timezone must not be blank")
	}
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return nil, event.Invalidf("unknown timezone %q", zoneID)
	}
	return loc, nil
}

func (c *Calendar) Name() string {
	return c.name
}

// Rename sets the calendar's display name. Uniqueness across calendars is
// the registry's concern.
func (c *Calendar) Rename(newName string) error {
	if strings.TrimSpace(newName) == "" {
		return event.Invalidf("calendar name must not be blank")
	}
	c.name = newName
	return nil
}

func (c *Calendar) ZoneID() string {
	return c.zoneID
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// SetZone reassigns the calendar's timezone. Every stored event keeps its
// absolute instant: its wall-clock values are re-expressed in the new zone,
// the sequence is re-sorted (cross-midnight shifts can reorder events) and
// the series index rebuilt. Setting the current zone is a no-op.
func (c *Calendar) SetZone(zoneID string) error {
	loc, err := loadZone(zoneID)
	if err != nil {
		return err
	}
	if zoneID == c.zoneID {
		return nil
	}

	converted := make([]event.Event, 0, len(c.events))
	for _, e := range c.events {
		moved, err := event.NewBuilder(c.hours).
			From(e).
			Start(event.ProjectInstant(e.Start, c.loc, loc)).
			End(event.ProjectInstant(e.End, c.loc, loc)).
			Build()
		if err != nil {
			return fmt.Errorf("failed to convert event %q to zone %s: %w", e.Subject, zoneID, err)
		}
		converted = append(converted, moved)
	}
	slices.SortFunc(converted, event.Compare)

	c.events = converted
	c.zoneID = zoneID
	c.loc = loc
	c.series.Rebuild(converted)
	return nil
}

// CreateEvent adds a single event. A zero end means "absent" and resolves
// to the working-day end on the start's date before the duplicate check.
func (c *Calendar) CreateEvent(subject string, start, end civil.DateTime) (event.Event, error) {
	e, err := event.NewBuilder(c.hours).
		Subject(subject).
		Start(start).
		End(end).
		Build()
	if err != nil {
		return event.Event{}, err
	}
	return c.AddEvent(e)
}

// AddEvent validates and inserts a pre-assembled event, rejecting an
// occurrence-equal duplicate. A series identifier carried on the event is
// registered in this calendar's index.
func (c *Calendar) AddEvent(e event.Event) (event.Event, error) {
	built, err := event.NewBuilder(c.hours).From(e).Build()
	if err != nil {
		return event.Event{}, err
	}
	if c.containsOccurrence(built.Subject, built.Start, built.End) {
		return event.Event{}, event.Invalidf("event with the same subject, start and end already exists")
	}
	c.insertEvent(built)
	if built.SeriesID.Valid {
		c.series.Add(built.SeriesID.UUID, built.Start)
	}
	return built, nil
}

// CreateEventSeries creates a weekly recurring series with a fixed number
// of occurrences on the given weekdays.
func (c *Calendar) CreateEventSeries(subject string, start, end civil.DateTime, weekdays []time.Weekday, occurrences int) ([]event.Event, error) {
	if occurrences <= 0 {
		return nil, event.Invalidf("occurrence count must be positive")
	}
	return c.generateSeries(subject, start, end, weekdays, occurrences, civil.Date{})
}

// CreateEventSeriesUntil creates a weekly recurring series running through
// an inclusive end date. An end date before the start date yields no
// events and no error.
func (c *Calendar) CreateEventSeriesUntil(subject string, start, end civil.DateTime, weekdays []time.Weekday, until civil.Date) ([]event.Event, error) {
	if until == (civil.Date{}) {
		return nil, event.Invalidf("series end date is required")
	}
	return c.generateSeries(subject, start, end, weekdays, 0, until)
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// generateSeries walks candidate days from the template start's date via an
// unbounded weekly recurrence rule over the weekday set. A candidate that
// would collide with an existing occurrence-equal event is skipped silently
// and does not count toward maxOccurrences. A maxOccurrences of zero means
// unbounded (the until date terminates instead).
func (c *Calendar) generateSeries(subject string, start, end civil.DateTime, weekdays []time.Weekday, maxOccurrences int, until civil.Date) ([]event.Event, error) {
	template, err := event.NewBuilder(c.hours).
		Subject(subject).
		Start(start).
		End(end).
		Build()
	if err != nil {
		return nil, err
	}
	if template.Start.Date != template.End.Date {
		return nil, event.Invalidf("series events must start and end on the same day")
	}
	if len(weekdays) == 0 {
		return nil, event.Invalidf("weekday set must not be empty")
	}

	byWeekday := make([]rrule.Weekday, 0, len(weekdays))
	for _, day := range weekdays {
		byWeekday = append(byWeekday, rruleWeekdays[day])
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   template.Start.Date.In(time.UTC),
		Byweekday: byWeekday,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	seriesID := uuid.New()
	var created []event.Event
	next := rule.Iterator()
	for {
		candidate, ok := next()
		if !ok {
			break
		}
		day := civil.DateOf(candidate)
		if until != (civil.Date{}) && day.After(until) {
			break
		}
		occStart := civil.DateTime{Date: day, Time: template.Start.Time}
		occEnd := civil.DateTime{Date: day, Time: template.End.Time}
		if c.containsOccurrence(template.Subject, occStart, occEnd) {
			continue
		}
		e, err := event.NewBuilder(c.hours).
			From(template).
			Start(occStart).
			End(occEnd).
			SeriesID(seriesID).
			Build()
		if err != nil {
			return nil, err
		}
		c.insertEvent(e)
		c.series.Add(seriesID, e.Start)
		created = append(created, e)
		if maxOccurrences > 0 && len(created) >= maxOccurrences {
			break
		}
	}
	return created, nil
}

// FindEvents returns events with the exact subject and start.
func (c *Calendar) FindEvents(subject string, start civil.DateTime) []event.Event {
	var matches []event.Event
	for i := c.firstIndexAtOrAfter(start); i < len(c.events); i++ {
		e := c.events[i]
		if event.CompareDateTime(e.Start, start) != 0 {
			break
		}
		if e.Subject == subject {
			matches = append(matches, e)
		}
	}
	return matches
}

// FindEventsWithEnd narrows FindEvents with an exact end match.
func (c *Calendar) FindEventsWithEnd(subject string, start, end civil.DateTime) []event.Event {
	var matches []event.Event
	for _, e := range c.FindEvents(subject, start) {
		if e.End == end {
			matches = append(matches, e)
		}
	}
	return matches
}

// EditEvent changes one property of the single event located by exact
// subject and start. Zero or several matches is an error, as is an edit
// that would collide with a different existing event.
func (c *Calendar) EditEvent(subject string, start civil.DateTime, property event.Property, value string) error {
	target, err := c.findTarget(subject, start)
	if err != nil {
		return err
	}
	return c.applyReplace(target, property, value)
}

// EditEventsFromStart applies an edit to the located occurrence and, when
// it belongs to a series, to every member of that series starting at or
// after it. A START edit splits the series: the selected occurrences move
// to a freshly generated identifier, each keeping its own calendar date at
// the new time of day with its time-of-day span preserved; earlier
// occurrences keep the original identifier.
func (c *Calendar) EditEventsFromStart(subject string, start civil.DateTime, property event.Property, value string) error {
	pivot, err := c.findTarget(subject, start)
	if err != nil {
		return err
	}
	if !pivot.SeriesID.Valid {
		return c.applyReplace(pivot, property, value)
	}

	seriesID := pivot.SeriesID.UUID
	var selected []event.Event
	for _, e := range c.events {
		if e.SeriesID.Valid && e.SeriesID.UUID == seriesID && !e.Start.Before(start) {
			selected = append(selected, e)
		}
	}

	if property != event.PropertyStart {
		for _, e := range selected {
			if err := c.applyReplace(e, property, value); err != nil {
				return err
			}
		}
		return nil
	}

	template, err := event.ParseDateTime(value)
	if err != nil {
		return err
	}
	newID := uuid.New()
	for _, e := range selected {
		span := timeOfDaySpan(e)
		adjustedStart := civil.DateTime{Date: e.Start.Date, Time: template.Time}
		adjustedEnd := civil.DateTimeOf(adjustedStart.In(time.UTC).Add(span))
		updated, err := event.NewBuilder(c.hours).
			From(e).
			Start(adjustedStart).
			End(adjustedEnd).
			SeriesID(newID).
			Build()
		if err != nil {
			return err
		}
		if err := c.checkReplaceDuplicate(e, updated); err != nil {
			return err
		}
		c.replaceEvent(e, updated)
	}
	return nil
}

// EditSeries applies an edit to every member of the located occurrence's
// series, resolved through the series index. START edits shift each member
// to its own date at the new time of day preserving its full duration; the
// series identifier never changes here.
func (c *Calendar) EditSeries(subject string, start civil.DateTime, property event.Property, value string) error {
	target, err := c.findTarget(subject, start)
	if err != nil {
		return err
	}
	if !target.SeriesID.Valid {
		return c.applyReplace(target, property, value)
	}

	members := c.eventsBySeries(target.SeriesID.UUID)

	if property != event.PropertyStart {
		for _, e := range members {
			if err := c.applyReplace(e, property, value); err != nil {
				return err
			}
		}
		return nil
	}

	template, err := event.ParseDateTime(value)
	if err != nil {
		return err
	}
	for _, e := range members {
		duration := e.Duration()
		newStart := civil.DateTime{Date: e.Start.Date, Time: template.Time}
		newEnd := civil.DateTimeOf(newStart.In(time.UTC).Add(duration))
		updated, err := event.NewBuilder(c.hours).
			From(e).
			Start(newStart).
			End(newEnd).
			Build()
		if err != nil {
			return err
		}
		if err := c.checkReplaceDuplicate(e, updated); err != nil {
			return err
		}
		c.replaceEvent(e, updated)
	}
	return nil
}

// EventsOnDate returns events whose [start, end] interval overlaps the day.
func (c *Calendar) EventsOnDate(d civil.Date) []event.Event {
	dayStart := civil.DateTime{Date: d}
	nextMidnight := civil.DateTime{Date: d.AddDays(1)}

	var result []event.Event
	for _, e := range c.events {
		if e.Start.After(nextMidnight) {
			break
		}
		if !e.End.Before(dayStart) && e.Start.Before(nextMidnight) {
			result = append(result, e)
		}
	}
	return result
}

// EventsInRange returns events whose interval overlaps [start, end], both
// bounds inclusive.
func (c *Calendar) EventsInRange(start, end civil.DateTime) []event.Event {
	var result []event.Event
	for _, e := range c.events {
		if e.Start.After(end) {
			break
		}
		if !e.End.Before(start) {
			result = append(result, e)
		}
	}
	return result
}

// IsBusyAt reports whether some event covers the instant. Coverage is
// start-inclusive and end-exclusive: an event ending exactly at the
// queried time does not make it busy.
func (c *Calendar) IsBusyAt(dt civil.DateTime) bool {
	for _, e := range c.events {
		if e.Start.After(dt) {
			break
		}
		if !dt.Before(e.Start) && dt.Before(e.End) {
			return true
		}
	}
	return false
}

// Events returns a copy of the full ordered event sequence.
func (c *Calendar) Events() []event.Event {
	return slices.Clone(c.events)
}

// CopyFrom accepts an event copied from another calendar at new times,
// keeping every other template field. Series membership crosses calendars
// by identifier reuse: the template's identifier, if any, is registered in
// this calendar's own index rather than re-derived.
func (c *Calendar) CopyFrom(template event.Event, newStart, newEnd civil.DateTime) (event.Event, error) {
	template.Start = newStart
	template.End = newEnd
	return c.AddEvent(template)
}

func (c *Calendar) insertEvent(e event.Event) {
	pos, _ := slices.BinarySearchFunc(c.events, e, event.Compare)
	c.events = slices.Insert(c.events, pos, e)
}

// firstIndexAtOrAfter returns the position of the first event whose start
// is not before the given value.
func (c *Calendar) firstIndexAtOrAfter(start civil.DateTime) int {
	pos, _ := slices.BinarySearchFunc(c.events, start, func(e event.Event, target civil.DateTime) int {
		return event.CompareDateTime(e.Start, target)
	})
	return pos
}

func (c *Calendar) containsOccurrence(subject string, start, end civil.DateTime) bool {
	for i := c.firstIndexAtOrAfter(start); i < len(c.events); i++ {
		e := c.events[i]
		if event.CompareDateTime(e.Start, start) != 0 {
			break
		}
		if e.Subject == subject && e.End == end {
			return true
		}
	}
	return false
}

func (c *Calendar) indexOfOccurrence(e event.Event) int {
	for i := c.firstIndexAtOrAfter(e.Start); i < len(c.events); i++ {
		stored := c.events[i]
		if event.CompareDateTime(stored.Start, e.Start) != 0 {
			break
		}
		if stored.SameOccurrence(e) {
			return i
		}
	}
	return -1
}

func (c *Calendar) findTarget(subject string, start civil.DateTime) (event.Event, error) {
	matches := c.FindEvents(subject, start)
	if len(matches) == 0 {
		return event.Event{}, event.Invalidf("no event matches subject %q at %s", subject, start)
	}
	if len(matches) > 1 {
		return event.Event{}, event.Invalidf("multiple events match subject %q at %s", subject, start)
	}
	return matches[0], nil
}

// applyReplace edits one property of a stored event and swaps the result
// into the sequence.
func (c *Calendar) applyReplace(target event.Event, property event.Property, value string) error {
	updated, err := event.Apply(target, property, value, c.hours)
	if err != nil {
		return err
	}
	if err := c.checkReplaceDuplicate(target, updated); err != nil {
		return err
	}
	c.replaceEvent(target, updated)
	return nil
}

// checkReplaceDuplicate rejects a replacement whose result would be
// occurrence-equal to a different existing event. Replacing an event with
// an occurrence-equal version of itself is allowed.
func (c *Calendar) checkReplaceDuplicate(current, updated event.Event) error {
	if current.SameOccurrence(updated) {
		return nil
	}
	if c.containsOccurrence(updated.Subject, updated.Start, updated.End) {
		return event.Invalidf("edit would create a duplicate event")
	}
	return nil
}

// replaceEvent removes the stored occurrence equal to old and inserts
// updated at its sorted position, keeping the series index in step. A
// stale old value that is no longer stored is a no-op.
func (c *Calendar) replaceEvent(old, updated event.Event) {
	pos := c.indexOfOccurrence(old)
	if pos < 0 {
		return
	}
	c.events = slices.Delete(c.events, pos, pos+1)
	c.insertEvent(updated)

	if old.SeriesID == updated.SeriesID {
		if old.SeriesID.Valid {
			c.series.ReplaceStart(old.SeriesID.UUID, old.Start, updated.Start)
		}
		return
	}
	if old.SeriesID.Valid {
		c.series.Remove(old.SeriesID.UUID, old.Start)
	}
	if updated.SeriesID.Valid {
		c.series.Add(updated.SeriesID.UUID, updated.Start)
	}
}

// eventsBySeries resolves the members of a series through the index.
func (c *Calendar) eventsBySeries(id uuid.UUID) []event.Event {
	starts := c.series.Starts(id)
	members := make([]event.Event, 0, len(starts))
	for _, s := range starts {
		for i := c.firstIndexAtOrAfter(s); i < len(c.events); i++ {
			e := c.events[i]
			if event.CompareDateTime(e.Start, s) != 0 {
				break
			}
			if e.SeriesID.Valid && e.SeriesID.UUID == id {
				members = append(members, e)
				break
			}
		}
	}
	return members
}

// timeOfDaySpan is the span between an event's start and end times of day,
// ignoring dates. It goes negative when the end time of day is earlier
// than the start's.
func timeOfDaySpan(e event.Event) time.Duration {
	return timeOfDay(e.End.Time) - timeOfDay(e.Start.Time)
}

func timeOfDay(t civil.Time) time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second +
		time.Duration(t.Nanosecond)
}
