package registry

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	log "github.com/sirupsen/logrus"

	"github.com/agendo/agendo/internal/event_bus"
	"github.com/agendo/agendo/pkg/event"
	"github.com/agendo/agendo/pkg/export"
)

// Edit scope tokens accepted by EditEvents.
const (
	ScopeSingle    = "single"
	ScopeFromStart = "fromStart"
	ScopeSeries    = "series"
)

// CalendarInfo is the registry-level view of one calendar.
type CalendarInfo struct {
	Name     string
	Timezone string
}

// EventInput carries the fields accepted when creating a single event. A
// zero End means absent; empty Description and Location mean absent.
type EventInput struct {
	Subject     string
	Start       civil.DateTime
	End         civil.DateTime
	Description string
	Location    string
	Public      bool
}

// SeriesInput carries the fields for a weekly series. A zero Until selects
// the fixed-occurrence-count form.
type SeriesInput struct {
	Subject     string
	Start       civil.DateTime
	End         civil.DateTime
	Weekdays    []time.Weekday
	Occurrences int
	Until       civil.Date
}

type Service interface {
	CreateCalendar(ctx context.Context, name, timezone string) (CalendarInfo, error)
	ListCalendars(ctx context.Context) []CalendarInfo
	RenameCalendar(ctx context.Context, oldName, newName string) (CalendarInfo, error)
	ChangeTimezone(ctx context.Context, name, timezone string) (CalendarInfo, error)

	CreateEvent(ctx context.Context, calendarName string, input EventInput) (event.Event, error)
	CreateSeries(ctx context.Context, calendarName string, input SeriesInput) ([]event.Event, error)
	EditEvents(ctx context.Context, calendarName, subject string, start civil.DateTime, property, value, scope string) error
	FindEvents(ctx context.Context, calendarName, subject string, start, end civil.DateTime) ([]event.Event, error)
	EventsOnDate(ctx context.Context, calendarName string, d civil.Date) ([]event.Event, error)
	EventsInRange(ctx context.Context, calendarName string, from, to civil.DateTime) ([]event.Event, error)
	IsBusyAt(ctx context.Context, calendarName string, at civil.DateTime) (bool, error)
	ExportSnapshot(ctx context.Context, calendarName string) (export.Snapshot, error)

	CopyEvent(ctx context.Context, from, to, subject string, start, targetStart civil.DateTime) (event.Event, error)
	CopyDay(ctx context.Context, from, to string, d, targetDate civil.Date) (int, error)
	CopyRange(ctx context.Context, from, to string, startDate, endDate, targetStartDate civil.Date) (int, error)
}

// ServiceImpl serializes all engine access behind one mutex and publishes
// a domain notification after every successful mutation. The engine itself
// is single-threaded; this lock is the only concurrency control.
type ServiceImpl struct {
	mu  sync.Mutex
	reg *Registry
	bus *event_bus.EventBus
}

func NewService(reg *Registry, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{reg: reg, bus: bus}
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, payload any) {
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, payload)); err != nil {
		log.Warnf("failed to publish %s notification: %v", eventType, err)
	}
}

func (s *ServiceImpl) CreateCalendar(ctx context.Context, name, timezone string) (CalendarInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Debugf("Creating calendar %s in zone %s", name, timezone)
	cal, err := s.reg.CreateCalendar(name, timezone)
	if err != nil {
		return CalendarInfo{}, err
	}
	s.publish(ctx, "calendar.created", event_bus.CalendarCreated{Name: cal.Name(), Timezone: cal.ZoneID()})
	return CalendarInfo{Name: cal.Name(), Timezone: cal.ZoneID()}, nil
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) []CalendarInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := s.reg.CalendarNames()
	infos := make([]CalendarInfo, 0, len(names))
	for _, name := range names {
		cal, err := s.reg.Calendar(name)
		if err != nil {
			continue
		}
		infos = append(infos, CalendarInfo{Name: cal.Name(), Timezone: cal.ZoneID()})
	}
	return infos
}

func (s *ServiceImpl) RenameCalendar(ctx context.Context, oldName, newName string) (CalendarInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reg.RenameCalendar(oldName, newName); err != nil {
		return CalendarInfo{}, err
	}
	cal, err := s.reg.Calendar(newName)
	if err != nil {
		return CalendarInfo{}, err
	}
	s.publish(ctx, "calendar.renamed", event_bus.CalendarRenamed{OldName: oldName, NewName: newName})
	return CalendarInfo{Name: cal.Name(), Timezone: cal.ZoneID()}, nil
}

func (s *ServiceImpl) ChangeTimezone(ctx context.Context, name, timezone string) (CalendarInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reg.ChangeTimezone(name, timezone); err != nil {
		return CalendarInfo{}, err
	}
	s.publish(ctx, "calendar.timezone.changed", event_bus.CalendarTimezoneChanged{Name: name, Timezone: timezone})
	return CalendarInfo{Name: name, Timezone: timezone}, nil
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, calendarName string, input EventInput) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.reg.Calendar(calendarName)
	if err != nil {
		return event.Event{}, err
	}

	template := event.Event{
		Subject: input.Subject,
		Start:   input.Start,
		End:     input.End,
		Public:  input.Public,
	}
	if input.Description != "" {
		template.Description = event.NullString{String: input.Description, Valid: true}
	}
	if input.Location != "" {
		template.Location = event.NullString{String: input.Location, Valid: true}
	}

	created, err := cal.AddEvent(template)
	if err != nil {
		return event.Event{}, err
	}
	s.publish(ctx, "calendar.event.created", event_bus.EventCreated{
		Calendar: calendarName,
		Subject:  created.Subject,
		Start:    created.Start,
		End:      created.End,
	})
	return created, nil
}

func (s *ServiceImpl) CreateSeries(ctx context.Context, calendarName string, input SeriesInput) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.reg.Calendar(calendarName)
	if err != nil {
		return nil, err
	}

	var created []event.Event
	if input.Until != (civil.Date{}) {
		created, err = cal.CreateEventSeriesUntil(input.Subject, input.Start, input.End, input.Weekdays, input.Until)
	} else {
		created, err = cal.CreateEventSeries(input.Subject, input.Start, input.End, input.Weekdays, input.Occurrences)
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "calendar.series.created", event_bus.SeriesCreated{
		Calendar:    calendarName,
		Subject:     input.Subject,
		Occurrences: len(created),
	})
	return created, nil
}

func (s *ServiceImpl) EditEvents(ctx context.Context, calendarName, subject string, start civil.DateTime, property, value, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.reg.Calendar(calendarName)
	if err != nil {
		return err
	}
	prop, err := event.ParseProperty(property)
	if err != nil {
		return err
	}

	switch scope {
	case ScopeSingle:
		err = cal.EditEvent(subject, start, prop, value)
	case ScopeFromStart:
		err = cal.EditEventsFromStart(subject, start, prop, value)
	case ScopeSeries:
		err = cal.EditSeries(subject, start, prop, value)
	default:
		return event.Invalidf("unknown edit scope %q", scope)
	}
	if err != nil {
		return err
	}

	s.publish(ctx, "calendar.events.edited", event_bus.EventsEdited{
		Calendar: calendarName,
		Subject:  subject,
		Property: string(prop),
		Scope:    scope,
	})
	return nil
}

func (s *ServiceImpl) FindEvents(ctx context.Context, calendarName, subject string, start, end civil.DateTime) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.reg.Calendar(calendarName)
	if err != nil {
		return nil, err
	}
	if end == (civil.DateTime{}) {
		return cal.FindEvents(subject, start), nil
	}
	return cal.FindEventsWithEnd(subject, start, end), nil
}

func (s *ServiceImpl) EventsOnDate(ctx context.Context, calendarName string, d civil.Date) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.reg.Calendar(calendarName)
	if err != nil {
		return nil, err
	}
	return cal.EventsOnDate(d), nil
}

func (s *ServiceImpl) EventsInRange(ctx context.Context, calendarName string, from, to civil.DateTime) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.reg.Calendar(calendarName)
	if err != nil {
		return nil, err
	}
	return cal.EventsInRange(from, to), nil
}

func (s *ServiceImpl) IsBusyAt(ctx context.Context, calendarName string, at civil.DateTime) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.reg.Calendar(calendarName)
	if err != nil {
		return false, err
	}
	return cal.IsBusyAt(at), nil
}

func (s *ServiceImpl) ExportSnapshot(ctx context.Context, calendarName string) (export.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.reg.Calendar(calendarName)
	if err != nil {
		return export.Snapshot{}, err
	}
	return export.Snapshot{
		Name:     cal.Name(),
		Location: cal.Location(),
		Hours:    s.reg.WorkingHours(),
		Events:   cal.Events(),
	}, nil
}

func (s *ServiceImpl) CopyEvent(ctx context.Context, from, to, subject string, start, targetStart civil.DateTime) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied, err := s.reg.CopyEvent(from, subject, start, to, targetStart)
	if err != nil {
		return event.Event{}, err
	}
	s.publish(ctx, "calendar.events.copied", event_bus.EventsCopied{From: from, To: to, Count: 1})
	return copied, nil
}

func (s *ServiceImpl) CopyDay(ctx context.Context, from, to string, d, targetDate civil.Date) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied, err := s.reg.CopyEventsOnDate(from, d, to, targetDate)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, "calendar.events.copied", event_bus.EventsCopied{From: from, To: to, Count: copied})
	return copied, nil
}

func (s *ServiceImpl) CopyRange(ctx context.Context, from, to string, startDate, endDate, targetStartDate civil.Date) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied, err := s.reg.CopyEventsBetween(from, startDate, endDate, to, targetStartDate)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, "calendar.events.copied", event_bus.EventsCopied{From: from, To: to, Count: copied})
	return copied, nil
}
