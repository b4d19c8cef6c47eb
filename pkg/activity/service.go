package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/agendo/agendo/internal/event_bus"
	"github.com/agendo/agendo/internal/utils"
)

// maxEntries bounds the feed; once full, the oldest entry falls off for
// every new one.
const maxEntries = 100

// Entry is one recorded notification.
type Entry struct {
	Time    time.Time
	Message string
}

// Service collects calendar notifications from the event bus and serves
// them back newest first.
type Service interface {
	Recent(ctx context.Context) []Entry
}

type ServiceImpl struct {
	clock utils.Clock

	mu      sync.Mutex
	entries []Entry
}

func NewService(eventBus *event_bus.EventBus, clock utils.Clock) Service {
	service := &ServiceImpl{clock: clock}

	event_bus.SubscribeTyped[event_bus.CalendarCreated](
		eventBus,
		"calendar.created",
		func(e event_bus.EventT[event_bus.CalendarCreated]) error {
			log.Debugf("received calendar created event: %v", e)
			service.record(fmt.Sprintf("created calendar %q in zone %s", e.Data.Name, e.Data.Timezone))
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.CalendarRenamed](
		eventBus,
		"calendar.renamed",
		func(e event_bus.EventT[event_bus.CalendarRenamed]) error {
			log.Debugf("received calendar renamed event: %v", e)
			service.record(fmt.Sprintf("renamed calendar %q to %q", e.Data.OldName, e.Data.NewName))
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.CalendarTimezoneChanged](
		eventBus,
		"calendar.timezone.changed",
		func(e event_bus.EventT[event_bus.CalendarTimezoneChanged]) error {
			log.Debugf("received calendar timezone changed event: %v", e)
			service.record(fmt.Sprintf("moved calendar %q to zone %s", e.Data.Name, e.Data.Timezone))
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.EventCreated](
		eventBus,
		"calendar.event.created",
		func(e event_bus.EventT[event_bus.EventCreated]) error {
			log.Debugf("received event created event: %v", e)
			service.record(fmt.Sprintf("added event %q to %q at %s", e.Data.Subject, e.Data.Calendar, e.Data.Start))
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.SeriesCreated](
		eventBus,
		"calendar.series.created",
		func(e event_bus.EventT[event_bus.SeriesCreated]) error {
			log.Debugf("received series created event: %v", e)
			service.record(fmt.Sprintf("added series %q to %q (%d occurrences)", e.Data.Subject, e.Data.Calendar, e.Data.Occurrences))
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.EventsEdited](
		eventBus,
		"calendar.events.edited",
		func(e event_bus.EventT[event_bus.EventsEdited]) error {
			log.Debugf("received events edited event: %v", e)
			service.record(fmt.Sprintf("edited %s of %q in %q (%s scope)", e.Data.Property, e.Data.Subject, e.Data.Calendar, e.Data.Scope))
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.EventsCopied](
		eventBus,
		"calendar.events.copied",
		func(e event_bus.EventT[event_bus.EventsCopied]) error {
			log.Debugf("received events copied event: %v", e)
			service.record(fmt.Sprintf("copied %d events from %q to %q", e.Data.Count, e.Data.From, e.Data.To))
			return nil
		},
	)

	return service
}

func (s *ServiceImpl) record(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{Time: s.clock.Now(), Message: message})
	if len(s.entries) > maxEntries {
		s.entries = s.entries[len(s.entries)-maxEntries:]
	}
}

func (s *ServiceImpl) Recent(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i])
	}
	return out
}
