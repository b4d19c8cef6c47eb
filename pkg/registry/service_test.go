package registry

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendo/agendo/internal/event_bus"
	"github.com/agendo/agendo/pkg/event"
)

func TestService_PublishesNotifications(t *testing.T) {
	reg := newTestRegistry(t)
	bus := event_bus.NewEventBus()
	service := NewService(reg, bus)
	ctx := context.Background()

	var published []event_bus.EventType
	for _, eventType := range []event_bus.EventType{
		"calendar.created",
		"calendar.renamed",
		"calendar.timezone.changed",
		"calendar.event.created",
		"calendar.series.created",
		"calendar.events.edited",
		"calendar.events.copied",
	} {
		bus.Subscribe(eventType, func(e event_bus.Event) error {
			published = append(published, e.Type)
			return nil
		})
	}

	_, err := service.CreateCalendar(ctx, "work", "America/New_York")
	require.NoError(t, err)
	_, err = service.CreateCalendar(ctx, "personal", "America/New_York")
	require.NoError(t, err)
	_, err = service.CreateEvent(ctx, "work", EventInput{
		Subject: "Team Sync",
		Start:   dt(2025, time.November, 10, 9, 0),
		End:     dt(2025, time.November, 10, 10, 0),
		Public:  true,
	})
	require.NoError(t, err)
	_, err = service.CreateSeries(ctx, "work", SeriesInput{
		Subject:     "Standup",
		Start:       dt(2025, time.November, 11, 9, 0),
		End:         dt(2025, time.November, 11, 9, 30),
		Weekdays:    []time.Weekday{time.Tuesday},
		Occurrences: 2,
	})
	require.NoError(t, err)
	err = service.EditEvents(ctx, "work", "Team Sync", dt(2025, time.November, 10, 9, 0), "location", "Room 9", ScopeSingle)
	require.NoError(t, err)
	_, err = service.CopyDay(ctx, "work", "personal", date(2025, time.November, 10), date(2025, time.December, 1))
	require.NoError(t, err)
	_, err = service.RenameCalendar(ctx, "personal", "home")
	require.NoError(t, err)
	_, err = service.ChangeTimezone(ctx, "home", "Europe/Warsaw")
	require.NoError(t, err)

	assert.Equal(t, []event_bus.EventType{
		"calendar.created",
		"calendar.created",
		"calendar.event.created",
		"calendar.series.created",
		"calendar.events.edited",
		"calendar.events.copied",
		"calendar.renamed",
		"calendar.timezone.changed",
	}, published)
}

func TestService_DoesNotPublishOnFailure(t *testing.T) {
	reg := newTestRegistry(t)
	bus := event_bus.NewEventBus()
	service := NewService(reg, bus)
	ctx := context.Background()

	var published int
	bus.Subscribe("calendar.created", func(e event_bus.Event) error {
		published++
		return nil
	})

	_, err := service.CreateCalendar(ctx, "work", "America/New_York")
	require.NoError(t, err)
	_, err = service.CreateCalendar(ctx, "work", "Europe/Warsaw")
	require.Error(t, err)

	assert.Equal(t, 1, published)
}

func TestService_FindEvents(t *testing.T) {
	reg := newTestRegistry(t)
	service := NewService(reg, event_bus.NewEventBus())
	ctx := context.Background()
	seedCalendar(t, reg, "work", "America/New_York")
	seedEvent(t, reg, "work", "Team Sync", dt(2025, time.November, 10, 9, 0), dt(2025, time.November, 10, 10, 0))
	seedEvent(t, reg, "work", "Team Sync", dt(2025, time.November, 10, 9, 0), dt(2025, time.November, 10, 11, 0))

	t.Run("a zero end matches on subject and start only", func(t *testing.T) {
		found, err := service.FindEvents(ctx, "work", "Team Sync", dt(2025, time.November, 10, 9, 0), civil.DateTime{})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("an explicit end narrows to the exact occurrence", func(t *testing.T) {
		found, err := service.FindEvents(ctx, "work", "Team Sync", dt(2025, time.November, 10, 9, 0), dt(2025, time.November, 10, 11, 0))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, dt(2025, time.November, 10, 11, 0), found[0].End)
	})

	t.Run("unknown calendar", func(t *testing.T) {
		_, err := service.FindEvents(ctx, "ghost", "Team Sync", dt(2025, time.November, 10, 9, 0), civil.DateTime{})
		var invalidErr *event.InvalidOperationError
		assert.ErrorAs(t, err, &invalidErr)
	})
}

func TestService_ExportSnapshot(t *testing.T) {
	reg := newTestRegistry(t)
	service := NewService(reg, event_bus.NewEventBus())
	ctx := context.Background()
	seedCalendar(t, reg, "work", "America/New_York")
	seedEvent(t, reg, "work", "Team Sync", dt(2025, time.November, 10, 9, 0), dt(2025, time.November, 10, 10, 0))

	snapshot, err := service.ExportSnapshot(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "work", snapshot.Name)
	assert.Equal(t, "America/New_York", snapshot.Location.String())
	assert.Equal(t, event.DefaultWorkingHours(), snapshot.Hours)
	require.Len(t, snapshot.Events, 1)
	assert.Equal(t, "Team Sync", snapshot.Events[0].Subject)

	_, err = service.ExportSnapshot(ctx, "ghost")
	var invalidErr *event.InvalidOperationError
	assert.ErrorAs(t, err, &invalidErr)
}
