package event_bus

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var order []string
	bus.Subscribe("calendar.created", func(e Event) error {
		order = append(order, "first")
		return nil
	})
	bus.Subscribe("calendar.created", func(e Event) error {
		order = append(order, "second")
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), "calendar.created", CalendarCreated{Name: "work"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	unsubscribe := bus.Subscribe("calendar.created", func(e Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), "calendar.created", nil)))
	unsubscribe()
	require.NoError(t, bus.Publish(NewEvent(context.Background(), "calendar.created", nil)))

	assert.Equal(t, 1, calls)
}

func TestEventBus_CollectsHandlerErrors(t *testing.T) {
	bus := NewEventBus()
	failure := errors.New("feed full")
	bus.Subscribe("calendar.created", func(e Event) error { return failure })
	delivered := false
	bus.Subscribe("calendar.created", func(e Event) error {
		delivered = true
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), "calendar.created", nil))
	require.ErrorIs(t, err, failure)
	assert.True(t, delivered, "a failing handler must not block later ones")
}

func TestEventBus_RecoversHandlerPanic(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe("calendar.created", func(e Event) error {
		panic(fmt.Errorf("boom"))
	})

	err := bus.Publish(NewEvent(context.Background(), "calendar.created", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestSubscribeTyped(t *testing.T) {
	bus := NewEventBus()
	var seen []string
	SubscribeTyped(bus, "calendar.created", func(e EventT[CalendarCreated]) error {
		seen = append(seen, e.Data.Name)
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), "calendar.created", CalendarCreated{Name: "work"})))
	// A payload of the wrong type is dropped, not an error.
	require.NoError(t, bus.Publish(NewEvent(context.Background(), "calendar.created", "not a struct")))

	assert.Equal(t, []string{"work"}, seen)
}

func TestEventBus_CancelledContext(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe("calendar.created", func(e Event) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := bus.Publish(NewEvent(ctx, "calendar.created", nil))
	require.Error(t, err)
	assert.False(t, called)
}
