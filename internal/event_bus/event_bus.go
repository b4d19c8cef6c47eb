package event_bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType names a kind of domain notification, e.g. "calendar.created".
type EventType string

// Event is the untyped envelope published on the bus.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

// NewEvent wraps a payload into an envelope stamped with the current time.
func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{
		ctx:       ctx,
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Context returns the context the event was published under. Handlers use
// it for cancellation and request-scoped values.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventT is the typed envelope delivered to handlers registered through
// SubscribeTyped.
type EventT[T any] struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      T
}

func (e EventT[T]) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

type subscription struct {
	id uint64
	fn func(Event) error
}

// EventBus delivers events to subscribers synchronously on the
// publisher's goroutine, in subscription order.
type EventBus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[EventType][]subscription
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[EventType][]subscription)}
}

// Subscribe registers a handler for one event type and returns the
// function that removes it again.
func (b *EventBus) Subscribe(eventType EventType, fn func(Event) error) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[eventType] = append(b.subs[eventType], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		remaining := b.subs[eventType][:0:0]
		for _, sub := range b.subs[eventType] {
			if sub.id != id {
				remaining = append(remaining, sub)
			}
		}
		if len(remaining) == 0 {
			delete(b.subs, eventType)
			return
		}
		b.subs[eventType] = remaining
	}
}

// SubscribeTyped registers a handler for payloads of one concrete type.
// It is a free function because a method cannot introduce a type
// parameter. Events of the right type whose payload is not a T are logged
// and ignored rather than failed.
func SubscribeTyped[T any](b *EventBus, eventType EventType, fn func(EventT[T]) error) (unsubscribe func()) {
	return b.Subscribe(eventType, func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("event bus: dropping %s event, payload is %T not %T", e.Type, e.Data, *new(T))
			return nil
		}
		return fn(EventT[T]{ctx: e.ctx, Type: e.Type, Timestamp: e.Timestamp, Data: payload})
	})
}

// Publish delivers the event to every subscriber of its type before
// returning. A failing or panicking handler does not stop the remaining
// ones; all failures come back joined into a single error.
func (b *EventBus) Publish(e Event) error {
	if err := e.Context().Err(); err != nil {
		return fmt.Errorf("event %s not published: %w", e.Type, err)
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs[e.Type]))
	copy(subs, b.subs[e.Type])
	b.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if err := e.Context().Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := deliver(sub, e); err != nil {
			log.Errorf("event bus: handler %d failed for %s: %v", sub.id, e.Type, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deliver(sub subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %d panicked on %s: %v", sub.id, e.Type, r)
		}
	}()
	return sub.fn(e)
}
