package shared

import (
	"context"
	"fmt"
)

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in.
	// An empty slice means the handler receives all events.
	EventTypes() []string
}

// EventPublisher publishes domain events in the order given
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber subscribes to domain events
type EventSubscriber interface {
	// Subscribe registers a handler for specific event types.
	// If no event types are provided, the handler receives all events.
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes a handler from the subscription list
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Transactor is implemented by publishers that can enclose the aggregate
// save in the same database transaction as the events they write
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UndeliveredEventsError reports events that were not published although
// the aggregate change was already saved. The caller owns re-publishing them.
type UndeliveredEventsError struct {
	Events []DomainEvent
	Err    error
}

func (e *UndeliveredEventsError) Error() string {
	return fmt.Sprintf("%d event(s) not published: %v", len(e.Events), e.Err)
}

func (e *UndeliveredEventsError) Unwrap() error {
	return e.Err
}

// Commit saves an aggregate and publishes the buffered events. When the
// publisher is a Transactor both happen in one transaction, so a failed
// publish also rolls the save back. Otherwise a failed publish after a
// successful save returns an UndeliveredEventsError. The buffer is cleared
// only when both steps succeed.
func Commit(ctx context.Context, save func(ctx context.Context) error, publisher EventPublisher, buffer *EventBuffer) error {
	pending := buffer.Pending()
	publish := func(ctx context.Context) error {
		if len(pending) == 0 || publisher == nil {
			return nil
		}
		return publisher.Publish(ctx, pending...)
	}

	if tx, ok := publisher.(Transactor); ok {
		if err := tx.InTransaction(ctx, func(ctx context.Context) error {
			if err := save(ctx); err != nil {
				return err
			}
			return publish(ctx)
		}); err != nil {
			return err
		}
		buffer.Clear()
		return nil
	}

	if err := save(ctx); err != nil {
		return err
	}
	if err := publish(ctx); err != nil {
		return &UndeliveredEventsError{Events: pending, Err: err}
	}
	buffer.Clear()
	return nil
}
