package shared

import "context"

// EventHandler consumes domain events after they are published.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes names the event types the handler wants. Empty means
	// the handler is subscribed explicitly by the caller.
	EventTypes() []string
}

// EventPublisher is the write side of the bus. Application services
// publish aggregate events through it after a successful commit.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber is the read side of the bus.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines both sides.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
