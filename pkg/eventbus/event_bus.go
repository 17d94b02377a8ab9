// Package eventbus carries change notifications about records, workflows and
// pipeline runs between the components that produce them and any listener.
package eventbus

import (
	"context"

	"github.com/dukex/textflow/pkg/events"
)

// Event is any notification payload.
type Event interface {
	GetType() events.EventType
}

// EventPublisher is the only side record stores, workflow managers and the
// executor depend on.
type EventPublisher interface {
	// Publish sends event keyed by the id of the entity it concerns.
	Publish(ctx context.Context, key string, event Event) error
}

// EventHandler receives a decoded event, always a pointer to one of the
// types in package events.
type EventHandler func(ctx context.Context, event Event) error

type EventBus interface {
	EventPublisher

	// Handle registers the handler for one event type, replacing any earlier one.
	Handle(eventType events.EventType, handler EventHandler) error
	// Subscribe starts delivering events to the registered handlers until ctx ends.
	Subscribe(ctx context.Context) error
	Close() error
	GenerateID() string
}

// NopPublisher discards every event. It is the default for components built without a bus.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error {
	return nil
}
