// Package events defines the resource change notifications emitted after successful mutations.
package events

import (
	"context"
	"time"
)

// Type names a resource change.
type Type string

const (
	UserCreated  Type = "user.created"
	UserReplaced Type = "user.replaced"
	UserUpdated  Type = "user.updated"
	UserDeleted  Type = "user.deleted"

	OrderCreated  Type = "order.created"
	OrderReplaced Type = "order.replaced"
	OrderUpdated  Type = "order.updated"
	OrderDeleted  Type = "order.deleted"
)

// Resource names used as the event subject.
const (
	ResourceUser  = "user"
	ResourceOrder = "order"
)

// Event is the wire shape published for every successful mutation.
type Event struct {
	Type       Type           `json:"type"`
	Resource   string         `json:"resource"`
	ResourceID int64          `json:"resource_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// New builds an event stamped with the current time.
func New(eventType Type, resource string, id int64, data map[string]any) Event {
	return Event{
		Type:       eventType,
		Resource:   resource,
		ResourceID: id,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher is the default when no broker is configured.
var NoopPublisher Publisher = noopPublisher{}

type noopPublisher struct{}

func (noopPublisher) Publish(_ context.Context, _ Event) error { return nil }
