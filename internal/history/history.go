// Package history records an audit trail of supervisor actions. Sinks are
// best effort: a failed write is logged by the caller and never fails the
// operation that produced the event.
package history

import (
	"context"
	"time"
)

// EventType defines the kind of supervisor event.
type EventType string

const (
	EventStart        EventType = "start"
	EventStop         EventType = "stop"
	EventStaleCleanup EventType = "stale-cleanup"
)

// Event represents a supervisor action to be exported.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Name       string    `json:"name"`
	PID        int       `json:"pid"`
	Detail     string    `json:"detail,omitempty"`
}

// Sink is a destination for history events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
