// Package eventbus provides an in-process publish/subscribe bus used to
// decouple the round loop from metrics and notification sinks.
package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus implementation.
type Bus = TypedBus[Event]

// New creates a new Bus.
func New() *Bus { return NewTyped[Event]() }

// NewBuffered creates a Bus whose subscriber channels hold size events.
func NewBuffered(size int) *Bus { return NewTypedBuffered[Event](size) }
