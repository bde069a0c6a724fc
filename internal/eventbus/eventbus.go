// Package eventbus fans vessel events out to in-process subscribers.
package eventbus

// Event is any value published on a Bus.
type Event any

// EventBus is the publish/subscribe surface used by the vessel and its
// collectors.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus carries untyped events: charge passes, faults, stats, status and
// notifications.
type Bus = TypedBus[Event]

// New creates a Bus.
func New(opts ...Option) *Bus { return NewTyped[Event](opts...) }
