package kernel

// Event is something scheduled to happen at a future simulated time. The
// pending-event queue (§3) is a min-heap of Events ordered by Time.
//
// Firing an Event is expected to complete a kernel Promise or unblock an
// actor; the kernel itself only knows how to order and dispatch events, not
// what they mean.
type Event interface {
	// Time returns the simulated time at which the event should fire.
	Time() VTime

	// Handler returns the handler responsible for the event.
	Handler() Handler

	// IsSecondary reports whether the event belongs to the secondary queue.
	// Secondary events fire only after all primary events due at the same
	// instant have fired; this is how the scheduler expresses "this should
	// happen strictly after everything else scheduled for right now"
	// (e.g. a cleanup callback) without inventing a second clock.
	IsSecondary() bool

	// Cancel marks the event as cancelled. A cancelled event's callback
	// becomes a no-op when it is popped off the queue and fired (§3
	// "firing an entry is idempotent if cancelled").
	Cancel()
	Cancelled() bool
}

// Handler reacts to an Event firing. Exactly one Handler is responsible for
// any given Event; an Event can only be scheduled by its own Handler (the
// only exception is simulation bootstrap).
type Handler interface {
	Handle(e Event) error
}

// EventBase provides the bookkeeping shared by all Event implementations.
// Embed it and set a Callback to get a usable Event.
type EventBase struct {
	id        string
	time      VTime
	handler   Handler
	secondary bool
	cancelled bool
}

// NewEventBase creates an EventBase scheduled to fire at t against handler.
func NewEventBase(t VTime, handler Handler) *EventBase {
	return &EventBase{
		id:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns the time the event is scheduled to fire.
func (e *EventBase) Time() VTime { return e.time }

// Handler returns the event's handler.
func (e *EventBase) Handler() Handler { return e.handler }

// IsSecondary reports whether this is a secondary event.
func (e *EventBase) IsSecondary() bool { return e.secondary }

// MarkSecondary flags the event as secondary.
func (e *EventBase) MarkSecondary() { e.secondary = true }

// Cancel marks the event cancelled; firing it becomes a no-op.
func (e *EventBase) Cancel() { e.cancelled = true }

// Cancelled reports whether Cancel has been called.
func (e *EventBase) Cancelled() bool { return e.cancelled }

// CallbackEvent is a generic Event whose firing behavior is an arbitrary
// closure. The scheduler and promise-completion machinery both schedule
// their timer/wake-up events this way instead of defining a new Event type
// per use site.
type CallbackEvent struct {
	*EventBase
	fn func()
}

// NewCallbackEvent creates an event that invokes fn when fired. The event
// is its own handler, which is the one exception to "an event can only be
// scheduled by its own handler" allowed for kernel-internal timer/wake-up
// events that do not belong to any actor.
func NewCallbackEvent(t VTime, fn func()) *CallbackEvent {
	e := &CallbackEvent{
		EventBase: NewEventBase(t, nil),
		fn:        fn,
	}
	e.handler = e
	return e
}

// Handle runs the callback unless the event was cancelled, satisfying the
// Handler interface so CallbackEvent can stand in as its own handler when
// convenient.
func (e *CallbackEvent) Handle(_ Event) error {
	if !e.Cancelled() {
		e.fn()
	}
	return nil
}
