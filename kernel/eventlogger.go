package kernel

import (
	"log"
	"reflect"
)

// named is satisfied by any Handler that can identify itself by name.
// EventLogger uses it to add that name to the line; events whose handler
// has no Name method (CallbackEvent, for one) are logged with time and Go
// type only.
type named interface {
	Name() string
}

// EventLogger is a Hook that prints one line per before-event firing.
type EventLogger struct {
	LogHookBase
}

// NewEventLogger creates an EventLogger that writes to logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func implements Hook.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	if n, ok := evt.Handler().(named); ok {
		h.Logger.Printf("%.10f, %s -> %s", evt.Time(), reflect.TypeOf(evt), n.Name())
		return
	}

	h.Logger.Printf("%.10f, %s", evt.Time(), reflect.TypeOf(evt))
}
