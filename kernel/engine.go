package kernel

// TimeTeller reports the current simulated time.
type TimeTeller interface {
	CurrentTime() VTime
}

// EventScheduler schedules future events.
type EventScheduler interface {
	Schedule(e Event)
}

// SimulationEndHandler is called once after the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTime)
}

// Engine is the maestro: it owns every piece of simulation state (the
// pending-event queue, the actor list, the ready list of kernel-future
// continuations) and is the only thing that may advance the clock.
//
// Engine is deliberately small and interface-shaped so that the serial and
// parallel variants (spec §4.1, §4.3) are interchangeable from an actor's
// point of view: actor-visible semantics must be identical between them
// (spec §9 "parallel contexts are a scheduling optimisation, not a
// concurrency model").
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run drives the simulation to completion: it processes events and
	// runs actors until every actor has terminated and the pending-event
	// queue is empty, or until a deadlock is detected.
	Run() error

	// Pause prevents the engine from making further progress until
	// Continue is called. Events already in flight within the current
	// round may still complete.
	Pause()

	// Continue resumes a paused engine.
	Continue()

	// SpawnActor registers a new actor and adds it to the next round's
	// to-run list.
	SpawnActor(a *Actor)

	// Unblock moves a blocked actor back onto the to-run list. Called by
	// a blocking simcall's kernel closure (directly, or via a kernel
	// future continuation) once the operation it was waiting for
	// completes.
	Unblock(a *Actor)

	// ScheduleContinuation enqueues a kernel-future continuation onto the
	// engine's ready list. Continuations are never invoked inline from
	// inside Promise.SetValue/SetException (spec §4.2); the engine drains
	// the ready list as the first step of every round.
	ScheduleContinuation(fn func())

	// RegisterSimulationEndHandler registers a handler invoked once after
	// the simulation ends, successfully or not.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes every registered SimulationEndHandler with the
	// final simulated time.
	Finished()
}
