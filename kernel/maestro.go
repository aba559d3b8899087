package kernel

import (
	"log"
	"sync"
)

// baseEngine is the maestro logic shared by the serial and parallel
// variants (spec §4.1, §4.3, §9: "actor-visible semantics must be
// identical between them"). The two variants differ only in which
// ContextFactory they hand a round's to-run list to; everything about how
// rounds are assembled, how events advance the clock, how the ready list
// is drained, and how deadlock is detected lives here exactly once.
//
// Grounded on sim/serialengine.go and sim/parallelengine.go's shared
// "process events, then run components" loop shape, generalized from
// components/ports to actors/simcalls.
type baseEngine struct {
	*HookableBase

	mu         sync.Mutex
	cond       *sync.Cond
	now        VTime
	queue      EventQueue
	ctxFactory ContextFactory

	actors []*Actor
	toRun  []*Actor
	ready  []func()

	paused bool

	endHandlers []SimulationEndHandler
}

func newBaseEngine(ctxFactory ContextFactory) *baseEngine {
	e := &baseEngine{
		HookableBase: NewHookableBase(),
		queue:        NewEventQueue(),
		ctxFactory:   ctxFactory,
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// CurrentTime implements TimeTeller.
func (e *baseEngine) CurrentTime() VTime {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// Schedule implements EventScheduler.
func (e *baseEngine) Schedule(ev Event) {
	e.queue.Push(ev)
}

// SpawnActor registers a and makes it runnable starting with the next
// round (spec §3: "a newly spawned actor is runnable").
func (e *baseEngine) SpawnActor(a *Actor) {
	e.mu.Lock()
	e.actors = append(e.actors, a)
	e.toRun = append(e.toRun, a)
	e.mu.Unlock()

	e.ctxFactory.NewContext(a)
	e.cond.Broadcast()
}

// Unblock moves a from ActorBlocked back onto the to-run list. Called from
// the maestro goroutine only: from an event handler (a scheduled timer
// firing), from a ready-list continuation (a kernel future resolving), or
// from dispatchSimcalls (directly, after an immediate simcall's body has
// run, or from a blocking simcall's register closure completing
// synchronously, e.g. an uncontended mutex lock).
func (e *baseEngine) Unblock(a *Actor) {
	a.setPendingSimcall(nil)
	a.setState(ActorRunnable)

	e.mu.Lock()
	e.toRun = append(e.toRun, a)
	e.mu.Unlock()
	e.cond.Broadcast()
}

// ScheduleContinuation enqueues fn onto the ready list, to be run as the
// first step of some future round (spec §4.2).
func (e *baseEngine) ScheduleContinuation(fn func()) {
	e.mu.Lock()
	e.ready = append(e.ready, fn)
	e.mu.Unlock()
	e.cond.Broadcast()
}

// RegisterSimulationEndHandler implements Engine.
func (e *baseEngine) RegisterSimulationEndHandler(handler SimulationEndHandler) {
	e.mu.Lock()
	e.endHandlers = append(e.endHandlers, handler)
	e.mu.Unlock()
}

// Finished implements Engine.
func (e *baseEngine) Finished() {
	e.mu.Lock()
	now := e.now
	handlers := e.endHandlers
	e.mu.Unlock()

	for _, h := range handlers {
		h.Handle(now)
	}
}

// Pause implements Engine.
func (e *baseEngine) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
}

// Continue implements Engine.
func (e *baseEngine) Continue() {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()
	e.cond.Broadcast()
}

// drainReady runs every continuation on the ready list, repeatedly, until
// the list is empty. A continuation may itself schedule more
// continuations (e.g. a chained Future.Then), which is why this is a loop
// rather than a single pass.
func (e *baseEngine) drainReady() {
	for {
		e.mu.Lock()
		if len(e.ready) == 0 {
			e.mu.Unlock()
			return
		}
		batch := e.ready
		e.ready = nil
		e.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
	}
}

// dispatchSimcalls walks round in its original to-run (FIFO) order and
// invokes each parked actor's simcall closure exactly once, on the maestro
// goroutine, one actor at a time (spec §4.3 step 3). RunAll may have just
// let every actor in round run concurrently, on real OS threads, up to its
// next park — but none of their simcall bodies have executed yet. This is
// the only place they do, which is what makes simcall execution order (and
// therefore FIFO acquisition order for simsync primitives) match round
// order regardless of which context factory produced round.
func (e *baseEngine) dispatchSimcalls(round []*Actor) {
	for _, a := range round {
		if a.Terminated() {
			continue
		}
		rec := a.PendingSimcall()
		if rec == nil {
			continue
		}

		e.InvokeHook(HookCtx{Domain: e, Pos: HookPosBeforeSimcall, Item: a, Detail: rec.Kind})
		rec.dispatch()
		e.InvokeHook(HookCtx{Domain: e, Pos: HookPosAfterSimcall, Item: a, Detail: rec.Kind})

		if !rec.Blocking {
			e.Unblock(a)
		}
	}
}

// takeToRun atomically empties and returns the current to-run list.
func (e *baseEngine) takeToRun() []*Actor {
	e.mu.Lock()
	defer e.mu.Unlock()
	round := e.toRun
	e.toRun = nil
	return round
}

// fireDueEvents pops every event scheduled for the earliest pending time,
// advances the clock to that time (an event scheduled in the past fires at
// the current time; the clock never moves backwards), and fires them: primary events in
// queue order, then secondary events in queue order (spec §3's "secondary
// events fire strictly after everything else due at the same instant").
// Reports whether any event was fired.
func (e *baseEngine) fireDueEvents() bool {
	top := e.queue.Peek()
	if top == nil {
		return false
	}

	t := top.Time()
	var primary, secondary []Event
	for {
		nxt := e.queue.Peek()
		if nxt == nil || nxt.Time() != t {
			break
		}
		ev := e.queue.Pop()
		if ev.IsSecondary() {
			secondary = append(secondary, ev)
		} else {
			primary = append(primary, ev)
		}
	}

	e.mu.Lock()
	if t > e.now {
		e.now = t
	}
	e.mu.Unlock()

	for _, ev := range primary {
		e.fire(ev)
	}
	for _, ev := range secondary {
		e.fire(ev)
	}

	return true
}

func (e *baseEngine) fire(ev Event) {
	e.InvokeHook(HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: ev})

	if !ev.Cancelled() {
		if err := ev.Handler().Handle(ev); err != nil {
			log.Panicf("event handler returned error: %v", err)
		}
	}

	e.InvokeHook(HookCtx{Domain: e, Pos: HookPosAfterEvent, Item: ev})
}

// waitWhilePaused blocks the maestro goroutine while Pause is in effect.
func (e *baseEngine) waitWhilePaused() {
	e.mu.Lock()
	for e.paused {
		e.cond.Wait()
	}
	e.mu.Unlock()
}

// liveActorNames returns the names of every actor that has not terminated.
func (e *baseEngine) liveActorNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var names []string
	for _, a := range e.actors {
		if !a.Terminated() {
			names = append(names, a.Name())
		}
	}
	return names
}

// run drives the maestro loop to completion. It is shared by
// SerialEngine.Run and ParallelEngine.Run; the only thing that varies
// between them is e.ctxFactory.
func (e *baseEngine) run() error {
	for {
		e.waitWhilePaused()

		e.drainReady()

		round := e.takeToRun()
		if len(round) > 0 {
			e.ctxFactory.RunAll(round)
			e.dispatchSimcalls(round)
			continue
		}

		if e.fireDueEvents() {
			continue
		}

		e.mu.Lock()
		readyEmpty := len(e.ready) == 0
		toRunEmpty := len(e.toRun) == 0
		e.mu.Unlock()
		if !readyEmpty || !toRunEmpty {
			continue
		}

		if live := e.liveActorNames(); len(live) > 0 {
			return DeadlockError{BlockedActors: live}
		}

		return nil
	}
}
