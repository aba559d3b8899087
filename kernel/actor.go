package kernel

import (
	"fmt"
	"sync"
)

// ActorState is the state of an Actor, per spec §3: an actor is runnable
// iff it is either newly spawned or has been explicitly unblocked; a
// terminated actor never runs again.
type ActorState int

const (
	// ActorRunnable means the actor is on (or about to be placed on) the
	// to-run list for the next round.
	ActorRunnable ActorState = iota
	// ActorBlocked means the actor is parked at a blocking simcall,
	// waiting for some later event to call Engine.Unblock on it.
	ActorBlocked
	// ActorTerminated means the actor's code has returned (or been
	// stopped) and it will never run again.
	ActorTerminated
)

func (s ActorState) String() string {
	switch s {
	case ActorRunnable:
		return "runnable"
	case ActorBlocked:
		return "blocked"
	case ActorTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// ActorProc is an actor's user code. It receives the Actor itself so it can
// issue simcalls (spec's "nullary callable" becomes, in Go, a unary closure
// over the one thing it structurally cannot close over implicitly: which
// actor it is running as — Go has no equivalent of a thread-local "current
// process" pointer to read instead).
type ActorProc func(self *Actor)

// Actor is a logically-concurrent participant whose code runs on its own
// Context (goroutine) and whose visible state changes only at simcall
// boundaries: the actor's own goroutine records its pending simcall and
// marks itself blocked as it parks, and marks itself terminated when its
// code returns; every other change is made by the maestro.
type Actor struct {
	id      string
	name    string
	proc    ActorProc
	cleanup func()

	engine Engine
	ctx    *execContext

	mu             sync.Mutex
	state          ActorState
	pendingSimcall *SimcallRecord
}

// NewActor creates an actor named name running proc on engine. The actor is
// not started until the context factory creates and the engine spawns it;
// see ContextFactory.NewContext and Engine.SpawnActor.
func NewActor(name string, engine Engine, proc ActorProc, cleanup func()) *Actor {
	return &Actor{
		id:      GetIDGenerator().Generate(),
		name:    name,
		proc:    proc,
		cleanup: cleanup,
		engine:  engine,
		state:   ActorRunnable,
	}
}

// ID returns the actor's unique identifier.
func (a *Actor) ID() string { return a.id }

// Name returns the actor's human-readable name.
func (a *Actor) Name() string { return a.name }

// Engine returns the engine the actor is running under.
func (a *Actor) Engine() Engine { return a.engine }

// State returns the actor's current state.
func (a *Actor) State() ActorState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Actor) setState(s ActorState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// PendingSimcall returns the simcall record the actor most recently parked
// on, or nil if it has none (e.g. it just terminated).
func (a *Actor) PendingSimcall() *SimcallRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pendingSimcall
}

func (a *Actor) setPendingSimcall(r *SimcallRecord) {
	a.mu.Lock()
	a.pendingSimcall = r
	a.mu.Unlock()
}

// Terminated reports whether the actor has finished running.
func (a *Actor) Terminated() bool {
	return a.State() == ActorTerminated
}

// String implements fmt.Stringer for diagnostics.
func (a *Actor) String() string {
	return fmt.Sprintf("actor(%s/%s, %s)", a.name, a.id, a.State())
}
