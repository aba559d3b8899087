package kernel

// SimcallRecord is the bookkeeping an Actor leaves behind at a simcall
// boundary (spec §4.1 "a simcall is the only point at which simulated time
// passes or an actor blocks"). An actor always has at most one
// SimcallRecord pending at a time; Actor.PendingSimcall exposes it, and
// dispatchSimcalls reads it there to run the simcall's body.
//
// dispatch is the type-erased simcall body: RunImmediate and RunBlocking
// both park their caller before running anything, leaving dispatch behind
// for the maestro to invoke later, from dispatchSimcalls, strictly
// sequentially and only ever from the maestro goroutine (spec §4.3 step 3,
// §5(ii): "no simcall runs during [a parallel] step — simcall records are
// only inspected by the maestro afterwards"). This is what makes the
// *order* in which simcall bodies execute match round order even under the
// parallel context factory, where RunAll itself may run many actors'
// user code concurrently on real OS threads right up to their next park.
type SimcallRecord struct {
	Actor    *Actor
	Kind     string
	Blocking bool

	Value any
	Err   error

	dispatch func()
}

// Complete stores the result of a simcall. For a blocking simcall it must
// be called exactly once, by whatever kernel-side code (a simsync mutex,
// condition variable, or kernel future continuation) satisfies the
// operation the actor was waiting on, and must be followed by a call to
// Engine.Unblock(rec.Actor) to actually move the actor back onto the
// to-run list — Complete alone does not schedule the actor. An immediate
// simcall's dispatch calls Complete itself, via RunImmediate; callers of
// RunImmediate never call it directly.
func (r *SimcallRecord) Complete(value any, err error) {
	r.Value = value
	r.Err = err
}

// RunImmediate issues an immediate simcall: the actor parks, and fn runs
// once, in maestro context, as soon as dispatchSimcalls reaches this
// actor's turn in the round — never inline on the calling goroutine and
// never concurrently with any other actor's simcall body, even under the
// parallel context factory. The actor resumes on the round after the one
// it parked in, with fn's result or error already in hand; simulated time
// never advances across the round-trip.
func RunImmediate[T any](a *Actor, kind string, fn func() (T, error)) (T, error) {
	rec := &SimcallRecord{Actor: a, Kind: kind, Blocking: false}
	rec.dispatch = func() {
		v, err := fn()
		rec.Complete(v, err)
	}
	a.setPendingSimcall(rec)
	a.setState(ActorBlocked)

	a.ctx.parkAndWait()

	value, _ := rec.Value.(T)
	return value, rec.Err
}

// RunBlocking issues a blocking simcall: the actor parks immediately, and
// register runs later, in maestro context, from dispatchSimcalls — it
// performs whatever kernel-side bookkeeping is needed to eventually
// complete the operation (e.g. appending the actor to a mutex's wait
// queue), and is expected to either call rec.Complete and Engine.Unblock
// itself synchronously (an uncontended lock) or arrange for some future
// event to do so. Because register only ever runs from the maestro
// goroutine, one actor at a time, in round order, two actors contending
// for the same simsync primitive can never observe each other's
// in-progress registration — the race the parallel context factory would
// otherwise expose is closed by this serialization, not by the
// primitive's own mutex (which only ever guards against the now-
// impossible concurrent case).
//
// If the actor's context was asked to stop while it was parked, parkAndWait
// panics with the internal stop signal instead of returning here; callers
// never observe that panic, it unwinds straight to the context trampoline.
func RunBlocking[T any](a *Actor, kind string, register func(rec *SimcallRecord)) (T, error) {
	rec := &SimcallRecord{Actor: a, Kind: kind, Blocking: true}
	rec.dispatch = func() { register(rec) }
	a.setPendingSimcall(rec)
	a.setState(ActorBlocked)

	a.ctx.parkAndWait()

	value, _ := rec.Value.(T)
	return value, rec.Err
}
