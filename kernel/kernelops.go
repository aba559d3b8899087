package kernel

// KernelImmediate runs fn as an immediate simcall and returns its value or
// error directly to the caller; the clock does not advance (spec §4.4's
// kernel_immediate, built on RunImmediate). It is the named entry point
// actor code is meant to call; RunImmediate itself is the lower-level
// simcall-boundary primitive it is built on.
func KernelImmediate[T any](a *Actor, kind string, fn func() (T, error)) (T, error) {
	return RunImmediate(a, kind, fn)
}

// KernelSync runs fn to obtain a kernel future, then blocks the calling
// actor until that future resolves, delivering its value or rethrowing its
// exception (spec §4.4's kernel_sync). fn itself runs inside the blocking
// simcall's registration step, i.e. in maestro context, so it may safely
// chain further kernel futures (e.g. via ThenMap) before returning the one
// KernelSync actually waits on.
func KernelSync[T any](a *Actor, kind string, fn func() Future[T]) (T, error) {
	return RunBlocking[T](a, kind, func(rec *SimcallRecord) {
		f := fn()
		f.Then(func(v T, err error) {
			rec.Complete(v, err)
			a.Engine().Unblock(a)
		})
	})
}

// KernelAsync runs fn to obtain a kernel future via an immediate simcall,
// without blocking the calling actor (spec §4.4's kernel_async). The
// returned Future can be inspected non-blockingly with IsReady/TryGet, or
// waited on later with afuture.Wait — kernel_async's "wrap that future and
// return it to the actor unblocked" is exactly afuture's actor-side future
// over a kernel Future, so no separate wrapper type is needed here.
func KernelAsync[T any](a *Actor, kind string, fn func() Future[T]) (Future[T], error) {
	return RunImmediate(a, kind, func() (Future[T], error) {
		return fn(), nil
	})
}
