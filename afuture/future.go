// Package afuture lets actor code block on a kernel future. Kernel futures
// themselves are continuation-based and never block (kernel.Future.Then);
// Wait is the one blocking simcall that bridges the two future styles
// together, as described for kernel/actor futures generally.
package afuture

import (
	"sync/atomic"

	"github.com/loomsim/loom/kernel"
)

// Wait blocks actor until f is satisfied, or until timeout simulated
// seconds have elapsed, whichever comes first. A zero or negative timeout
// means wait forever. If the wait times out, Wait returns a
// kernel.TimeoutError.
func Wait[T any](actor *kernel.Actor, f kernel.Future[T], timeout kernel.Duration) (T, error) {
	return kernel.RunBlocking[T](actor, "future_wait", func(rec *kernel.SimcallRecord) {
		var fired int32
		var timer kernel.Event

		complete := func(v T, err error) {
			if !atomic.CompareAndSwapInt32(&fired, 0, 1) {
				return
			}
			if timer != nil {
				timer.Cancel()
			}
			rec.Complete(v, err)
			actor.Engine().Unblock(actor)
		}

		f.Then(func(v T, err error) { complete(v, err) })

		if timeout > 0 {
			deadline := actor.Engine().CurrentTime().Add(timeout)
			timer = kernel.NewCallbackEvent(deadline, func() {
				var zero T
				complete(zero, kernel.TimeoutError{Op: "future_wait"})
			})
			actor.Engine().Schedule(timer)
		}
	})
}
