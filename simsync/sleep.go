package simsync

import "github.com/loomsim/loom/kernel"

// SleepFor blocks actor until d simulated seconds have elapsed.
func SleepFor(actor *kernel.Actor, d kernel.Duration) error {
	return SleepUntil(actor, actor.Engine().CurrentTime().Add(d))
}

// SleepUntil blocks actor until the simulated clock reaches t. If t is
// already in the past, the actor is unblocked the next time the engine
// processes it — it is never unblocked before the simcall that issued the
// sleep has returned control to the maestro.
func SleepUntil(actor *kernel.Actor, t kernel.VTime) error {
	_, err := kernel.RunBlocking[struct{}](actor, "sleep", func(rec *kernel.SimcallRecord) {
		ev := kernel.NewCallbackEvent(t, func() {
			rec.Complete(struct{}{}, nil)
			actor.Engine().Unblock(actor)
		})
		actor.Engine().Schedule(ev)
	})
	return err
}
