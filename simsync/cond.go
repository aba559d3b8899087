package simsync

import (
	"sync"

	"github.com/loomsim/loom/kernel"
)

type condWaiter struct {
	actor *kernel.Actor
	rec   *kernel.SimcallRecord
	fired bool
	timer kernel.Event
}

// Cond is a simulated-time condition variable. Wait always re-acquires its
// associated Mutex before returning, whether it was woken by Signal,
// Broadcast, or a timeout — matching the usual pthread_cond_timedwait
// contract.
type Cond struct {
	name string

	mu      sync.Mutex
	waiters []*condWaiter
}

// NewCond creates a Cond named name and registers it with sim.
func NewCond(sim *kernel.Simulation, name string) *Cond {
	c := &Cond{name: name}
	sim.RegisterCond(name, c)
	return c
}

// Name implements kernel.Named.
func (c *Cond) Name() string { return c.name }

// Wait releases m, blocks actor until Signal, Broadcast, or timeout fires,
// then re-acquires m. A zero or negative timeout means wait forever. If
// the wait times out, Wait returns a kernel.TimeoutError but still
// re-acquires m before returning.
func (c *Cond) Wait(actor *kernel.Actor, m *Mutex, timeout kernel.Duration) error {
	if err := m.Unlock(actor); err != nil {
		return err
	}

	_, waitErr := kernel.RunBlocking[struct{}](actor, "cond_wait", func(rec *kernel.SimcallRecord) {
		entry := &condWaiter{actor: actor, rec: rec}

		c.mu.Lock()
		c.waiters = append(c.waiters, entry)
		c.mu.Unlock()

		if timeout > 0 {
			deadline := actor.Engine().CurrentTime().Add(timeout)
			entry.timer = kernel.NewCallbackEvent(deadline, func() {
				if !c.markFired(entry) {
					return
				}
				c.removeWaiter(entry)
				rec.Complete(struct{}{}, kernel.TimeoutError{Op: "cond_wait"})
				actor.Engine().Unblock(actor)
			})
			actor.Engine().Schedule(entry.timer)
		}
	})

	lockErr := m.Lock(actor)
	if waitErr != nil {
		return waitErr
	}
	return lockErr
}

// markFired atomically flags entry as fired, returning false if it was
// already fired (e.g. a timeout racing a concurrent Signal).
func (c *Cond) markFired(entry *condWaiter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry.fired {
		return false
	}
	entry.fired = true
	return true
}

func (c *Cond) removeWaiter(entry *condWaiter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w == entry {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

func (c *Cond) wake(entry *condWaiter) {
	if !c.markFired(entry) {
		return
	}
	if entry.timer != nil {
		entry.timer.Cancel()
	}
	entry.rec.Complete(struct{}{}, nil)
	entry.actor.Engine().Unblock(entry.actor)
}

// Signal wakes at most one waiting actor (the one that has been waiting
// longest), if any.
func (c *Cond) Signal(actor *kernel.Actor) error {
	_, err := kernel.RunImmediate(actor, "cond_signal", func() (struct{}, error) {
		c.mu.Lock()
		var entry *condWaiter
		if len(c.waiters) > 0 {
			entry = c.waiters[0]
			c.waiters = c.waiters[1:]
		}
		c.mu.Unlock()

		if entry != nil {
			c.wake(entry)
		}
		return struct{}{}, nil
	})
	return err
}

// WaiterNames returns the names of actors currently waiting on c, in the
// order they started waiting.
func (c *Cond) WaiterNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, len(c.waiters))
	for i, w := range c.waiters {
		names[i] = w.actor.Name()
	}
	return names
}

// Broadcast wakes every actor currently waiting on c.
func (c *Cond) Broadcast(actor *kernel.Actor) error {
	_, err := kernel.RunImmediate(actor, "cond_broadcast", func() (struct{}, error) {
		c.mu.Lock()
		entries := c.waiters
		c.waiters = nil
		c.mu.Unlock()

		for _, entry := range entries {
			c.wake(entry)
		}
		return struct{}{}, nil
	})
	return err
}
