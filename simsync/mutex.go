// Package simsync provides simulated-time synchronization primitives
// (mutex, condition variable, sleep) that actors use to coordinate with
// each other. Every operation here is backed by a kernel simcall: time
// only passes, and actors only block, at the points this package defines
// (kernel §4.1).
package simsync

import (
	"sync"

	"github.com/loomsim/loom/kernel"
)

type mutexWaiter struct {
	actor *kernel.Actor
	rec   *kernel.SimcallRecord
}

// Mutex is a FIFO-fair simulated mutex: if more than one actor is blocked
// on Lock when Unlock runs, the actor that has been waiting longest is the
// one granted ownership next.
type Mutex struct {
	name string

	mu      sync.Mutex
	locked  bool
	owner   *kernel.Actor
	waiters []mutexWaiter
}

// NewMutex creates a Mutex named name and registers it with sim.
func NewMutex(sim *kernel.Simulation, name string) *Mutex {
	m := &Mutex{name: name}
	sim.RegisterMutex(name, m)
	return m
}

// Name implements kernel.Named.
func (m *Mutex) Name() string { return m.name }

// Lock blocks actor until it owns the mutex. Acquiring an uncontended
// mutex still issues a blocking simcall (spec: every wait, even one that
// resolves immediately, is a simcall, not a plain function call) so that
// monitor and replay tooling see a consistent operation boundary.
func (m *Mutex) Lock(actor *kernel.Actor) error {
	_, err := kernel.RunBlocking[struct{}](actor, "mutex_lock", func(rec *kernel.SimcallRecord) {
		m.mu.Lock()
		if !m.locked {
			m.locked = true
			m.owner = actor
			m.mu.Unlock()
			rec.Complete(struct{}{}, nil)
			actor.Engine().Unblock(actor)
			return
		}
		m.waiters = append(m.waiters, mutexWaiter{actor: actor, rec: rec})
		m.mu.Unlock()
	})
	return err
}

// TryLock attempts to acquire the mutex without blocking. It is an
// immediate simcall: it never parks the calling actor.
func (m *Mutex) TryLock(actor *kernel.Actor) (bool, error) {
	return kernel.RunImmediate(actor, "mutex_trylock", func() (bool, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.locked {
			return false, nil
		}
		m.locked = true
		m.owner = actor
		return true, nil
	})
}

// Unlock releases the mutex. If another actor is waiting, ownership passes
// directly to it (it never observes the mutex as unlocked) in FIFO order.
func (m *Mutex) Unlock(actor *kernel.Actor) error {
	_, err := kernel.RunImmediate(actor, "mutex_unlock", func() (struct{}, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if !m.locked || m.owner != actor {
			return struct{}{}, kernel.NoStateError{Kind: "mutex owner", Name: m.name}
		}

		if len(m.waiters) > 0 {
			next := m.waiters[0]
			m.waiters = m.waiters[1:]
			m.owner = next.actor
			next.rec.Complete(struct{}{}, nil)
			next.actor.Engine().Unblock(next.actor)
			return struct{}{}, nil
		}

		m.locked = false
		m.owner = nil
		return struct{}{}, nil
	})
	return err
}

// Owner returns the actor currently holding the mutex, or nil.
func (m *Mutex) Owner() *kernel.Actor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner
}

// Locked reports whether the mutex is currently held.
func (m *Mutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

// WaiterNames returns the names of actors currently blocked on Lock, in the
// FIFO order they will be granted ownership.
func (m *Mutex) WaiterNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.waiters))
	for i, w := range m.waiters {
		names[i] = w.actor.Name()
	}
	return names
}
