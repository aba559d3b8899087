package simsync

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/loomsim/loom/kernel"
)

var _ = Describe("Mutex", func() {
	It("should serialize two actors contending for the same critical section", func() {
		engine := kernel.NewSerialEngine()
		sim := kernel.NewSimulation(engine)
		mu := NewMutex(sim, "M")

		var mutOrder []string
		var lock sync.Mutex
		record := func(s string) {
			lock.Lock()
			mutOrder = append(mutOrder, s)
			lock.Unlock()
		}

		worker := func(name string) kernel.ActorProc {
			return func(self *kernel.Actor) {
				Expect(mu.Lock(self)).To(Succeed())
				record(name + ":enter")
				Expect(SleepFor(self, 1)).To(Succeed())
				record(name + ":exit")
				Expect(mu.Unlock(self)).To(Succeed())
			}
		}

		sim.Spawn("w1", worker("w1"), nil)
		sim.Spawn("w2", worker("w2"), nil)

		Expect(engine.Run()).NotTo(HaveOccurred())

		// Whichever actor gets in first must fully exit before the other
		// can enter: entries and exits must not interleave.
		Expect(mutOrder).To(HaveLen(4))
		first := mutOrder[0][:2]
		Expect(mutOrder[0]).To(Equal(first + ":enter"))
		Expect(mutOrder[1]).To(Equal(first + ":exit"))
	})

	It("should grant the mutex in FIFO order among waiters", func() {
		engine := kernel.NewSerialEngine()
		sim := kernel.NewSimulation(engine)
		mu := NewMutex(sim, "M")

		var order []string
		var lock sync.Mutex

		holder := sim.Spawn("holder", func(self *kernel.Actor) {
			Expect(mu.Lock(self)).To(Succeed())
			Expect(SleepFor(self, 3)).To(Succeed())
			Expect(mu.Unlock(self)).To(Succeed())
		}, nil)
		_ = holder

		for _, name := range []string{"first", "second", "third"} {
			name := name
			sim.Spawn(name, func(self *kernel.Actor) {
				// Let the holder take the lock first.
				Expect(SleepFor(self, 1)).To(Succeed())
				Expect(mu.Lock(self)).To(Succeed())
				lock.Lock()
				order = append(order, name)
				lock.Unlock()
				Expect(mu.Unlock(self)).To(Succeed())
			}, nil)
		}

		Expect(engine.Run()).NotTo(HaveOccurred())
		Expect(order).To(Equal([]string{"first", "second", "third"}))
	})

	It("should report locked state and owner", func() {
		engine := kernel.NewSerialEngine()
		sim := kernel.NewSimulation(engine)
		mu := NewMutex(sim, "M")

		sim.Spawn("w", func(self *kernel.Actor) {
			Expect(mu.Locked()).To(BeFalse())
			Expect(mu.Lock(self)).To(Succeed())
			Expect(mu.Locked()).To(BeTrue())
			Expect(mu.Owner()).To(Equal(self))
			Expect(mu.Unlock(self)).To(Succeed())
		}, nil)

		Expect(engine.Run()).NotTo(HaveOccurred())
	})
})
