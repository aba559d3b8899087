package kernel

import (
	"sort"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// sleepViaSimcall is a minimal stand-in for simsync.SleepFor, written
// directly against RunBlocking so the kernel package's own tests do not
// need to import simsync (which imports kernel).
func sleepViaSimcall(a *Actor, d Duration) {
	_, _ = RunBlocking[struct{}](a, "test_sleep", func(rec *SimcallRecord) {
		ev := NewCallbackEvent(a.Engine().CurrentTime().Add(d), func() {
			rec.Complete(struct{}{}, nil)
			a.Engine().Unblock(a)
		})
		a.Engine().Schedule(ev)
	})
}

var _ = Describe("SerialEngine", func() {
	It("should advance simulated time across a sleeping actor", func() {
		engine := NewSerialEngine()
		sim := NewSimulation(engine)

		sim.Spawn("sleeper", func(self *Actor) {
			sleepViaSimcall(self, 5)
		}, nil)

		err := engine.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(engine.CurrentTime()).To(Equal(VTime(5)))
	})

	It("should run two actors that take turns via immediate simcalls", func() {
		engine := NewSerialEngine()
		sim := NewSimulation(engine)

		var mu sync.Mutex
		var order []string

		record := func(name string) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}

		sim.Spawn("a", func(self *Actor) {
			_, _ = RunImmediate(self, "record", func() (struct{}, error) {
				record("a")
				return struct{}{}, nil
			})
		}, nil)
		sim.Spawn("b", func(self *Actor) {
			_, _ = RunImmediate(self, "record", func() (struct{}, error) {
				record("b")
				return struct{}{}, nil
			})
		}, nil)

		Expect(engine.Run()).NotTo(HaveOccurred())

		sort.Strings(order)
		Expect(order).To(Equal([]string{"a", "b"}))
	})

	It("should detect deadlock when an actor blocks with nothing to wake it", func() {
		engine := NewSerialEngine()
		sim := NewSimulation(engine)

		sim.Spawn("stuck", func(self *Actor) {
			_, _ = RunBlocking[struct{}](self, "stuck_forever", func(rec *SimcallRecord) {
				// Deliberately never completed and never scheduled.
			})
		}, nil)

		err := engine.Run()
		Expect(err).To(HaveOccurred())

		var deadlock DeadlockError
		Expect(err).To(BeAssignableToTypeOf(deadlock))
		Expect(err.(DeadlockError).BlockedActors).To(Equal([]string{"stuck"}))
	})

	It("should run cleanup and terminate the actor once its proc returns", func() {
		engine := NewSerialEngine()
		sim := NewSimulation(engine)

		cleaned := false
		a := sim.Spawn("short-lived", func(self *Actor) {}, func() { cleaned = true })

		Expect(engine.Run()).NotTo(HaveOccurred())
		Expect(cleaned).To(BeTrue())
		Expect(a.Terminated()).To(BeTrue())
	})
})

var _ = Describe("ParallelEngine", func() {
	It("should produce the same final state as SerialEngine for a fan-out workload", func() {
		runWith := func(newEngine func() Engine) int {
			engine := newEngine()
			sim := NewSimulation(engine)

			var mu sync.Mutex
			total := 0

			for i := 0; i < 20; i++ {
				sim.Spawn(actorName(i), func(self *Actor) {
					_, _ = RunImmediate(self, "increment", func() (struct{}, error) {
						mu.Lock()
						total++
						mu.Unlock()
						return struct{}{}, nil
					})
				}, nil)
			}

			Expect(engine.Run()).NotTo(HaveOccurred())
			return total
		}

		serialTotal := runWith(func() Engine { return NewSerialEngine() })
		parallelTotal := runWith(func() Engine { return NewParallelEngine(4) })

		Expect(serialTotal).To(Equal(20))
		Expect(parallelTotal).To(Equal(20))
	})
})

func actorName(i int) string {
	return "actor_" + string(rune('A'+i))
}
