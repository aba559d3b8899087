package afuture

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/loomsim/loom/kernel"
)

var _ = Describe("Wait", func() {
	It("should fan a single kernel future out to several waiting actors", func() {
		engine := kernel.NewSerialEngine()
		sim := kernel.NewSimulation(engine)

		promise := kernel.NewPromise[int](engine)
		future := promise.GetFuture()

		var mu sync.Mutex
		results := make([]int, 0, 3)

		consumer := func(name string) kernel.ActorProc {
			return func(self *kernel.Actor) {
				v, err := Wait(self, future, 0)
				Expect(err).NotTo(HaveOccurred())
				mu.Lock()
				results = append(results, v)
				mu.Unlock()
			}
		}

		sim.Spawn("c1", consumer("c1"), nil)
		sim.Spawn("c2", consumer("c2"), nil)
		sim.Spawn("c3", consumer("c3"), nil)

		sim.Spawn("producer", func(self *kernel.Actor) {
			promise.SetValue(99)
		}, nil)

		Expect(engine.Run()).NotTo(HaveOccurred())
		Expect(results).To(ConsistOf(99, 99, 99))
	})

	It("should time out if the future is never satisfied", func() {
		engine := kernel.NewSerialEngine()
		sim := kernel.NewSimulation(engine)

		promise := kernel.NewPromise[int](engine)
		future := promise.GetFuture()

		var gotErr error
		sim.Spawn("waiter", func(self *kernel.Actor) {
			_, gotErr = Wait(self, future, 3)
		}, nil)

		Expect(engine.Run()).NotTo(HaveOccurred())
		Expect(gotErr).To(Equal(error(kernel.TimeoutError{Op: "future_wait"})))
		Expect(engine.CurrentTime()).To(Equal(kernel.VTime(3)))
	})
})
