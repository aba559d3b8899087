package kernel

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("KernelImmediate/KernelSync/KernelAsync", func() {
	It("KernelImmediate should return fn's value without advancing the clock", func() {
		engine := NewSerialEngine()
		sim := NewSimulation(engine)

		var got int
		sim.Spawn("a", func(self *Actor) {
			v, err := KernelImmediate(self, "test_immediate", func() (int, error) {
				return 7, nil
			})
			Expect(err).NotTo(HaveOccurred())
			got = v
		}, nil)

		Expect(engine.Run()).NotTo(HaveOccurred())
		Expect(got).To(Equal(7))
		Expect(engine.CurrentTime()).To(Equal(VTime(0)))
	})

	It("KernelSync should block until the future fn returns resolves, then deliver its value", func() {
		engine := NewSerialEngine()
		sim := NewSimulation(engine)

		var got int
		var gotTime VTime
		sim.Spawn("waiter", func(self *Actor) {
			v, err := KernelSync(self, "test_sync", func() Future[int] {
				promise := NewPromise[int](self.Engine())
				ev := NewCallbackEvent(self.Engine().CurrentTime().Add(30), func() {
					promise.SetValue(42)
				})
				self.Engine().Schedule(ev)
				return promise.GetFuture()
			})
			Expect(err).NotTo(HaveOccurred())
			got = v
			gotTime = self.Engine().CurrentTime()
		}, nil)

		Expect(engine.Run()).NotTo(HaveOccurred())
		Expect(got).To(Equal(42))
		Expect(gotTime).To(Equal(VTime(30)))
	})

	It("KernelSync should compose through ThenMap (spec's timer_future().then(...) example)", func() {
		engine := NewSerialEngine()
		sim := NewSimulation(engine)

		var got int
		var gotTime VTime
		sim.Spawn("waiter", func(self *Actor) {
			v, err := KernelSync(self, "test_sync_compose", func() Future[int] {
				timer := NewPromise[struct{}](self.Engine())
				ev := NewCallbackEvent(self.Engine().CurrentTime().Add(30), func() {
					timer.SetValue(struct{}{})
				})
				self.Engine().Schedule(ev)

				return ThenMap(timer.GetFuture(), func(_ struct{}, err error) (int, error) {
					if err != nil {
						return 0, err
					}
					return 42, nil
				})
			})
			Expect(err).NotTo(HaveOccurred())
			got = v
			gotTime = self.Engine().CurrentTime()
		}, nil)

		Expect(engine.Run()).NotTo(HaveOccurred())
		Expect(got).To(Equal(42))
		Expect(gotTime).To(Equal(VTime(30)))
	})

	It("KernelAsync should return a future without blocking the caller", func() {
		engine := NewSerialEngine()
		sim := NewSimulation(engine)

		var readyImmediately bool
		var resolved int
		sim.Spawn("a", func(self *Actor) {
			var promise Promise[int]
			f, err := KernelAsync(self, "test_async", func() Future[int] {
				promise = NewPromise[int](self.Engine())
				return promise.GetFuture()
			})
			Expect(err).NotTo(HaveOccurred())

			ready, _ := f.IsReady()
			readyImmediately = ready

			promise.SetValue(9)

			v, syncErr := KernelSync(self, "test_async_wait", func() Future[int] { return f })
			Expect(syncErr).NotTo(HaveOccurred())
			resolved = v
		}, nil)

		Expect(engine.Run()).NotTo(HaveOccurred())
		Expect(readyImmediately).To(BeFalse())
		Expect(resolved).To(Equal(9))
	})
})
