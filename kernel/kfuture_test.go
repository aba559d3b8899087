package kernel

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Future and Promise", func() {
	var engine *SerialEngine

	BeforeEach(func() {
		engine = NewSerialEngine()
	})

	It("should deliver a value to a continuation registered before completion", func() {
		p := NewPromise[int](engine)
		f := p.GetFuture()

		var got int
		var gotErr error
		f.Then(func(v int, err error) {
			got = v
			gotErr = err
		})

		readyBefore, err := f.IsReady()
		Expect(err).NotTo(HaveOccurred())
		Expect(readyBefore).To(BeFalse())

		p.SetValue(42)

		// Continuations only run off the ready list, never inline.
		Expect(got).To(Equal(0))

		engine.drainReady()
		Expect(got).To(Equal(42))
		Expect(gotErr).NotTo(HaveOccurred())

		readyAfter, err := f.IsReady()
		Expect(err).NotTo(HaveOccurred())
		Expect(readyAfter).To(BeTrue())
	})

	It("should deliver a value to a continuation registered after completion", func() {
		p := NewPromise[string](engine)
		f := p.GetFuture()

		p.SetValue("hello")

		var got string
		f.Then(func(v string, err error) { got = v })

		engine.drainReady()
		Expect(got).To(Equal("hello"))
	})

	It("should panic on double satisfaction", func() {
		p := NewPromise[int](engine)
		p.SetValue(1)

		Expect(func() { p.SetValue(2) }).To(PanicWith(AlreadySatisfiedError{}))
	})

	It("should carry an exception to Then", func() {
		p := NewPromise[int](engine)
		f := p.GetFuture()

		boom := FatalError{Reason: "boom"}
		p.SetException(boom)

		var gotErr error
		f.Then(func(v int, err error) { gotErr = err })

		engine.drainReady()
		Expect(gotErr).To(Equal(error(boom)))
	})

	It("should report TryGet without blocking", func() {
		p := NewPromise[int](engine)
		f := p.GetFuture()

		_, _, ok := f.TryGet()
		Expect(ok).To(BeFalse())

		p.SetValue(7)
		v, err, ok := f.TryGet()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(7))
		Expect(err).NotTo(HaveOccurred())
	})

	It("should fail with NoStateError rather than panic on a zero Future", func() {
		var f Future[int]
		Expect(f.Valid()).To(BeFalse())

		_, err := f.IsReady()
		Expect(err).To(Equal(error(NoStateError{Kind: "future", Name: ""})))

		_, err, ok := f.TryGet()
		Expect(ok).To(BeFalse())
		Expect(err).To(Equal(error(NoStateError{Kind: "future", Name: ""})))

		var gotErr error
		f.Then(func(_ int, err error) { gotErr = err })
		Expect(gotErr).To(Equal(error(NoStateError{Kind: "future", Name: ""})))
	})

	It("should chain a new future whose value is the continuation's result", func() {
		p := NewPromise[int](engine)
		f := p.GetFuture()

		chained := ThenMap(f, func(v int, err error) (string, error) {
			if err != nil {
				return "", err
			}
			return "got-42", nil
		})

		ready, err := chained.IsReady()
		Expect(err).NotTo(HaveOccurred())
		Expect(ready).To(BeFalse())

		p.SetValue(42)
		engine.drainReady()

		v, err, ok := chained.TryGet()
		Expect(ok).To(BeTrue())
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("got-42"))
	})

	It("should carry an exception through ThenMap", func() {
		p := NewPromise[int](engine)
		f := p.GetFuture()

		boom := FatalError{Reason: "boom"}
		chained := ThenMap(f, func(v int, err error) (string, error) {
			return "", err
		})

		p.SetException(boom)
		engine.drainReady()

		_, err, ok := chained.TryGet()
		Expect(ok).To(BeTrue())
		Expect(err).To(Equal(error(boom)))
	})

	It("should resolve ThenMap immediately with NoStateError off an invalid future", func() {
		var f Future[int]
		chained := ThenMap(f, func(v int, err error) (string, error) {
			return "", err
		})

		ready, err := chained.IsReady()
		Expect(err).NotTo(HaveOccurred())
		Expect(ready).To(BeTrue())

		_, err, ok := chained.TryGet()
		Expect(ok).To(BeTrue())
		Expect(err).To(Equal(error(NoStateError{Kind: "future", Name: ""})))
	})
})
