package kernel

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CallbackEvent", func() {
	It("should invoke its callback when handled", func() {
		called := false
		e := NewCallbackEvent(VTime(3), func() { called = true })

		Expect(e.Time()).To(Equal(VTime(3)))
		Expect(e.Handler()).To(Equal(Handler(e)))

		err := e.Handle(e)
		Expect(err).NotTo(HaveOccurred())
		Expect(called).To(BeTrue())
	})

	It("should not invoke its callback once cancelled", func() {
		called := false
		e := NewCallbackEvent(VTime(3), func() { called = true })

		e.Cancel()
		Expect(e.Cancelled()).To(BeTrue())

		err := e.Handle(e)
		Expect(err).NotTo(HaveOccurred())
		Expect(called).To(BeFalse())
	})

	It("should mark secondary events", func() {
		e := NewCallbackEvent(VTime(0), func() {})
		Expect(e.IsSecondary()).To(BeFalse())
		e.MarkSecondary()
		Expect(e.IsSecondary()).To(BeTrue())
	})
})
