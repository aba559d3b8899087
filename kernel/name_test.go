package kernel

import (
	"sort"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Name", func() {
	It("should parse a flat token with no indices", func() {
		n := ParseName("Worker")
		Expect(n.Tokens).To(HaveLen(1))
		Expect(n.Tokens[0]).To(Equal(NameToken{ElemName: "Worker", Index: []int{}}))
	})

	It("should parse a dotted, indexed name into its tokens", func() {
		n := ParseName("Cluster[2].Worker[0]")
		Expect(n.Tokens).To(HaveLen(2))
		Expect(n.Tokens[0]).To(Equal(NameToken{ElemName: "Cluster", Index: []int{2}}))
		Expect(n.Tokens[1]).To(Equal(NameToken{ElemName: "Worker", Index: []int{0}}))
	})

	It("should parse a multi-dimensional index", func() {
		n := ParseName("Tile[1][2]")
		Expect(n.Tokens).To(HaveLen(1))
		Expect(n.Tokens[0]).To(Equal(NameToken{ElemName: "Tile", Index: []int{1, 2}}))
	})

	It("should panic on mismatched brackets", func() {
		Expect(func() { ParseName("Worker[0") }).To(Panic())
	})

	It("should build names that round-trip through ParseName", func() {
		built := BuildNameWithIndex("Cluster", "Worker", 3)
		Expect(built).To(Equal("Cluster.Worker[3]"))

		n := ParseName(built)
		Expect(n.Tokens).To(HaveLen(2))
		Expect(n.Tokens[1]).To(Equal(NameToken{ElemName: "Worker", Index: []int{3}}))
	})

	It("should build a root-level name unchanged when the parent is empty", func() {
		Expect(BuildName("", "Root")).To(Equal("Root"))
	})

	It("should build multi-dimensional indexed names", func() {
		Expect(BuildNameWithMultiDimensionalIndex("Grid", "Tile", []int{1, 2})).To(Equal("Grid.Tile[1][2]"))
	})
})

var _ = Describe("Simulation.SpawnPool", func() {
	It("should spawn count actors named via BuildNameWithIndex", func() {
		engine := NewSerialEngine()
		sim := NewSimulation(engine)

		var mu sync.Mutex
		var seen []string

		actors := sim.SpawnPool("Pool", "Worker", 3, func(i int) ActorProc {
			return func(self *Actor) {
				mu.Lock()
				seen = append(seen, self.Name())
				mu.Unlock()
			}
		}, nil)

		Expect(actors).To(HaveLen(3))
		Expect(actors[0].Name()).To(Equal("Pool.Worker[0]"))
		Expect(actors[1].Name()).To(Equal("Pool.Worker[1]"))
		Expect(actors[2].Name()).To(Equal("Pool.Worker[2]"))

		Expect(engine.Run()).NotTo(HaveOccurred())

		sort.Strings(seen)
		Expect(seen).To(Equal([]string{"Pool.Worker[0]", "Pool.Worker[1]", "Pool.Worker[2]"}))
	})
})
