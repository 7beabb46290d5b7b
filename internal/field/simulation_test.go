package field_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/metaball/internal/field"
)

// maxAxisSpeed is the largest velocity component New can draw.
const maxAxisSpeed = 0.5 * field.SpeedScale

func fixedSources(pos r2.Vec, vel r2.Vec) []field.Source {
	out := make([]field.Source, field.SourceCount)
	for i := range out {
		out[i] = field.NewSource(pos, vel, 0.5)
	}
	return out
}

var _ = Describe("Simulation", func() {
	var rng *rand.Rand

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(7))
	})

	Describe("construction", func() {
		It("draws sources inside their documented ranges", func() {
			sim := field.New(rng)
			for _, src := range sim.Sources() {
				Expect(src.Position.X).To(BeNumerically(">=", 0))
				Expect(src.Position.X).To(BeNumerically("<", 1))
				Expect(src.Position.Y).To(BeNumerically(">=", 0))
				Expect(src.Position.Y).To(BeNumerically("<", 1))
				Expect(math.Abs(src.Velocity.X)).To(BeNumerically("<=", maxAxisSpeed))
				Expect(math.Abs(src.Velocity.Y)).To(BeNumerically("<=", maxAxisSpeed))
				Expect(src.Size()).To(BeNumerically(">=", field.MinSize))
				Expect(src.Size()).To(BeNumerically("<", field.MaxSize))
			}
		})

		It("starts running with a zero clock", func() {
			sim := field.New(rng)
			Expect(sim.Running()).To(BeTrue())
			Expect(sim.Time()).To(BeZero())
			Expect(sim.Steps()).To(BeZero())
		})

		DescribeTable("rejects source counts other than four",
			func(n int) {
				sim, err := field.NewWithCount(n, rng)
				Expect(err).To(MatchError(field.ErrSourceCount))
				Expect(sim).To(BeNil())
			},
			Entry("zero", 0),
			Entry("three", 3),
			Entry("five", 5),
		)

		It("accepts exactly four sources", func() {
			sim, err := field.NewWithCount(field.SourceCount, rng)
			Expect(err).NotTo(HaveOccurred())
			Expect(sim.Sources()).To(HaveLen(field.SourceCount))
		})

		It("rejects explicit source lists of the wrong length", func() {
			_, err := field.NewFromSources(fixedSources(r2.Vec{X: 0.5, Y: 0.5}, r2.Vec{})[:2])
			Expect(err).To(MatchError(field.ErrSourceCount))
		})

		It("rejects sizes outside the weight range", func() {
			sources := fixedSources(r2.Vec{X: 0.5, Y: 0.5}, r2.Vec{})
			sources[2] = field.NewSource(r2.Vec{X: 0.5, Y: 0.5}, r2.Vec{}, 1.1)
			_, err := field.NewFromSources(sources)
			Expect(err).To(MatchError(field.ErrSourceSize))
		})
	})

	Describe("stepping", func() {
		It("integrates position by velocity", func() {
			sim, err := field.NewFromSources(fixedSources(r2.Vec{X: 0.5, Y: 0.5}, r2.Vec{X: 0.004, Y: -0.002}))
			Expect(err).NotTo(HaveOccurred())

			sim.Step(0.1)

			for _, p := range sim.Snapshot().Positions {
				Expect(p.X).To(BeNumerically("~", 0.504, 1e-12))
				Expect(p.Y).To(BeNumerically("~", 0.498, 1e-12))
			}
		})

		It("reflects the x axis without touching y", func() {
			sim, err := field.NewFromSources(fixedSources(r2.Vec{X: 0.998, Y: 0.5}, r2.Vec{X: 0.004, Y: 0.003}))
			Expect(err).NotTo(HaveOccurred())

			sim.Step(0)

			for _, src := range sim.Sources() {
				Expect(src.Velocity.X).To(Equal(-0.004))
				Expect(src.Velocity.Y).To(Equal(0.003))
			}
		})

		It("reflects the y axis without touching x", func() {
			sim, err := field.NewFromSources(fixedSources(r2.Vec{X: 0.5, Y: 0.001}, r2.Vec{X: -0.002, Y: -0.004}))
			Expect(err).NotTo(HaveOccurred())

			sim.Step(0)

			for _, src := range sim.Sources() {
				Expect(src.Velocity.X).To(Equal(-0.002))
				Expect(src.Velocity.Y).To(Equal(0.004))
			}
		})

		It("leaves the overshoot in place after reflecting", func() {
			sim, err := field.NewFromSources(fixedSources(r2.Vec{X: 0.998, Y: 0.5}, r2.Vec{X: 0.004, Y: 0}))
			Expect(err).NotTo(HaveOccurred())

			sim.Step(0)
			Expect(sim.Snapshot().Positions[0].X).To(BeNumerically("~", 1.002, 1e-12))
			Expect(sim.MaxExcursion()).To(BeNumerically("~", 0.002, 1e-12))

			sim.Step(0)
			Expect(sim.Snapshot().Positions[0].X).To(BeNumerically("~", 0.998, 1e-12))
		})

		It("keeps every source within one step of the box", func() {
			for seed := int64(0); seed < 20; seed++ {
				sim := field.New(rand.New(rand.NewSource(seed)))
				for i := 0; i < 5000; i++ {
					sim.Step(1.0 / 60)
					Expect(sim.MaxExcursion()).To(BeNumerically("<=", maxAxisSpeed+1e-12))
				}
			}
		})

		It("never changes sizes", func() {
			sim := field.New(rng)
			before := sim.Sources()
			sim.Advance(1000, 0.01)
			after := sim.Sources()
			for i := range before {
				Expect(after[i].Size()).To(Equal(before[i].Size()))
			}
		})

		It("advances the clock by the supplied increment", func() {
			sim := field.New(rng)
			sim.Advance(4, 0.25)
			Expect(sim.Time()).To(BeNumerically("~", 1.0, 1e-12))
			Expect(sim.Steps()).To(Equal(4))
			Expect(sim.Snapshot().Step).To(Equal(4))
		})
	})

	Describe("snapshots", func() {
		It("are detached from later steps", func() {
			sim := field.New(rng)
			snap := sim.Snapshot()
			sim.Advance(10, 0.01)
			Expect(sim.Snapshot().Positions).NotTo(Equal(snap.Positions))
			Expect(snap.Step).To(BeZero())
		})
	})

	Describe("running state", func() {
		It("toggles between running and stopped", func() {
			sim := field.New(rng)
			sim.Stop()
			Expect(sim.Running()).To(BeFalse())
			sim.Toggle()
			Expect(sim.Running()).To(BeTrue())
			sim.Toggle()
			sim.Start()
			Expect(sim.Running()).To(BeTrue())
		})
	})
})

var _ = Describe("Excursion", func() {
	DescribeTable("measures distance outside the unit square",
		func(p r2.Vec, want float64) {
			Expect(field.Excursion(p)).To(BeNumerically("~", want, 1e-12))
		},
		Entry("inside", r2.Vec{X: 0.3, Y: 0.7}, 0.0),
		Entry("on the wall", r2.Vec{X: 1, Y: 0}, 0.0),
		Entry("left", r2.Vec{X: -0.003, Y: 0.5}, 0.003),
		Entry("top", r2.Vec{X: 0.5, Y: 1.004}, 0.004),
		Entry("corner takes the larger axis", r2.Vec{X: -0.001, Y: 1.002}, 0.002),
	)
})
