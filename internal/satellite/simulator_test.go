package satellite

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func noiseless(init InitialConditions) Params {
	p := DefaultParams()
	p.Noise = NoNoise()
	p.Initial = init
	return p
}

var _ = Describe("Simulator", func() {
	var sat *Simulator

	BeforeEach(func() {
		sat = New(noiseless(DefaultInitialConditions()), 1)
	})

	Describe("construction", func() {
		It("starts tumbling with an empty sensor history", func() {
			Expect(sat.angularVelocity).To(Equal(0.3))
			Expect(sat.orientation).To(Equal(0.3))

			obs := sat.State()
			Expect(obs.Gyros).To(Equal([GyroHistoryLen]float64{}))
			Expect(obs.LastAttitudeReading).To(BeZero())
			Expect(obs.TicksSinceReading).To(BeZero())
		})

		It("exposes body dimensions and true orientation to renderers", func() {
			snap := sat.Snapshot()
			Expect(snap.Orientation).To(Equal(0.3))
			Expect(snap.Length).To(Equal(DefaultLength))
			Expect(snap.Height).To(Equal(DefaultHeight))
		})
	})

	Describe("Step", func() {
		It("matches the counter-clockwise scenario", func() {
			sat.Step(CounterClockwiseTorque)

			Expect(sat.angularVelocity).To(BeNumerically("~", 0.3-0.0005/300*1000, 1e-12))
			Expect(sat.angularVelocity).To(BeNumerically("~", 0.298333, 1e-6))
			Expect(sat.orientation).To(BeNumerically("~", 0.598333, 1e-6))

			obs := sat.State()
			Expect(obs.Gyros[0]).To(BeNumerically("~", 0.298333, 1e-6))
			Expect(obs.LastAttitudeReading).To(BeZero())
			Expect(obs.TicksSinceReading).To(Equal(1))
		})

		DescribeTable("torque sign relative to rest",
			func(a Action, sign float64) {
				rest := New(noiseless(DefaultInitialConditions()), 1)
				rest.Step(Rest)
				sat.Step(a)

				inc := DefaultConstants().VelocityIncrement()
				Expect(sat.angularVelocity - rest.angularVelocity).To(BeNumerically("~", sign*inc, 1e-12))
			},
			Entry("clockwise increases", ClockwiseTorque, 1.0),
			Entry("counter-clockwise decreases", CounterClockwiseTorque, -1.0),
			Entry("rest leaves velocity alone", Rest, 0.0),
		)

		It("applies the same increment every tick", func() {
			inc := DefaultConstants().VelocityIncrement()
			prev := sat.angularVelocity
			for i := 0; i < 10; i++ {
				sat.Step(ClockwiseTorque)
				Expect(sat.angularVelocity - prev).To(BeNumerically("~", inc, 1e-12))
				prev = sat.angularVelocity
			}
		})

		It("applies no torque for values outside the action set", func() {
			sat.Step(Action(7))
			Expect(sat.angularVelocity).To(Equal(0.3))
		})

		It("keeps exactly five gyro readings, most recent first", func() {
			actions := []Action{ClockwiseTorque, ClockwiseTorque, Rest, CounterClockwiseTorque, Rest, ClockwiseTorque, Rest}
			var truth []float64
			for _, a := range actions {
				sat.Step(a)
				truth = append(truth, sat.angularVelocity)

				obs := sat.State()
				Expect(obs.Gyros).To(HaveLen(GyroHistoryLen))
				for i := 0; i < GyroHistoryLen && i < len(truth); i++ {
					Expect(obs.Gyros[i]).To(Equal(truth[len(truth)-1-i]))
				}
			}
		})
	})

	Describe("attitude gating", func() {
		It("refreshes the reading every tick while slow", func() {
			sat = New(noiseless(InitialConditions{AngularVelocity: 0.0005, Orientation: 1.0}), 1)

			prev := sat.State().LastAttitudeReading
			for i := 0; i < 20; i++ {
				sat.Step(Rest)
				obs := sat.State()
				Expect(obs.TicksSinceReading).To(BeZero())
				Expect(obs.LastAttitudeReading).NotTo(Equal(prev))
				Expect(obs.LastAttitudeReading).To(BeNumerically("~", NormalizeAngle(sat.orientation), 1e-12))
				prev = obs.LastAttitudeReading
			}
		})

		It("goes stale at or above the threshold", func() {
			sat = New(noiseless(InitialConditions{AngularVelocity: DefaultMaxVForReading, Orientation: 1.0}), 1)

			for i := 1; i <= 20; i++ {
				sat.Step(Rest)
				obs := sat.State()
				Expect(obs.TicksSinceReading).To(Equal(i))
				Expect(obs.LastAttitudeReading).To(BeZero())
			}
		})

		It("resets staleness once the body slows down", func() {
			sat = New(noiseless(InitialConditions{AngularVelocity: 0.0015, Orientation: 0}), 1)
			sat.Step(Rest)
			sat.Step(Rest)
			Expect(sat.State().TicksSinceReading).To(Equal(2))

			sat.Step(CounterClockwiseTorque)
			Expect(math.Abs(sat.angularVelocity)).To(BeNumerically("<", DefaultMaxVForReading))
			Expect(sat.State().TicksSinceReading).To(BeZero())
		})
	})

	Describe("normalization", func() {
		DescribeTable("keeps readings in [0, 2π)",
			func(orientation, want float64) {
				sat = New(noiseless(InitialConditions{Orientation: orientation}), 1)
				sat.Step(Rest)
				got := sat.State().LastAttitudeReading
				Expect(got).To(BeNumerically(">=", 0))
				Expect(got).To(BeNumerically("<", 2*math.Pi))
				Expect(got).To(BeNumerically("~", want, 1e-12))
			},
			Entry("negative", -0.2, 2*math.Pi-0.2),
			Entry("above 2π", 7.0, 7.0-2*math.Pi),
			Entry("many turns negative", -20.0, -20.0+4*2*math.Pi),
			Entry("zero", 0.0, 0.0),
		)

		It("holds with noise on", func() {
			p := DefaultParams()
			p.Initial = InitialConditions{Orientation: 0}
			sat = New(p, 99)
			for i := 0; i < 500; i++ {
				sat.Step(Rest)
				got := sat.State().LastAttitudeReading
				Expect(got).To(BeNumerically(">=", 0))
				Expect(got).To(BeNumerically("<", 2*math.Pi))
			}
		})

		It("maps values that round up to 2π onto zero", func() {
			Expect(NormalizeAngle(-1e-17)).To(BeNumerically("<", 2*math.Pi))
			Expect(NormalizeAngle(2 * math.Pi)).To(BeZero())
		})
	})

	Describe("determinism", func() {
		actions := []Action{ClockwiseTorque, Rest, CounterClockwiseTorque, CounterClockwiseTorque, Rest, ClockwiseTorque}

		run := func(s *Simulator) ([]Observation, []Snapshot) {
			var obs []Observation
			var snaps []Snapshot
			for i := 0; i < 300; i++ {
				s.Step(actions[i%len(actions)])
				obs = append(obs, s.State())
				snaps = append(snaps, s.Snapshot())
			}
			return obs, snaps
		}

		It("reproduces trajectories exactly without noise", func() {
			o1, s1 := run(New(noiseless(DefaultInitialConditions()), 1))
			o2, s2 := run(New(noiseless(DefaultInitialConditions()), 2))
			Expect(o1).To(Equal(o2))
			Expect(s1).To(Equal(s2))
		})

		It("reproduces noisy trajectories for equal seeds", func() {
			o1, s1 := run(NewDefault(42))
			o2, s2 := run(NewDefault(42))
			Expect(o1).To(Equal(o2))
			Expect(s1).To(Equal(s2))
		})

		It("diverges for different seeds", func() {
			o1, _ := run(NewDefault(42))
			o2, _ := run(NewDefault(43))
			Expect(o1).NotTo(Equal(o2))
		})

		It("draws gyro then attitude noise on every tick, gated or not", func() {
			p := DefaultParams()
			p.Initial = InitialConditions{AngularVelocity: 0.0015, Orientation: 1.0}
			s := New(p, 5)
			rng := rand.New(rand.NewSource(5))

			for _, a := range []Action{Rest, Rest, CounterClockwiseTorque} {
				s.Step(a)
				gyroNoise, attNoise := rng.NormFloat64(), rng.NormFloat64()
				Expect(s.State().Gyros[0]).To(Equal(s.angularVelocity + gyroNoise*p.Noise.GyroStdDev))
				if s.State().Fresh() {
					Expect(s.State().LastAttitudeReading).To(Equal(NormalizeAngle(s.orientation + attNoise*p.Noise.AttitudeStdDev)))
				}
			}
			Expect(s.State().TicksSinceReading).To(BeZero())
		})

		It("restores construction state on Reset", func() {
			s := NewDefault(7)
			first, _ := run(s)
			s.Reset()
			Expect(s.State()).To(Equal(Observation{}))
			Expect(s.Snapshot().Orientation).To(Equal(DefaultOrientation))
			second, _ := run(s)
			Expect(second).To(Equal(first))
		})
	})
})
