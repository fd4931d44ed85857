package satellite

import (
	"math"
	"math/rand"
)

// GyroHistoryLen is the number of gyro readings retained.
const GyroHistoryLen = 5

const twoPi = 2 * math.Pi

// Observation is the sensor-observable part of the state.
type Observation struct {
	Gyros               [GyroHistoryLen]float64 `json:"gyros"`
	LastAttitudeReading float64                 `json:"last_attitude_reading"`
	TicksSinceReading   int                     `json:"ticks_since_reading"`
}

// Fresh reports whether the attitude reading was refreshed on the last tick.
func (o Observation) Fresh() bool { return o.TicksSinceReading == 0 }

// Snapshot is the read-only view handed to renderers. It carries ground truth
// and must never be used for control.
type Snapshot struct {
	Orientation float64 `json:"orientation"`
	Length      float64 `json:"length"`
	Height      float64 `json:"height"`
}

type Simulator struct {
	params Params
	seed   int64
	rng    *rand.Rand

	angularVelocity float64
	orientation     float64
	gyros           [GyroHistoryLen]float64
	lastReading     float64
	ticksSince      int
}

func New(p Params, seed int64) *Simulator {
	s := &Simulator{params: p, seed: seed}
	s.Reset()
	return s
}

func NewDefault(seed int64) *Simulator {
	return New(DefaultParams(), seed)
}

// Reset restores the construction-time state, noise generator included.
func (s *Simulator) Reset() {
	s.rng = rand.New(rand.NewSource(s.seed))
	s.angularVelocity = s.params.Initial.AngularVelocity
	s.orientation = s.params.Initial.Orientation
	s.gyros = [GyroHistoryLen]float64{}
	s.lastReading = 0
	s.ticksSince = 0
}

func (s *Simulator) Seed() int64    { return s.seed }
func (s *Simulator) Params() Params { return s.params }

func (s *Simulator) State() Observation {
	return Observation{
		Gyros:               s.gyros,
		LastAttitudeReading: s.lastReading,
		TicksSinceReading:   s.ticksSince,
	}
}

func (s *Simulator) Snapshot() Snapshot {
	return Snapshot{
		Orientation: s.orientation,
		Length:      s.params.Constants.Length,
		Height:      s.params.Constants.Height,
	}
}

// Step advances the body by one tick under action a.
func (s *Simulator) Step(a Action) {
	c := s.params.Constants

	torque := a.torque(c.Torque)
	s.angularVelocity += torque / c.Mass * accelScale
	s.orientation += s.angularVelocity

	gyro := s.angularVelocity + s.rng.NormFloat64()*s.params.Noise.GyroStdDev
	copy(s.gyros[1:], s.gyros[:GyroHistoryLen-1])
	s.gyros[0] = gyro

	// Gyro then attitude: both draws happen every tick, gated or not.
	attNoise := s.rng.NormFloat64() * s.params.Noise.AttitudeStdDev
	if math.Abs(s.angularVelocity) < c.MaxVForReading {
		s.lastReading = NormalizeAngle(s.orientation + attNoise)
		s.ticksSince = 0
	} else {
		s.ticksSince++
	}
}

// NormalizeAngle maps x into [0, 2π).
func NormalizeAngle(x float64) float64 {
	r := math.Mod(x, twoPi)
	if r < 0 {
		r += twoPi
	}
	// -1e-17 + 2π rounds to 2π.
	if r >= twoPi {
		r = 0
	}
	return r
}
