package policy

import (
	"math"

	"github.com/san-kum/satsim/internal/satellite"
)

// Detumble brakes the body using the mean of the gyro history.
type Detumble struct {
	Deadband float64
}

func NewDetumble(deadband float64) *Detumble {
	return &Detumble{Deadband: deadband}
}

// NewDetumbleFor picks a deadband of half a velocity increment, which lets the
// body come to rest within one increment of zero.
func NewDetumbleFor(c satellite.Constants) *Detumble {
	return NewDetumble(c.VelocityIncrement() / 2)
}

func (d *Detumble) Act(obs satellite.Observation) satellite.Action {
	rate := meanRate(obs)
	return brake(rate, d.Deadband)
}

func brake(rate, deadband float64) satellite.Action {
	switch {
	case rate > deadband:
		return satellite.CounterClockwiseTorque
	case rate < -deadband:
		return satellite.ClockwiseTorque
	}
	return satellite.Rest
}

// meanRate averages the gyro history. The first tick after a torque change
// mixes old and new rates, so only readings matching the newest within a
// tolerance are used.
func meanRate(obs satellite.Observation) float64 {
	newest := obs.Gyros[0]
	sum, n := 0.0, 0
	for _, g := range obs.Gyros {
		if math.Abs(g-newest) > rateTolerance {
			break
		}
		sum += g
		n++
	}
	return sum / float64(n)
}

// rateTolerance is well above gyro noise (1e-5) and well below one velocity
// increment (1.67e-3).
const rateTolerance = 2e-4
