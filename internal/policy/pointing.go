package policy

import (
	"math"

	"github.com/san-kum/satsim/internal/satellite"
)

const (
	DefaultPointingGain    = 0.05
	DefaultPointingMaxRate = 0.01
)

// Pointing slews the body to Target radians and holds it there.
//
// Absolute readings only arrive while the body is nearly still, so between
// them the attitude is dead-reckoned by summing gyro readings. Until the first
// reading the policy detumbles.
type Pointing struct {
	Target  float64
	Gain    float64 // commanded rate per radian of error
	MaxRate float64 // rad/tick

	increment float64
	estimate  float64
	known     bool
	started   bool
}

func NewPointing(target float64, c satellite.Constants) *Pointing {
	return &Pointing{
		Target:    satellite.NormalizeAngle(target),
		Gain:      DefaultPointingGain,
		MaxRate:   DefaultPointingMaxRate,
		increment: c.VelocityIncrement(),
	}
}

// Estimate returns the dead-reckoned attitude and whether it is known yet.
func (p *Pointing) Estimate() (float64, bool) { return p.estimate, p.known }

func (p *Pointing) Act(obs satellite.Observation) satellite.Action {
	// The first observation precedes any tick; its reading is a placeholder.
	if !p.started {
		p.started = true
		return satellite.Rest
	}

	if obs.Fresh() {
		p.estimate = obs.LastAttitudeReading
		p.known = true
	} else if p.known {
		p.estimate = satellite.NormalizeAngle(p.estimate + obs.Gyros[0])
	}

	rate := meanRate(obs)
	deadband := p.increment / 2
	if !p.known {
		return brake(rate, deadband)
	}

	desired := p.Gain * angleError(p.Target, p.estimate)
	desired = math.Max(-p.MaxRate, math.Min(p.MaxRate, desired))

	switch diff := desired - rate; {
	case diff > deadband:
		return satellite.ClockwiseTorque
	case diff < -deadband:
		return satellite.CounterClockwiseTorque
	}
	return satellite.Rest
}

// angleError returns target-current wrapped to [-π, π).
func angleError(target, current float64) float64 {
	return satellite.NormalizeAngle(target-current+math.Pi) - math.Pi
}
