package satellite

import (
	"errors"
	"fmt"
)

const (
	DefaultMass           = 300.0  // g
	DefaultTorque         = 0.0005 // motor torque
	DefaultLength         = 5.0    // cm
	DefaultHeight         = 2.0    // mm
	DefaultMaxVForReading = 0.001  // rad/tick

	DefaultGyroStdDev     = 1e-5
	DefaultAttitudeStdDev = 1e-4

	DefaultAngularVelocity = 0.3
	DefaultOrientation     = 0.3

	// accelScale converts torque/mass into rad/tick² for the chosen units.
	accelScale = 1000.0
)

var ErrInvalidConstants = errors.New("satellite: invalid physical constants")

// Constants are fixed design parameters of the body and its sensors.
type Constants struct {
	Mass           float64 `json:"mass" yaml:"mass"`
	Torque         float64 `json:"torque" yaml:"torque"`
	Length         float64 `json:"length" yaml:"length"`
	Height         float64 `json:"height" yaml:"height"`
	MaxVForReading float64 `json:"max_v_for_reading" yaml:"max_v_for_reading"`
}

func DefaultConstants() Constants {
	return Constants{
		Mass:           DefaultMass,
		Torque:         DefaultTorque,
		Length:         DefaultLength,
		Height:         DefaultHeight,
		MaxVForReading: DefaultMaxVForReading,
	}
}

func (c Constants) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"mass", c.Mass},
		{"torque", c.Torque},
		{"length", c.Length},
		{"height", c.Height},
		{"max_v_for_reading", c.MaxVForReading},
	}
	for _, ch := range checks {
		if !(ch.v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidConstants, ch.name, ch.v)
		}
	}
	return nil
}

// VelocityIncrement is the change in angular velocity produced by one tick of
// full torque.
func (c Constants) VelocityIncrement() float64 {
	return c.Torque / c.Mass * accelScale
}

// Noise holds the standard deviations of the two sensors.
type Noise struct {
	GyroStdDev     float64 `json:"gyro_stddev" yaml:"gyro"`
	AttitudeStdDev float64 `json:"attitude_stddev" yaml:"attitude"`
}

func DefaultNoise() Noise {
	return Noise{GyroStdDev: DefaultGyroStdDev, AttitudeStdDev: DefaultAttitudeStdDev}
}

// NoNoise disables both noise sources.
func NoNoise() Noise { return Noise{} }

type InitialConditions struct {
	AngularVelocity float64 `json:"angular_velocity" yaml:"angular_velocity"`
	Orientation     float64 `json:"orientation" yaml:"orientation"`
}

func DefaultInitialConditions() InitialConditions {
	return InitialConditions{AngularVelocity: DefaultAngularVelocity, Orientation: DefaultOrientation}
}

type Params struct {
	Constants Constants         `json:"constants"`
	Noise     Noise             `json:"noise"`
	Initial   InitialConditions `json:"initial"`
}

func DefaultParams() Params {
	return Params{
		Constants: DefaultConstants(),
		Noise:     DefaultNoise(),
		Initial:   DefaultInitialConditions(),
	}
}
