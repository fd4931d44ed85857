package metrics

import (
	"math"

	"github.com/san-kum/satsim/internal/episode"
)

// Availability is the fraction of ticks that produced a fresh attitude reading.
type Availability struct {
	fresh   int
	samples int
}

func NewAvailability() *Availability { return &Availability{} }

func (a *Availability) Name() string { return "attitude_availability" }

func (a *Availability) Observe(s episode.Step) {
	a.samples++
	if s.Observation.Fresh() {
		a.fresh++
	}
}

func (a *Availability) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.fresh) / float64(a.samples)
}

func (a *Availability) Reset() {
	a.fresh = 0
	a.samples = 0
}

// MaxStaleness is the longest run of ticks without an attitude reading.
type MaxStaleness struct {
	max int
}

func NewMaxStaleness() *MaxStaleness { return &MaxStaleness{} }

func (m *MaxStaleness) Name() string { return "max_staleness" }

func (m *MaxStaleness) Observe(s episode.Step) {
	if t := s.Observation.TicksSinceReading; t > m.max {
		m.max = t
	}
}

func (m *MaxStaleness) Value() float64 { return float64(m.max) }
func (m *MaxStaleness) Reset()         { m.max = 0 }

// MeanRate averages the magnitude of the newest gyro reading.
type MeanRate struct {
	sum     float64
	samples int
}

func NewMeanRate() *MeanRate { return &MeanRate{} }

func (m *MeanRate) Name() string { return "mean_rate" }

func (m *MeanRate) Observe(s episode.Step) {
	m.sum += math.Abs(s.Observation.Gyros[0])
	m.samples++
}

func (m *MeanRate) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanRate) Reset() {
	m.sum = 0
	m.samples = 0
}

// Defaults returns a fresh set of the standard episode metrics.
func Defaults() []episode.Metric {
	return []episode.Metric{
		NewControlEffort(),
		NewAvailability(),
		NewMaxStaleness(),
		NewMeanRate(),
	}
}
