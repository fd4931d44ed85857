package metrics

import (
	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/satellite"
)

// ControlEffort is the fraction of ticks on which the motor fired.
type ControlEffort struct {
	name    string
	fired   int
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s episode.Step) {
	if s.Action.Valid() && s.Action != satellite.Rest {
		c.fired++
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.fired) / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.fired = 0
	c.samples = 0
}
