package episode

import (
	"errors"
	"fmt"

	"github.com/san-kum/satsim/internal/satellite"
)

var (
	ErrInvalidConfig = errors.New("episode: invalid config")
	ErrNilPolicy     = errors.New("episode: nil policy")
)

type Policy interface {
	Act(obs satellite.Observation) satellite.Action
}

// Renderer consumes ground-truth snapshots for display only.
type Renderer interface {
	Render(snap satellite.Snapshot)
}

type Observer interface {
	OnStep(s Step)
}

type Metric interface {
	Name() string
	Observe(s Step)
	Value() float64
	Reset()
}

// Step records one tick: the action taken and the observation it produced.
type Step struct {
	Index       int                   `json:"step"`
	Action      satellite.Action      `json:"action"`
	Observation satellite.Observation `json:"observation"`
	// Orientation is ground truth, kept for replay and plotting.
	Orientation float64 `json:"orientation"`
}

type Config struct {
	MaxSteps    int
	SettleSteps int
}

func DefaultConfig() Config {
	return Config{MaxSteps: 1000}
}

func (c Config) Validate() error {
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrInvalidConfig, c.MaxSteps)
	}
	if c.SettleSteps < 0 {
		return fmt.Errorf("%w: settle steps must be non-negative, got %d", ErrInvalidConfig, c.SettleSteps)
	}
	return nil
}

type TerminationReason string

const (
	ReasonMaxSteps TerminationReason = "max_steps"
	ReasonSettled  TerminationReason = "settled"
	ReasonCanceled TerminationReason = "canceled"
)

type Result struct {
	Initial    satellite.Observation `json:"initial"`
	Steps      []Step                `json:"steps"`
	Metrics    map[string]float64    `json:"metrics"`
	Reason     TerminationReason     `json:"reason"`
	StepsTaken int                   `json:"steps_taken"`
}

// Final returns the last observation, or the initial one for an empty run.
func (r *Result) Final() satellite.Observation {
	if len(r.Steps) == 0 {
		return r.Initial
	}
	return r.Steps[len(r.Steps)-1].Observation
}
