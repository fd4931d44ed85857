package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/satellite"
)

func step(a satellite.Action, gyro float64, ticks int) episode.Step {
	var obs satellite.Observation
	obs.Gyros[0] = gyro
	obs.TicksSinceReading = ticks
	return episode.Step{Action: a, Observation: obs}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	if m.Value() != 0 {
		t.Error("expected zero before observations")
	}

	m.Observe(step(satellite.ClockwiseTorque, 0, 0))
	m.Observe(step(satellite.Rest, 0, 0))
	m.Observe(step(satellite.CounterClockwiseTorque, 0, 0))
	m.Observe(step(satellite.Rest, 0, 0))

	if got := m.Value(); got != 0.5 {
		t.Errorf("expected effort 0.5, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestAvailabilityAndStaleness(t *testing.T) {
	avail := NewAvailability()
	stale := NewMaxStaleness()

	for _, ticks := range []int{1, 2, 3, 0, 0, 1, 0, 0} {
		s := step(satellite.Rest, 0, ticks)
		avail.Observe(s)
		stale.Observe(s)
	}

	if got := avail.Value(); got != 0.5 {
		t.Errorf("expected availability 0.5, got %f", got)
	}
	if got := stale.Value(); got != 3 {
		t.Errorf("expected max staleness 3, got %f", got)
	}
}

func TestMeanRate(t *testing.T) {
	m := NewMeanRate()
	m.Observe(step(satellite.Rest, 0.2, 1))
	m.Observe(step(satellite.Rest, -0.4, 1))

	if got := m.Value(); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("expected mean rate 0.3, got %f", got)
	}
}

func TestDefaultsInEpisode(t *testing.T) {
	r := episode.New(satellite.NewDefault(1), restPolicy{})
	for _, m := range Defaults() {
		r.AddMetric(m)
	}

	res, err := r.Run(context.Background(), episode.Config{MaxSteps: 10})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"control_effort", "attitude_availability", "max_staleness", "mean_rate"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("metric %s missing from result", name)
		}
	}
	if res.Metrics["max_staleness"] != 10 {
		t.Errorf("expected staleness 10 while tumbling, got %f", res.Metrics["max_staleness"])
	}
	if math.Abs(res.Metrics["mean_rate"]-0.3) > 1e-3 {
		t.Errorf("expected mean rate near 0.3, got %f", res.Metrics["mean_rate"])
	}
}

type restPolicy struct{}

func (restPolicy) Act(satellite.Observation) satellite.Action { return satellite.Rest }
