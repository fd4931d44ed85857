package telemetry

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/satsim/internal/episode"
)

type Collector struct {
	gatherer prometheus.Gatherer

	Steps     *prometheus.CounterVec
	Readings  prometheus.Counter
	Staleness prometheus.Gauge
	GyroRate  prometheus.Gauge
	Episodes  prometheus.Counter
}

// NewCollector registers the satsim metrics against reg, defaulting to the
// global registry when nil. Registering twice reuses the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satsim_steps_total",
		Help: "Simulated ticks, labeled by the action applied.",
	}, []string{"action"})
	if err := register(reg, &steps); err != nil {
		return nil, err
	}

	readings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "satsim_attitude_readings_total",
		Help: "Ticks that produced a fresh absolute attitude reading.",
	})
	if err := register(reg, &readings); err != nil {
		return nil, err
	}

	staleness := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "satsim_ticks_since_reading",
		Help: "Ticks since the attitude reading was last refreshed.",
	})
	if err := register(reg, &staleness); err != nil {
		return nil, err
	}

	rate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "satsim_gyro_rate_abs",
		Help: "Magnitude of the newest gyro reading in rad/tick.",
	})
	if err := register(reg, &rate); err != nil {
		return nil, err
	}

	episodes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "satsim_episodes_total",
		Help: "Completed episodes.",
	})
	if err := register(reg, &episodes); err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:  gatherer,
		Steps:     steps,
		Readings:  readings,
		Staleness: staleness,
		GyroRate:  rate,
		Episodes:  episodes,
	}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("telemetry: collector type mismatch: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return err
	}
	return nil
}

func (c *Collector) OnStep(s episode.Step) {
	c.Steps.WithLabelValues(s.Action.String()).Inc()
	if s.Observation.Fresh() {
		c.Readings.Inc()
	}
	c.Staleness.Set(float64(s.Observation.TicksSinceReading))
	c.GyroRate.Set(math.Abs(s.Observation.Gyros[0]))
}

// EpisodeDone counts a finished episode.
func (c *Collector) EpisodeDone() { c.Episodes.Inc() }

// Handler serves the registry the collector was registered with.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
