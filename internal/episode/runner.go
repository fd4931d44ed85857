package episode

import (
	"context"

	"github.com/san-kum/satsim/internal/logging"
	"github.com/san-kum/satsim/internal/satellite"
)

type Runner struct {
	sat       *satellite.Simulator
	policy    Policy
	renderer  Renderer
	metrics   []Metric
	observers []Observer
	log       logging.Logger
	ticks     int
}

func New(sat *satellite.Simulator, policy Policy) *Runner {
	return &Runner{
		sat:       sat,
		policy:    policy,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logging.Noop(),
	}
}

func (r *Runner) SetRenderer(rd Renderer)         { r.renderer = rd }
func (r *Runner) AddMetric(m Metric)              { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)          { r.observers = append(r.observers, o) }
func (r *Runner) Simulator() *satellite.Simulator { return r.sat }
func (r *Runner) SetPolicy(p Policy)              { r.policy = p }

func (r *Runner) SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.Noop()
	}
	r.log = l
}

// Run plays one episode from the simulator's current state.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r.policy == nil {
		return nil, ErrNilPolicy
	}

	result := &Result{
		Initial: r.sat.State(),
		Steps:   make([]Step, 0, cfg.MaxSteps),
		Metrics: make(map[string]float64),
		Reason:  ReasonMaxSteps,
	}

	r.ResetMetrics()

	r.log.Debug(ctx, "episode started",
		logging.Int64("seed", r.sat.Seed()),
		logging.Int("max_steps", cfg.MaxSteps),
		logging.Int("settle_steps", cfg.SettleSteps))

	settled := 0
	for i := 0; i < cfg.MaxSteps; i++ {
		select {
		case <-ctx.Done():
			result.Reason = ReasonCanceled
			r.collect(result)
			return result, ctx.Err()
		default:
		}

		step := r.Tick()
		result.Steps = append(result.Steps, step)
		result.StepsTaken++

		if step.Observation.Fresh() {
			settled++
		} else {
			settled = 0
		}
		if cfg.SettleSteps > 0 && settled >= cfg.SettleSteps {
			result.Reason = ReasonSettled
			break
		}
	}

	r.collect(result)
	r.log.Info(ctx, "episode finished",
		logging.Int("steps", result.StepsTaken),
		logging.String("reason", string(result.Reason)),
		logging.Int("ticks_since_reading", result.Final().TicksSinceReading))

	return result, nil
}

// Tick asks the policy for one action, advances the simulator and feeds the
// resulting step to metrics, observers and the renderer.
func (r *Runner) Tick() Step {
	a := r.policy.Act(r.sat.State())
	r.sat.Step(a)
	r.ticks++

	step := Step{
		Index:       r.ticks,
		Action:      a,
		Observation: r.sat.State(),
		Orientation: r.sat.Snapshot().Orientation,
	}
	for _, m := range r.metrics {
		m.Observe(step)
	}
	for _, o := range r.observers {
		o.OnStep(step)
	}
	if r.renderer != nil {
		r.renderer.Render(r.sat.Snapshot())
	}
	return step
}

// ResetMetrics zeroes the tick counter and every attached metric.
func (r *Runner) ResetMetrics() {
	r.ticks = 0
	for _, m := range r.metrics {
		m.Reset()
	}
}

// Metrics reports the current value of every attached metric.
func (r *Runner) Metrics() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Runner) collect(result *Result) {
	for name, v := range r.Metrics() {
		result.Metrics[name] = v
	}
}

// Run drives sat with policy for at most maxSteps ticks, rendering each tick
// when renderer is non-nil.
func Run(ctx context.Context, sat *satellite.Simulator, policy Policy, renderer Renderer, maxSteps int) (*Result, error) {
	r := New(sat, policy)
	r.SetRenderer(renderer)
	return r.Run(ctx, Config{MaxSteps: maxSteps})
}
