package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/policy"
	"github.com/san-kum/satsim/internal/satellite"
)

const (
	liveWidth       = 40
	liveHeight      = 20
	historyCapacity = 120
	tickRate        = 30
)

type TickMsg time.Time

// Model drives a runner one tick per frame and lets the user take over the
// torque motor.
type Model struct {
	runner   *episode.Runner
	build    func() episode.Policy
	auto     episode.Policy
	name     string
	manual   *policy.Manual
	manualOn bool
	hold     bool
	lastDir  satellite.Action

	running  bool
	maxSteps int
	steps    int
	last     episode.Step
	rates    []float64
	canvas   *Canvas
}

// NewModel wraps runner and drives it with a policy from build. build is
// called again on every reset so each episode starts from a fresh policy.
// maxSteps <= 0 runs until quit.
func NewModel(runner *episode.Runner, build func() episode.Policy, name string, maxSteps int) Model {
	auto := build()
	runner.SetPolicy(auto)
	runner.ResetMetrics()
	return Model{
		runner:   runner,
		build:    build,
		auto:     auto,
		name:     name,
		manual:   policy.NewManual(),
		running:  true,
		maxSteps: maxSteps,
		rates:    make([]float64, 0, historyCapacity),
		canvas:   NewCanvas(liveWidth, liveHeight),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				m.advance()
			}
		case "r":
			m.reset()
		case "left":
			m.takeOver(satellite.CounterClockwiseTorque)
		case "right":
			m.takeOver(satellite.ClockwiseTorque)
		case "h":
			m.hold = !m.hold
			if m.manualOn {
				m.manual.Set(m.lastDir, m.hold)
			}
		case "a":
			m.manualOn = false
			m.hold = false
			m.manual.Set(satellite.Rest, false)
			m.runner.SetPolicy(m.auto)
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) takeOver(a satellite.Action) {
	if !m.manualOn {
		m.manualOn = true
		m.runner.SetPolicy(m.manual)
	}
	m.lastDir = a
	m.manual.Set(a, m.hold)
}

func (m *Model) advance() {
	if m.Done() {
		return
	}
	m.last = m.runner.Tick()
	m.steps++
	if len(m.rates) == historyCapacity {
		m.rates = m.rates[1:]
	}
	m.rates = append(m.rates, m.last.Observation.Gyros[0])
}

func (m *Model) reset() {
	m.auto = m.build()
	m.manual = policy.NewManual()
	m.manualOn = false
	m.hold = false
	m.lastDir = satellite.Rest
	m.runner.SetPolicy(m.auto)
	m.runner.Simulator().Reset()
	m.runner.ResetMetrics()
	m.steps = 0
	m.last = episode.Step{}
	m.rates = m.rates[:0]
}

// Done reports whether the step budget is spent.
func (m Model) Done() bool { return m.maxSteps > 0 && m.steps >= m.maxSteps }

func (m Model) Steps() int              { return m.steps }
func (m Model) Last() episode.Step      { return m.last }
func (m Model) Manual() bool            { return m.manualOn }
func (m Model) Running() bool           { return m.running }
func (m Model) History() []float64      { return m.rates }
func (m Model) Runner() *episode.Runner { return m.runner }

func (m Model) View() string {
	DrawBody(m.canvas, m.runner.Simulator().Snapshot())
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render("SATSIM · "+strings.ToUpper(m.name)) + "\n")

	switch {
	case m.Done():
		s.WriteString(statusPaused.Render("DONE"))
	case !m.running:
		s.WriteString(statusPaused.Render("PAUSED"))
	default:
		s.WriteString(statusRunning.Render("RUNNING"))
	}
	if m.manualOn {
		mode := "MANUAL"
		if m.hold {
			mode += " (HOLD)"
		}
		s.WriteString("  " + statusManual.Render(mode))
	}
	s.WriteString("\n")

	if len(m.rates) > 1 && !flat(m.rates) {
		chart := asciigraph.Plot(m.rates, asciigraph.Height(5), asciigraph.Width(28), asciigraph.Caption("gyro rate (rad/tick)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	obs := m.last.Observation
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.steps))
	row("Action", m.last.Action.String())
	row("Gyro ω", fmt.Sprintf("%+.5f", obs.Gyros[0]))
	row("Attitude", fmt.Sprintf("%.4f rad", obs.LastAttitudeReading))
	if obs.Fresh() && m.steps > 0 {
		s.WriteString(labelStyle.Render("Staleness") + freshStyle.Render("fresh") + "\n")
	} else {
		s.WriteString(labelStyle.Render("Staleness") + staleStyle.Render(fmt.Sprintf("%d ticks", obs.TicksSinceReading)) + "\n")
	}
	row("Body θ", fmt.Sprintf("%.1f°", satellite.NormalizeAngle(m.last.Orientation)*180/math.Pi))

	metrics := m.runner.Metrics()
	if len(metrics) > 0 {
		s.WriteString("\nMETRICS\n")
		names := make([]string, 0, len(metrics))
		for k := range metrics {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			s.WriteString(valueStyle.Render(fmt.Sprintf("%-22s %.4f", k, metrics[k])) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("SP:Pause S:Step R:Reset Q:Quit\n←/→:Torque H:Hold A:Auto"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func flat(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
