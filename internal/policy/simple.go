package policy

import (
	"math/rand"
	"sync"

	"github.com/san-kum/satsim/internal/satellite"
)

type Rest struct{}

func NewRest() *Rest { return &Rest{} }

func (r *Rest) Act(satellite.Observation) satellite.Action { return satellite.Rest }

// BangBang never rests: it torques against the newest gyro reading.
type BangBang struct{}

func NewBangBang() *BangBang { return &BangBang{} }

func (b *BangBang) Act(obs satellite.Observation) satellite.Action {
	if obs.Gyros[0] < 0 {
		return satellite.ClockwiseTorque
	}
	return satellite.CounterClockwiseTorque
}

type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Act(satellite.Observation) satellite.Action {
	actions := satellite.Actions()
	return actions[r.rng.Intn(len(actions))]
}

// Scripted replays Actions in order and rests once they run out.
type Scripted struct {
	Actions []satellite.Action
	next    int
}

func NewScripted(actions []satellite.Action) *Scripted {
	return &Scripted{Actions: actions}
}

func (s *Scripted) Act(satellite.Observation) satellite.Action {
	if s.next >= len(s.Actions) {
		return satellite.Rest
	}
	a := s.Actions[s.next]
	s.next++
	return a
}

// Manual returns whatever action was last set. Set may be called from another
// goroutine (a UI event loop).
type Manual struct {
	mu     sync.Mutex
	action satellite.Action
	hold   bool
}

func NewManual() *Manual { return &Manual{} }

// Set fires a for the next tick only, or on every tick when hold is true.
func (m *Manual) Set(a satellite.Action, hold bool) {
	m.mu.Lock()
	m.action, m.hold = a, hold
	m.mu.Unlock()
}

func (m *Manual) Act(satellite.Observation) satellite.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.action
	if !m.hold {
		m.action = satellite.Rest
	}
	return a
}
