package satellite

import "fmt"

// Action is the discrete control input for one tick.
type Action int

const (
	CounterClockwiseTorque Action = -1
	Rest                   Action = 0
	ClockwiseTorque        Action = 1
)

// Actions lists the closed action set in a stable order.
func Actions() []Action {
	return []Action{CounterClockwiseTorque, Rest, ClockwiseTorque}
}

func (a Action) Valid() bool {
	switch a {
	case CounterClockwiseTorque, Rest, ClockwiseTorque:
		return true
	}
	return false
}

func (a Action) String() string {
	switch a {
	case CounterClockwiseTorque:
		return "ccw"
	case Rest:
		return "rest"
	case ClockwiseTorque:
		return "cw"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction accepts the short names produced by String as well as the
// numeric codes -1, 0 and 1.
func ParseAction(s string) (Action, error) {
	switch s {
	case "ccw", "counter_clockwise", "-1":
		return CounterClockwiseTorque, nil
	case "rest", "0":
		return Rest, nil
	case "cw", "clockwise", "1":
		return ClockwiseTorque, nil
	}
	return Rest, fmt.Errorf("satellite: unknown action %q", s)
}

// torque maps the action to a signed motor torque. Values outside the closed
// set apply no torque.
func (a Action) torque(magnitude float64) float64 {
	switch a {
	case ClockwiseTorque:
		return magnitude
	case CounterClockwiseTorque:
		return -magnitude
	case Rest:
		return 0
	}
	return 0
}
