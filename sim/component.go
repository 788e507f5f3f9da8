// Defines the Component value type that models one repairable unit of the grid,
// and the free functions that move it through its Up/Down lifecycle.

package sim

import (
	"fmt"
	"math"
)

// ComponentState is the Up/Down state of a component.
type ComponentState int

const (
	Up ComponentState = iota
	Down
)

func (s ComponentState) String() string {
	switch s {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("ComponentState(%d)", int(s))
	}
}

// Component is one repairable unit at (Row, Col).
//
// NextEventTime always reflects the draw made at the last transition:
//   - Up: the failure time (drawn from Lam)
//   - Down, under repair: the repair completion time (drawn from the order's mean, normally Mu)
//   - Down, waiting for a repairer: +Inf, no event is pending
type Component struct {
	Row, Col      int
	State         ComponentState
	Lam           float64 // mean up-time
	Mu            float64 // mean down-time
	NextEventTime float64
	UnderRepair   bool
}

// IsDown reports whether the component is Down.
func (c *Component) IsDown() bool {
	return c.State == Down
}

// Start puts a fresh component Up at time zero and draws its first failure.
// Returns the drawn dwell.
func Start(c *Component, clock ClockSource) float64 {
	dwell := clock.Draw(c.Lam)
	c.State = Up
	c.UnderRepair = false
	c.NextEventTime = dwell
	return dwell
}

// Fail moves an Up component to Down at now. The component has no pending
// event until a dispatcher issues a repair order for it.
func Fail(c *Component, now float64) {
	if c.State != Up {
		panic(fmt.Sprintf("Fail: component (%d,%d) is already down at t=%v", c.Row, c.Col, now))
	}
	c.State = Down
	c.UnderRepair = false
	c.NextEventTime = math.Inf(1)
}

// BeginRepair assigns a repair of the given duration to a waiting Down component.
func BeginRepair(c *Component, now, duration float64) {
	if c.State != Down || c.UnderRepair {
		panic(fmt.Sprintf("BeginRepair: component (%d,%d) is not awaiting repair (state=%s, underRepair=%v)",
			c.Row, c.Col, c.State, c.UnderRepair))
	}
	c.UnderRepair = true
	c.NextEventTime = now + duration
}

// Restore completes a repair at now, puts the component Up and draws its next
// failure. Returns the drawn up-dwell.
func Restore(c *Component, now float64, clock ClockSource) float64 {
	if c.State != Down || !c.UnderRepair {
		panic(fmt.Sprintf("Restore: component (%d,%d) is not under repair (state=%s)", c.Row, c.Col, c.State))
	}
	dwell := clock.Draw(c.Lam)
	c.State = Up
	c.UnderRepair = false
	c.NextEventTime = now + dwell
	return dwell
}
