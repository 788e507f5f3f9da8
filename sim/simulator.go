// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/gridsim/sim/trace"
)

// RunStats counts what happened during a run. Diagnostic only; not part of Result.
type RunStats struct {
	Events            int // events applied (events at or past the horizon are not counted)
	ComponentFailures int
	Repairs           int // components restored
	RepairOrders      int
	SystemFailures    int
}

// Simulator is the core object that holds simulation time, the grid, and the event loop.
// One Simulator executes exactly one run, single-threaded; nothing is shared between runs.
type Simulator struct {
	Config  Config
	Clock   float64
	Horizon float64
	Grid    *Grid
	// EventQueue has every pending component transition
	EventQueue *EventQueue
	Predicate  FailurePredicate
	Dispatcher RepairDispatcher
	Metrics    *Accumulator
	Stats      RunStats

	clock      ClockSource
	trace      *trace.SimulationTrace
	observer   func(Event)
	lastPopped float64
	done       bool
}

// Option customizes a Simulator at construction time.
type Option func(*Simulator)

// WithClockSource replaces the seeded exponential clock.
func WithClockSource(c ClockSource) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithFailurePredicate replaces the predicate derived from Config.Geometry.
func WithFailurePredicate(p FailurePredicate) Option {
	return func(s *Simulator) { s.Predicate = p }
}

// WithRepairDispatcher replaces the dispatcher derived from Config.RepairPolicy.
func WithRepairDispatcher(d RepairDispatcher) Option {
	return func(s *Simulator) { s.Dispatcher = d }
}

// WithTrace records repair orders and system state changes into st.
func WithTrace(st *trace.SimulationTrace) Option {
	return func(s *Simulator) { s.trace = st }
}

// WithEventObserver calls fn with every popped event, including the one that ends the run.
func WithEventObserver(fn func(Event)) Option {
	return func(s *Simulator) { s.observer = fn }
}

// NewSimulator validates cfg and builds a ready-to-run simulator: every component
// Up with its first failure scheduled, and its first up-dwell charged as maintenance.
// Returns an error wrapping ErrInvalidConfiguration before building any state.
func NewSimulator(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	predicate, err := NewFailurePredicate(cfg)
	if err != nil {
		return nil, err
	}
	grid := NewGrid(cfg)
	s := &Simulator{
		Config:     cfg,
		Horizon:    cfg.Horizon,
		Grid:       grid,
		EventQueue: NewEventQueue(grid.Size() + cfg.BatchSize),
		Predicate:  predicate,
		Dispatcher: NewRepairDispatcher(cfg),
		Metrics:    NewAccumulator(cfg.Horizon, cfg.MaintenanceRate),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
		s.clock = NewExponentialClock(rng.ForSubsystem(SubsystemComponents))
	}

	for idx := range grid.Components {
		c := &grid.Components[idx]
		dwell := Start(c, s.clock)
		s.EventQueue.Schedule(Event{Time: c.NextEventTime, Kind: BecomesDown, Target: idx})
		s.Metrics.ChargeMaintenance(dwell)
	}
	return s, nil
}

// Done reports whether the run has reached its horizon.
func (sim *Simulator) Done() bool {
	return sim.done
}

// Run processes events until the horizon and returns the run's result.
func (sim *Simulator) Run() Result {
	for sim.Step() {
	}
	logrus.Debugf("[t=%.4f] Simulation ended after %d events", sim.Clock, sim.Stats.Events)
	return sim.Metrics.Close()
}

// Step processes the next event. It returns false once the run is done; the
// event that reaches the horizon is consumed without being applied.
func (sim *Simulator) Step() bool {
	if sim.done {
		return false
	}
	ev := sim.EventQueue.PopMin()
	if ev.Time < sim.lastPopped {
		panic(fmt.Sprintf("Simulator.Step: event at %v popped after %v", ev.Time, sim.lastPopped))
	}
	sim.lastPopped = ev.Time
	if sim.observer != nil {
		sim.observer(ev)
	}
	if ev.Time >= sim.Horizon {
		sim.done = true
		sim.Clock = sim.Horizon
		return false
	}

	sim.apply(ev)

	for _, order := range sim.Dispatcher.Dispatch(DispatchContext{Now: ev.Time, Grid: sim.Grid, Clock: sim.clock}) {
		sim.issue(order, ev.Time)
	}

	failed := sim.Predicate.IsFailed(sim.Grid)
	if failed != sim.Metrics.FailedPreviously {
		if failed {
			sim.Stats.SystemFailures++
		}
		logrus.Debugf("[t=%.4f] system failed=%v (%d down)", ev.Time, failed, sim.Grid.DownCount())
		if sim.trace.Enabled() {
			sim.trace.RecordTransition(trace.SystemRecord{Clock: ev.Time, Failed: failed, DownCount: sim.Grid.DownCount()})
		}
	}
	sim.Metrics.Observe(ev.Time, failed)
	sim.Clock = min(ev.Time, sim.Horizon)
	return true
}

// apply flips the target component and schedules its follow-up event.
func (sim *Simulator) apply(ev Event) {
	c := &sim.Grid.Components[ev.Target]
	logrus.Debugf("[t=%.4f] %s (%d,%d)", ev.Time, ev.Kind, c.Row, c.Col)
	sim.Stats.Events++

	switch ev.Kind {
	case BecomesDown:
		Fail(c, ev.Time)
		sim.Stats.ComponentFailures++
		if sim.Dispatcher.ChargesPerFailure() {
			sim.Metrics.ChargeRepair(sim.Config.RepairCost)
		}
		sim.Dispatcher.OnFailure(ev.Target)
	case BecomesUp, RepairComplete:
		dwell := Restore(c, ev.Time, sim.clock)
		sim.EventQueue.Schedule(Event{Time: c.NextEventTime, Kind: BecomesDown, Target: ev.Target})
		sim.Metrics.ChargeMaintenance(dwell)
		sim.Stats.Repairs++
		sim.Dispatcher.OnRepairComplete(ev.Target)
	default:
		panic(fmt.Sprintf("Simulator.apply: unknown event kind %v", ev.Kind))
	}
}

// issue starts every repair in order and schedules the completions. The order
// costs one repair unless the dispatcher already charged its failures.
func (sim *Simulator) issue(order RepairOrder, now float64) {
	if len(order.Targets) == 0 {
		panic(fmt.Sprintf("Simulator.issue: %s dispatcher issued an empty order", sim.Dispatcher.Name()))
	}
	for _, idx := range order.Targets {
		c := &sim.Grid.Components[idx]
		BeginRepair(c, now, order.Duration)
		sim.EventQueue.Schedule(Event{Time: c.NextEventTime, Kind: order.Completion, Target: idx})
	}
	if !sim.Dispatcher.ChargesPerFailure() {
		sim.Metrics.ChargeRepair(sim.Config.RepairCost)
	}
	sim.Stats.RepairOrders++

	if sim.trace.Enabled() {
		cells := make([]trace.Cell, len(order.Targets))
		for i, idx := range order.Targets {
			row, col := sim.Grid.Position(idx)
			cells[i] = trace.Cell{Row: row, Col: col}
		}
		sim.trace.RecordRepair(trace.RepairRecord{
			Clock:    now,
			Policy:   sim.Dispatcher.Name(),
			Targets:  cells,
			Duration: order.Duration,
			Score:    order.Score,
			Reason:   order.Reason,
		})
	}
}

// RunOnce is a convenience wrapper: build a simulator for cfg and run it.
func RunOnce(cfg Config, opts ...Option) (Result, error) {
	s, err := NewSimulator(cfg, opts...)
	if err != nil {
		return Result{}, err
	}
	return s.Run(), nil
}
