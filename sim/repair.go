package sim

import "fmt"

// RepairOrder asks the simulator to repair Targets together. Every target
// completes at now+Duration with an event of kind Completion.
type RepairOrder struct {
	Targets    []int
	Duration   float64
	Completion EventKind
	Reason     string
	Score      float64 // dispatcher-specific priority of the choice (0 if unused)
}

// DispatchContext is the read-only view a dispatcher decides from.
type DispatchContext struct {
	Now   float64
	Grid  *Grid
	Clock ClockSource
}

// RepairDispatcher decides which Down components receive repair orders.
//
// The simulator calls OnFailure when a component goes Down, OnRepairComplete
// when a repair it ordered finishes, and Dispatch once per processed event
// after those hooks. Dispatch must only target Down components that are not
// already under repair.
//
// ChargesPerFailure selects when the repair cost is incurred: true charges
// one repair cost on every Down transition, whether or not a repairer is free;
// false charges one repair cost per issued order.
type RepairDispatcher interface {
	Name() string
	ChargesPerFailure() bool
	OnFailure(target int)
	OnRepairComplete(target int)
	Dispatch(ctx DispatchContext) []RepairOrder
}

// NewRepairDispatcher creates the dispatcher named by cfg.RepairPolicy.
// cfg must already be valid; panics on unrecognized names.
func NewRepairDispatcher(cfg Config) RepairDispatcher {
	cfg = cfg.WithDefaults()
	switch cfg.RepairPolicy {
	case RepairImmediate:
		return &ImmediateDispatcher{}
	case RepairNaive:
		return NewNaiveDispatcher()
	case RepairSmart:
		return NewSmartDispatcher(cfg.R, cfg.S, cfg.Topology)
	case RepairBatch:
		return NewBatchDispatcher(cfg.BatchSize)
	default:
		panic(fmt.Sprintf("unhandled repair policy %q", cfg.RepairPolicy))
	}
}

// ImmediateDispatcher repairs every failed component at once, independently.
// Repair capacity is unconstrained.
type ImmediateDispatcher struct {
	pending []int
}

func (d *ImmediateDispatcher) Name() string { return string(RepairImmediate) }

func (d *ImmediateDispatcher) ChargesPerFailure() bool { return true }

func (d *ImmediateDispatcher) OnFailure(target int) {
	d.pending = append(d.pending, target)
}

func (d *ImmediateDispatcher) OnRepairComplete(int) {}

func (d *ImmediateDispatcher) Dispatch(ctx DispatchContext) []RepairOrder {
	if len(d.pending) == 0 {
		return nil
	}
	orders := make([]RepairOrder, 0, len(d.pending))
	for _, idx := range d.pending {
		orders = append(orders, RepairOrder{
			Targets:    []int{idx},
			Duration:   ctx.Clock.Draw(ctx.Grid.Components[idx].Mu),
			Completion: BecomesUp,
			Reason:     "immediate",
		})
	}
	d.pending = d.pending[:0]
	return orders
}

// singleRepairer is the one global repair resource shared by the naive and
// smart dispatchers. active is the component being repaired, -1 when idle.
type singleRepairer struct {
	active int
}

// Busy reports whether the repairer is assigned.
func (r *singleRepairer) Busy() bool { return r.active >= 0 }

// Active returns the component under repair, or -1.
func (r *singleRepairer) Active() int { return r.active }

// ChargesPerFailure is true: a failure waiting for the repairer is still charged.
func (r *singleRepairer) ChargesPerFailure() bool { return true }

func (r *singleRepairer) OnFailure(int) {}

func (r *singleRepairer) OnRepairComplete(target int) {
	if target != r.active {
		panic(fmt.Sprintf("single repairer: completion for %d but %d is being repaired", target, r.active))
	}
	r.active = -1
}

func (r *singleRepairer) assign(ctx DispatchContext, target int, reason string, score float64) []RepairOrder {
	r.active = target
	return []RepairOrder{{
		Targets:    []int{target},
		Duration:   ctx.Clock.Draw(ctx.Grid.Components[target].Mu),
		Completion: RepairComplete,
		Reason:     reason,
		Score:      score,
	}}
}

// NaiveDispatcher sends the single repairer to the first waiting Down
// component in row-major order.
type NaiveDispatcher struct {
	singleRepairer
}

// NewNaiveDispatcher creates an idle naive dispatcher.
func NewNaiveDispatcher() *NaiveDispatcher {
	return &NaiveDispatcher{singleRepairer{active: -1}}
}

func (d *NaiveDispatcher) Name() string { return string(RepairNaive) }

func (d *NaiveDispatcher) Dispatch(ctx DispatchContext) []RepairOrder {
	if d.Busy() {
		return nil
	}
	for idx := range ctx.Grid.Components {
		c := &ctx.Grid.Components[idx]
		if c.IsDown() && !c.UnderRepair {
			return d.assign(ctx, idx, "naive (first down in scan order)", 0)
		}
	}
	return nil
}

// SmartDispatcher sends the single repairer to the Down component that
// contributes most to the system's proximity to failure: its score is the sum,
// over every r×s window containing it, of the number of Down components in
// that window. Ties go to the earlier component in row-major order. Up
// components are never selected, whatever their score.
type SmartDispatcher struct {
	singleRepairer
	R, S     int
	Topology Topology
}

// NewSmartDispatcher creates an idle smart dispatcher for r×s windows.
func NewSmartDispatcher(r, s int, topology Topology) *SmartDispatcher {
	return &SmartDispatcher{singleRepairer: singleRepairer{active: -1}, R: r, S: s, Topology: topology}
}

func (d *SmartDispatcher) Name() string { return string(RepairSmart) }

func (d *SmartDispatcher) Dispatch(ctx DispatchContext) []RepairOrder {
	if d.Busy() {
		return nil
	}
	scores := HazardScores(ctx.Grid, d.R, d.S, d.Topology)
	best, bestScore := -1, -1
	for idx := range ctx.Grid.Components {
		c := &ctx.Grid.Components[idx]
		if !c.IsDown() || c.UnderRepair {
			continue
		}
		if scores[idx] > bestScore {
			best, bestScore = idx, scores[idx]
		}
	}
	if best < 0 {
		return nil
	}
	return d.assign(ctx, best, fmt.Sprintf("smart (hazard score %d)", bestScore), float64(bestScore))
}

// HazardScores returns, per component, the sum over all r×s windows containing
// it of the Down count in that window. Windows follow the topology: every start
// position when toroidal, only fully in-bounds windows when bounded.
func HazardScores(g *Grid, r, s int, topology Topology) []int {
	wrap := topology == TopologyToroidal
	scores := make([]int, g.Size())
	rowStarts := windowStarts(g.Rows, r, wrap)
	colStarts := windowStarts(g.Cols, s, wrap)
	for top := 0; top < rowStarts; top++ {
		for left := 0; left < colStarts; left++ {
			down := 0
			for x := 0; x < r; x++ {
				for y := 0; y < s; y++ {
					if g.IsDown((top+x)%g.Rows, (left+y)%g.Cols) {
						down++
					}
				}
			}
			if down == 0 {
				continue
			}
			for x := 0; x < r; x++ {
				for y := 0; y < s; y++ {
					scores[g.Index((top+x)%g.Rows, (left+y)%g.Cols)] += down
				}
			}
		}
	}
	return scores
}

// BatchDispatcher defers repairs until exactly Size failures are waiting,
// then repairs all of them together as one order with one shared duration.
// The whole batch costs one repair. Failures short of a full batch stay Down;
// a partial backlog at the horizon is never repaired or charged.
type BatchDispatcher struct {
	Size    int
	backlog []int
}

// NewBatchDispatcher creates a dispatcher for batches of size b. Panics if b < 1.
func NewBatchDispatcher(b int) *BatchDispatcher {
	if b < 1 {
		panic(fmt.Sprintf("NewBatchDispatcher: batch size must be >= 1, got %d", b))
	}
	return &BatchDispatcher{Size: b, backlog: make([]int, 0, b)}
}

func (d *BatchDispatcher) Name() string { return string(RepairBatch) }

func (d *BatchDispatcher) ChargesPerFailure() bool { return false }

// Backlog returns the components awaiting a batch, in failure order.
func (d *BatchDispatcher) Backlog() []int {
	return d.backlog
}

func (d *BatchDispatcher) OnFailure(target int) {
	d.backlog = append(d.backlog, target)
}

func (d *BatchDispatcher) OnRepairComplete(int) {}

// Dispatch flushes the backlog when it holds exactly Size components.
// The shared duration is drawn with the mean of the members' Mu.
func (d *BatchDispatcher) Dispatch(ctx DispatchContext) []RepairOrder {
	if len(d.backlog) < d.Size {
		return nil
	}
	targets := make([]int, d.Size)
	copy(targets, d.backlog[:d.Size])
	d.backlog = d.backlog[:copy(d.backlog, d.backlog[d.Size:])]

	meanMu := 0.0
	for _, idx := range targets {
		meanMu += ctx.Grid.Components[idx].Mu
	}
	meanMu /= float64(len(targets))
	return []RepairOrder{{
		Targets:    targets,
		Duration:   ctx.Clock.Draw(meanMu),
		Completion: RepairComplete,
		Reason:     fmt.Sprintf("batch of %d", d.Size),
	}}
}
