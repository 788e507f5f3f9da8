package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// markUnderRepair flags a Down component as already assigned.
func markUnderRepair(g *Grid, row, col int) {
	g.At(row, col).UnderRepair = true
}

func TestImmediateDispatcher_OrdersEveryFailure(t *testing.T) {
	// GIVEN two components that failed at this instant
	g := gridWithDown(2, 2, TopologyBounded, [2]int{0, 1}, [2]int{1, 0})
	g.At(1, 0).Mu = 4
	clock := &meanClock{}
	d := &ImmediateDispatcher{}
	d.OnFailure(g.Index(0, 1))
	d.OnFailure(g.Index(1, 0))

	// WHEN dispatching
	orders := d.Dispatch(DispatchContext{Now: 1, Grid: g, Clock: clock})

	// THEN each gets its own order, drawn from its own mu
	require.Len(t, orders, 2)
	assert.Equal(t, []int{1}, orders[0].Targets)
	assert.Equal(t, []int{2}, orders[1].Targets)
	assert.Equal(t, 10.0, orders[0].Duration)
	assert.Equal(t, 4.0, orders[1].Duration)
	assert.Equal(t, BecomesUp, orders[0].Completion)

	// AND the pending list is drained
	assert.Empty(t, d.Dispatch(DispatchContext{Now: 1, Grid: g, Clock: clock}))
}

func TestNaiveDispatcher_ScanOrder(t *testing.T) {
	// GIVEN Down components at (1,2) and (0,1)
	g := gridWithDown(3, 3, TopologyBounded, [2]int{1, 2}, [2]int{0, 1})
	d := NewNaiveDispatcher()
	ctx := DispatchContext{Grid: g, Clock: &meanClock{}}

	// WHEN the idle repairer dispatches
	orders := d.Dispatch(ctx)

	// THEN it takes the first in row-major order
	require.Len(t, orders, 1)
	assert.Equal(t, []int{g.Index(0, 1)}, orders[0].Targets)
	assert.Equal(t, RepairComplete, orders[0].Completion)
	assert.True(t, d.Busy())

	// AND nothing else is dispatched while busy
	markUnderRepair(g, 0, 1)
	assert.Empty(t, d.Dispatch(ctx))

	// WHEN the repair completes
	g.At(0, 1).State, g.At(0, 1).UnderRepair = Up, false
	d.OnRepairComplete(g.Index(0, 1))

	// THEN the next waiting component is taken
	orders = d.Dispatch(ctx)
	require.Len(t, orders, 1)
	assert.Equal(t, []int{g.Index(1, 2)}, orders[0].Targets)
}

func TestSingleRepairer_MismatchedCompletionPanics(t *testing.T) {
	d := NewNaiveDispatcher()
	g := gridWithDown(2, 2, TopologyBounded, [2]int{0, 0})
	d.Dispatch(DispatchContext{Grid: g, Clock: &meanClock{}})
	assert.Panics(t, func() { d.OnRepairComplete(3) })
}

func TestHazardScores(t *testing.T) {
	// GIVEN Down components at (0,0), (1,1), (1,2), (2,1) with 2x2 bounded windows
	g := gridWithDown(3, 3, TopologyBounded, [2]int{0, 0}, [2]int{1, 1}, [2]int{1, 2}, [2]int{2, 1})

	// WHEN scoring
	scores := HazardScores(g, 2, 2, TopologyBounded)

	// THEN each score is the sum of Down counts over windows containing it
	// windows: top-left=2, top-right=2, bottom-left=2, bottom-right=3
	want := []int{
		2, 4, 2,
		4, 9, 5,
		2, 5, 3,
	}
	assert.Equal(t, want, scores)
}

func TestHazardScores_ToroidalCountsSeamWindows(t *testing.T) {
	g := gridWithDown(3, 3, TopologyToroidal, [2]int{0, 0})
	bounded := HazardScores(g, 2, 2, TopologyBounded)
	toroidal := HazardScores(g, 2, 2, TopologyToroidal)

	// (0,0) lies in one bounded window and four toroidal ones
	assert.Equal(t, 1, bounded[0])
	assert.Equal(t, 4, toroidal[0])
	// (2,2) only shares a window with (0,0) across both seams
	assert.Equal(t, 0, bounded[g.Index(2, 2)])
	assert.Equal(t, 1, toroidal[g.Index(2, 2)])
}

func TestSmartDispatcher_PicksHighestScore(t *testing.T) {
	g := gridWithDown(3, 3, TopologyBounded, [2]int{0, 0}, [2]int{1, 1}, [2]int{1, 2}, [2]int{2, 1})
	d := NewSmartDispatcher(2, 2, TopologyBounded)

	orders := d.Dispatch(DispatchContext{Grid: g, Clock: &meanClock{}})

	require.Len(t, orders, 1)
	assert.Equal(t, []int{g.Index(1, 1)}, orders[0].Targets)
	assert.Equal(t, 9.0, orders[0].Score)
}

func TestSmartDispatcher_NeverSelectsUpComponent(t *testing.T) {
	// GIVEN opposite corners Down: the Up centre has the highest score
	g := gridWithDown(3, 3, TopologyBounded, [2]int{0, 0}, [2]int{2, 2})
	scores := HazardScores(g, 2, 2, TopologyBounded)
	require.Greater(t, scores[g.Index(1, 1)], scores[g.Index(0, 0)])

	// WHEN dispatching
	d := NewSmartDispatcher(2, 2, TopologyBounded)
	orders := d.Dispatch(DispatchContext{Grid: g, Clock: &meanClock{}})

	// THEN a Down component is chosen, the earlier one on a tie
	require.Len(t, orders, 1)
	assert.Equal(t, []int{0}, orders[0].Targets)
}

func TestSmartDispatcher_SkipsComponentsUnderRepair(t *testing.T) {
	g := gridWithDown(3, 3, TopologyBounded, [2]int{1, 1})
	markUnderRepair(g, 1, 1)
	d := NewSmartDispatcher(2, 2, TopologyBounded)
	assert.Empty(t, d.Dispatch(DispatchContext{Grid: g, Clock: &meanClock{}}))
	assert.False(t, d.Busy())
}

func TestBatchDispatcher_WaitsForFullBatch(t *testing.T) {
	// GIVEN a batch of 3 with two failures waiting
	g := gridWithDown(2, 2, TopologyBounded, [2]int{0, 0}, [2]int{0, 1}, [2]int{1, 1})
	g.At(0, 0).Mu, g.At(0, 1).Mu, g.At(1, 1).Mu = 2, 4, 9
	clock := &meanClock{}
	ctx := DispatchContext{Grid: g, Clock: clock}
	d := NewBatchDispatcher(3)
	d.OnFailure(g.Index(1, 1))
	d.OnFailure(g.Index(0, 0))

	// THEN nothing is dispatched
	assert.Empty(t, d.Dispatch(ctx))
	assert.Equal(t, []int{3, 0}, d.Backlog())

	// WHEN the third failure arrives
	d.OnFailure(g.Index(0, 1))
	orders := d.Dispatch(ctx)

	// THEN one order repairs all three with one draw at the mean mu
	require.Len(t, orders, 1)
	assert.Equal(t, []int{3, 0, 1}, orders[0].Targets)
	assert.Equal(t, 5.0, orders[0].Duration)
	assert.Equal(t, []float64{5}, clock.means)
	assert.Equal(t, RepairComplete, orders[0].Completion)
	assert.Empty(t, d.Backlog())
}

func TestBatchDispatcher_InvalidSizePanics(t *testing.T) {
	assert.Panics(t, func() { NewBatchDispatcher(0) })
}

func TestNewRepairDispatcher_Names(t *testing.T) {
	for _, policy := range []RepairPolicy{RepairImmediate, RepairNaive, RepairSmart, RepairBatch} {
		cfg := DefaultConfig()
		cfg.RepairPolicy = policy
		assert.Equal(t, string(policy), NewRepairDispatcher(cfg).Name())
	}
}
