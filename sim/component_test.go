package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponent_Lifecycle(t *testing.T) {
	// GIVEN a fresh component with mean up-time 10
	c := &Component{Lam: 10, Mu: 3}
	clock := &scriptedClock{values: []float64{4, 7}}

	// WHEN started
	dwell := Start(c, clock)
	// THEN it is Up with its failure scheduled
	assert.Equal(t, 4.0, dwell)
	assert.Equal(t, Up, c.State)
	assert.Equal(t, 4.0, c.NextEventTime)

	// WHEN it fails
	Fail(c, 4)
	// THEN it waits with nothing pending
	assert.True(t, c.IsDown())
	assert.False(t, c.UnderRepair)
	assert.True(t, math.IsInf(c.NextEventTime, 1))

	// WHEN a repair of 2 starts at 5
	BeginRepair(c, 5, 2)
	assert.True(t, c.UnderRepair)
	assert.Equal(t, 7.0, c.NextEventTime)

	// WHEN restored at 7
	dwell = Restore(c, 7, clock)
	assert.Equal(t, 7.0, dwell)
	assert.Equal(t, Up, c.State)
	assert.Equal(t, 14.0, c.NextEventTime)
	assert.Equal(t, []float64{10, 10}, clock.means, "dwells are drawn with the up-time mean")
}

func TestComponent_InvalidTransitionsPanic(t *testing.T) {
	up := &Component{State: Up}
	assert.Panics(t, func() { BeginRepair(up, 0, 1) })
	assert.Panics(t, func() { Restore(up, 0, &meanClock{}) })

	down := &Component{State: Down}
	assert.Panics(t, func() { Fail(down, 0) })
	assert.Panics(t, func() { Restore(down, 0, &meanClock{}) })

	repairing := &Component{State: Down, UnderRepair: true}
	assert.Panics(t, func() { BeginRepair(repairing, 0, 1) })
}

func TestComponentState_String(t *testing.T) {
	assert.Equal(t, "up", Up.String())
	assert.Equal(t, "down", Down.String())
}

func TestGrid_IndexAndRates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.M, cfg.N = 2, 3
	cfg.MuGrid = [][]float64{{1, 2, 3}, {4, 5, 6}}
	g := NewGrid(cfg)

	assert.Equal(t, 6, g.Size())
	assert.Equal(t, 5, g.Index(1, 2))
	row, col := g.Position(4)
	assert.Equal(t, 1, row)
	assert.Equal(t, 1, col)
	assert.Equal(t, 5.0, g.At(1, 1).Mu)
	assert.Equal(t, cfg.Lam, g.At(1, 1).Lam)
	assert.Equal(t, 0, g.DownCount())

	g.SetDown([2]int{0, 2}, [2]int{1, 0})
	assert.Equal(t, 2, g.DownCount())
	assert.True(t, g.IsDown(0, 2))
	assert.False(t, g.IsDown(0, 1))
}
