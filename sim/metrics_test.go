package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulator_TransitionTable(t *testing.T) {
	// GIVEN a run to t=20
	a := NewAccumulator(20, DefaultMaintenanceRate)

	// WHEN the system stays up, fails, stays failed, recovers, and fails again
	a.Observe(3, false) // up-interval 3
	a.Observe(5, true)  // TBF 5, TTF 5
	a.Observe(6, true)  // downtime 1
	a.Observe(8, false) // downtime 3
	a.Observe(12, false)
	a.Observe(14, true) // TBF 6
	res := a.Close()    // downtime += 6

	// THEN
	assert.Equal(t, 5.0, res.TTF)
	assert.Equal(t, []float64{5, 6}, a.TBFHistory)
	assert.InDelta(t, 5.5, res.MTBF, 1e-12)
	assert.InDelta(t, 9.0/20.0, res.DowntimeRatio, 1e-12)
}

func TestAccumulator_NeverFailed(t *testing.T) {
	a := NewAccumulator(50, DefaultMaintenanceRate)
	a.Observe(10, false)
	a.Observe(30, false)
	res := a.Close()

	assert.Equal(t, 0.0, res.DowntimeRatio)
	assert.Equal(t, 50.0, res.TTF)
	assert.Equal(t, 50.0, res.MTBF)
}

func TestAccumulator_EventPastHorizonIsClamped(t *testing.T) {
	a := NewAccumulator(10, DefaultMaintenanceRate)
	a.Observe(4, true)
	a.Observe(25, true)
	res := a.Close()

	assert.Equal(t, 10.0, a.Clock)
	assert.InDelta(t, 0.6, res.DowntimeRatio, 1e-12)
	assert.Equal(t, 4.0, res.TTF)
}

func TestAccumulator_ZeroHorizon(t *testing.T) {
	// GIVEN a zero-length run with maintenance already charged
	a := NewAccumulator(0, DefaultMaintenanceRate)
	a.ChargeMaintenance(8)

	res := a.Close()

	// THEN the ratio metrics are zero and costs are reported
	assert.Equal(t, Result{MaintenanceCost: 2}, res)
}

func TestAccumulator_CloseIsIdempotent(t *testing.T) {
	a := NewAccumulator(10, DefaultMaintenanceRate)
	a.Observe(2, true)
	first := a.Close()
	second := a.Close()
	assert.Equal(t, first, second)
	assert.InDelta(t, 0.8, second.DowntimeRatio, 1e-12)
}

func TestAccumulator_BackwardsTimePanics(t *testing.T) {
	a := NewAccumulator(10, DefaultMaintenanceRate)
	a.Observe(5, false)
	assert.Panics(t, func() { a.Observe(4, false) })
}

func TestAccumulator_Costs(t *testing.T) {
	a := NewAccumulator(10, 0.25)
	a.ChargeRepair(0.5)
	a.ChargeRepair(0.5)
	// 0.25 * 1.23456789 = 0.3086419725 → 0.308642
	a.ChargeMaintenance(1.23456789)
	a.ChargeMaintenance(4)

	res := a.Close()
	assert.Equal(t, 1.0, res.RepairCost)
	assert.InDelta(t, 1.308642, res.MaintenanceCost, 1e-12)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.234568, RoundTo(1.2345678, 6))
	assert.Equal(t, 2.0, RoundTo(1.9999999, 6))
	assert.Equal(t, 0.5, RoundTo(0.5, 6))
}

func TestResult_TupleOrder(t *testing.T) {
	r := Result{DowntimeRatio: 0.1, TTF: 2, MTBF: 3, RepairCost: 4, MaintenanceCost: 5}
	assert.Equal(t, [5]float64{0.1, 2, 3, 4, 5}, r.Tuple())
	assert.Contains(t, r.String(), "downtime_ratio=0.100000")
}
