// Tracks per-run reliability metrics: downtime, time to first failure, the
// history of times between failures, and repair/maintenance cost counters.

package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// CostPrecision is the number of decimal places each maintenance increment
// is rounded to at accumulation time.
const CostPrecision = 6

// Result is the five-metric outcome of one run.
type Result struct {
	DowntimeRatio   float64 `json:"downtime_ratio"`             // total system downtime / horizon, in [0,1]
	TTF             float64 `json:"time_to_first_failure"`      // horizon if the system never failed
	MTBF            float64 `json:"mean_time_between_failures"` // mean up-interval ending in a system failure
	RepairCost      float64 `json:"repair_cost"`
	MaintenanceCost float64 `json:"maintenance_cost"`
}

// Tuple returns the result in (downtime_ratio, TTF, MTBF, repair_cost, maintenance_cost) order.
func (r Result) Tuple() [5]float64 {
	return [5]float64{r.DowntimeRatio, r.TTF, r.MTBF, r.RepairCost, r.MaintenanceCost}
}

func (r Result) String() string {
	return fmt.Sprintf("downtime_ratio=%.6f ttf=%.6f mtbf=%.6f repair_cost=%.6f maintenance_cost=%.6f",
		r.DowntimeRatio, r.TTF, r.MTBF, r.RepairCost, r.MaintenanceCost)
}

// Accumulator applies the system-state transition table at every processed
// event and keeps the run's cost counters.
//
//	was failed | now failed | effect over Δ = min(eventTime, horizon) - clock
//	false      | false      | up-interval += Δ
//	false      | true       | TBF history += up-interval + Δ; up-interval = 0; record TTF on first failure
//	true       | true       | downtime += Δ
//	true       | false      | downtime += Δ
type Accumulator struct {
	Horizon          float64
	Clock            float64
	FailedPreviously bool
	TotalDowntime    float64
	TTF              float64
	TBFHistory       []float64
	RepairCost       float64
	MaintenanceCost  float64

	maintenanceRate float64
	upInterval      float64
	failedOnce      bool
	closed          bool
}

// NewAccumulator creates an accumulator for a run ending at horizon.
func NewAccumulator(horizon, maintenanceRate float64) *Accumulator {
	return &Accumulator{
		Horizon:         horizon,
		TTF:             horizon,
		maintenanceRate: maintenanceRate,
	}
}

// Observe applies the transition table for the interval ending at eventTime,
// given the freshly evaluated system state, and advances the clock.
func (a *Accumulator) Observe(eventTime float64, nowFailed bool) {
	end := math.Min(eventTime, a.Horizon)
	delta := end - a.Clock
	if delta < 0 {
		panic(fmt.Sprintf("Accumulator.Observe: time went backwards (clock=%v, event=%v)", a.Clock, eventTime))
	}
	switch {
	case !a.FailedPreviously && !nowFailed:
		a.upInterval += delta
	case !a.FailedPreviously && nowFailed:
		a.TBFHistory = append(a.TBFHistory, a.upInterval+delta)
		a.upInterval = 0
		a.FailedPreviously = true
		if !a.failedOnce {
			a.failedOnce = true
			a.TTF = eventTime
		}
	case a.FailedPreviously && nowFailed:
		a.TotalDowntime += delta
	default:
		a.TotalDowntime += delta
		a.FailedPreviously = false
	}
	a.Clock = end
}

// ChargeMaintenance accrues maintenance for a freshly drawn up-dwell,
// rounded to CostPrecision decimal places.
func (a *Accumulator) ChargeMaintenance(dwell float64) {
	a.MaintenanceCost += RoundTo(a.maintenanceRate*dwell, CostPrecision)
}

// ChargeRepair accrues one repair action.
func (a *Accumulator) ChargeRepair(cost float64) {
	a.RepairCost += cost
}

// Close accounts the final interval up to the horizon with the system state
// unchanged and returns the run's result. Further calls return the same result.
//
// A zero horizon yields DowntimeRatio = TTF = MTBF = 0 by convention; costs are
// reported as accumulated.
func (a *Accumulator) Close() Result {
	if !a.closed {
		a.closed = true
		if delta := a.Horizon - a.Clock; delta > 0 {
			if a.FailedPreviously {
				a.TotalDowntime += delta
			} else {
				a.upInterval += delta
			}
			a.Clock = a.Horizon
		}
		if len(a.TBFHistory) == 0 {
			a.TBFHistory = append(a.TBFHistory, a.Horizon)
		}
	}
	if a.Horizon == 0 {
		return Result{RepairCost: a.RepairCost, MaintenanceCost: a.MaintenanceCost}
	}
	return Result{
		DowntimeRatio:   a.TotalDowntime / a.Horizon,
		TTF:             a.TTF,
		MTBF:            stat.Mean(a.TBFHistory, nil),
		RepairCost:      a.RepairCost,
		MaintenanceCost: a.MaintenanceCost,
	}
}

// RoundTo rounds x to the given number of decimal places.
func RoundTo(x float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(x*p) / p
}
