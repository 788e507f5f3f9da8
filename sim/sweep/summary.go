package sweep

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/gridsim/sim"
)

// Summary aggregates the replications of one point.
type Summary struct {
	Scenario  string     `json:"scenario"`
	Parameter string     `json:"parameter,omitempty"`
	Value     string     `json:"value,omitempty"`
	Variant   string     `json:"variant,omitempty"`
	Config    sim.Config `json:"config"`
	Runs      int        `json:"runs"`

	Reliability        float64 `json:"reliability"` // 1 - mean downtime ratio
	DowntimeStdDev     float64 `json:"downtime_stddev"`
	MTTF               float64 `json:"mttf"` // mean time to first failure
	MTBF               float64 `json:"mtbf"`
	AvgRepairCost      float64 `json:"avg_repair_cost"`
	AvgMaintenanceCost float64 `json:"avg_maintenance_cost"`
	BreakevenProfit    float64 `json:"breakeven_profit"` // +Inf encodes as null
}

// MarshalJSON encodes an infinite breakeven as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	out := struct {
		plain
		BreakevenProfit *float64 `json:"breakeven_profit"`
	}{plain: plain(s)}
	if !math.IsInf(s.BreakevenProfit, 0) && !math.IsNaN(s.BreakevenProfit) {
		out.BreakevenProfit = &s.BreakevenProfit
	}
	return json.Marshal(out)
}

// Aggregate reduces the results of p's replications to a Summary.
// The standard deviation is 0 with fewer than two replications.
func Aggregate(p Point, results []sim.Result) Summary {
	n := len(results)
	downtime := make([]float64, n)
	ttf := make([]float64, n)
	mtbf := make([]float64, n)
	repair := make([]float64, n)
	maintenance := make([]float64, n)
	for i, r := range results {
		downtime[i] = r.DowntimeRatio
		ttf[i] = r.TTF
		mtbf[i] = r.MTBF
		repair[i] = r.RepairCost
		maintenance[i] = r.MaintenanceCost
	}

	s := Summary{
		Scenario:  p.Scenario,
		Parameter: p.Parameter,
		Value:     p.Value,
		Variant:   p.Variant,
		Config:    p.Config,
		Runs:      n,
	}
	if n == 0 {
		s.BreakevenProfit = math.Inf(1)
		return s
	}
	s.Reliability = 1 - stat.Mean(downtime, nil)
	if n > 1 {
		s.DowntimeStdDev = stat.StdDev(downtime, nil)
	}
	s.MTTF = stat.Mean(ttf, nil)
	s.MTBF = stat.Mean(mtbf, nil)
	s.AvgRepairCost = sim.RoundTo(stat.Mean(repair, nil), sim.CostPrecision)
	s.AvgMaintenanceCost = sim.RoundTo(stat.Mean(maintenance, nil), sim.CostPrecision)
	s.BreakevenProfit = Breakeven(s.AvgRepairCost, s.AvgMaintenanceCost, s.Reliability, p.Config.Horizon)
	return s
}
