package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	RepairOrders       int
	RepairedComponents int
	SystemFailures     int
	SystemRecoveries   int
	MeanRepairDuration float64
	MaxDownAtFailure   int
	TargetDistribution map[Cell]int // cell → number of repair orders covering it
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		TargetDistribution: make(map[Cell]int),
	}
	if st == nil {
		return summary
	}

	summary.RepairOrders = len(st.Repairs)
	if len(st.Repairs) > 0 {
		total := 0.0
		for _, r := range st.Repairs {
			total += r.Duration
			summary.RepairedComponents += len(r.Targets)
			for _, c := range r.Targets {
				summary.TargetDistribution[c]++
			}
		}
		summary.MeanRepairDuration = total / float64(len(st.Repairs))
	}

	for _, t := range st.Transitions {
		if t.Failed {
			summary.SystemFailures++
			if t.DownCount > summary.MaxDownAtFailure {
				summary.MaxDownAtFailure = t.DownCount
			}
		} else {
			summary.SystemRecoveries++
		}
	}

	return summary
}
