// Package trace provides decision-trace recording for repair-policy analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// RepairRecord captures a single repair order issued by a dispatcher.
type RepairRecord struct {
	Clock    float64 `json:"clock"`
	Policy   string  `json:"policy"`
	Targets  []Cell  `json:"targets"`
	Duration float64 `json:"duration"`
	Score    float64 `json:"score,omitempty"`
	Reason   string  `json:"reason"`
}

// SystemRecord captures a change of the system-failed state.
type SystemRecord struct {
	Clock     float64 `json:"clock"`
	Failed    bool    `json:"failed"`
	DownCount int     `json:"down_count"`
}

// Cell is a (row, col) grid position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}
