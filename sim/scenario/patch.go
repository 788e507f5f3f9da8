package scenario

import (
	"github.com/inference-sim/gridsim/sim"
)

// ConfigPatch is a partial sim.Config.
// Nil pointer fields mean "not set in YAML" and leave the base value alone.
// String fields use empty string for "not set"; nil grids and edge lists are unset.
type ConfigPatch struct {
	M *int `yaml:"m"`
	N *int `yaml:"n"`
	R *int `yaml:"r"`
	S *int `yaml:"s"`

	Lam     *float64    `yaml:"lam"`
	Mu      *float64    `yaml:"mu"`
	LamGrid [][]float64 `yaml:"lam_grid"`
	MuGrid  [][]float64 `yaml:"mu_grid"`

	Horizon *float64 `yaml:"horizon"`

	Topology   sim.Topology      `yaml:"topology"`
	Geometry   sim.Geometry      `yaml:"geometry"`
	CliqueSize *int              `yaml:"clique_size"`
	Adjacency  sim.AdjacencyKind `yaml:"adjacency"`
	Edges      [][]int           `yaml:"edges"`

	RepairPolicy sim.RepairPolicy `yaml:"repair_policy"`
	BatchSize    *int             `yaml:"batch_size"`

	RepairCost      *float64 `yaml:"repair_cost"`
	MaintenanceRate *float64 `yaml:"maintenance_rate"`

	Seed *int64 `yaml:"seed"`
}

// Apply returns base with every set field of p written over it.
func (p ConfigPatch) Apply(base sim.Config) sim.Config {
	c := base
	setInt(&c.M, p.M)
	setInt(&c.N, p.N)
	setInt(&c.R, p.R)
	setInt(&c.S, p.S)
	setFloat(&c.Lam, p.Lam)
	setFloat(&c.Mu, p.Mu)
	if p.LamGrid != nil {
		c.LamGrid = p.LamGrid
	}
	if p.MuGrid != nil {
		c.MuGrid = p.MuGrid
	}
	setFloat(&c.Horizon, p.Horizon)
	if p.Topology != "" {
		c.Topology = p.Topology
	}
	if p.Geometry != "" {
		c.Geometry = p.Geometry
	}
	setInt(&c.CliqueSize, p.CliqueSize)
	if p.Adjacency != "" {
		c.Adjacency = p.Adjacency
	}
	if p.Edges != nil {
		c.Edges = p.Edges
	}
	if p.RepairPolicy != "" {
		c.RepairPolicy = p.RepairPolicy
	}
	setInt(&c.BatchSize, p.BatchSize)
	setFloat(&c.RepairCost, p.RepairCost)
	setFloat(&c.MaintenanceRate, p.MaintenanceRate)
	if p.Seed != nil {
		c.Seed = *p.Seed
	}
	return c
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
