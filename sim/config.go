package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfiguration is wrapped by every Config.Validate failure.
// Callers distinguish configuration errors from runtime errors with errors.Is.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Topology selects how the block failure criterion addresses the grid.
type Topology string

const (
	TopologyBounded  Topology = "bounded"  // no wraparound
	TopologyToroidal Topology = "toroidal" // rows and columns wrap modulo m/n
)

// Geometry selects the system failure criterion.
type Geometry string

const (
	GeometryBlock  Geometry = "block"  // r×s block of Down components
	GeometryClique Geometry = "clique" // k mutually adjacent Down components
)

// RepairPolicy names a repair dispatcher.
type RepairPolicy string

const (
	RepairImmediate RepairPolicy = "immediate"
	RepairNaive     RepairPolicy = "naive"
	RepairSmart     RepairPolicy = "smart"
	RepairBatch     RepairPolicy = "batch"
)

// AdjacencyKind names an adjacency builder for the clique geometry.
type AdjacencyKind string

const (
	AdjacencyHexTorus  AdjacencyKind = "hex-torus"
	AdjacencyGrid      AdjacencyKind = "grid"
	AdjacencyGridTorus AdjacencyKind = "grid-torus"
	AdjacencyCustom    AdjacencyKind = "custom"
)

// ValidTopologies is the set of recognized topology names.
// Shared by Validate() and the CLI flag help text.
var ValidTopologies = map[Topology]bool{"": true, TopologyBounded: true, TopologyToroidal: true}

// ValidGeometries is the set of recognized failure geometries.
var ValidGeometries = map[Geometry]bool{"": true, GeometryBlock: true, GeometryClique: true}

// ValidRepairPolicies is the set of recognized repair policy names.
var ValidRepairPolicies = map[RepairPolicy]bool{
	"": true, RepairImmediate: true, RepairNaive: true, RepairSmart: true, RepairBatch: true,
}

// ValidAdjacencies is the set of recognized adjacency builders.
var ValidAdjacencies = map[AdjacencyKind]bool{
	"": true, AdjacencyHexTorus: true, AdjacencyGrid: true, AdjacencyGridTorus: true, AdjacencyCustom: true,
}

// Default cost constants: one repair action costs 0.5, maintenance accrues
// at 0.25 per unit of scheduled up-time.
const (
	DefaultRepairCost      = 0.5
	DefaultMaintenanceRate = 0.25
	DefaultCliqueSize      = 3
	DefaultSeed            = 42
)

// Config is the per-run configuration record.
// Zero-valued enum fields fall back to their defaults (see WithDefaults).
type Config struct {
	M int `yaml:"m" json:"m"` // grid rows
	N int `yaml:"n" json:"n"` // grid columns
	R int `yaml:"r" json:"r"` // block height (rows)
	S int `yaml:"s" json:"s"` // block width (consecutive Down columns)

	Lam     float64     `yaml:"lam" json:"lam"`                         // mean up-time
	Mu      float64     `yaml:"mu" json:"mu"`                           // mean down-time
	LamGrid [][]float64 `yaml:"lam_grid,omitempty" json:"lam_grid,omitempty"` // per-component override of Lam (m×n)
	MuGrid  [][]float64 `yaml:"mu_grid,omitempty" json:"mu_grid,omitempty"`   // per-component override of Mu (m×n)

	Horizon float64 `yaml:"horizon" json:"horizon"`

	Topology   Topology      `yaml:"topology" json:"topology"`
	Geometry   Geometry      `yaml:"geometry" json:"geometry"`
	CliqueSize int           `yaml:"clique_size" json:"clique_size"`
	Adjacency  AdjacencyKind `yaml:"adjacency" json:"adjacency"`
	Edges      [][]int       `yaml:"edges,omitempty" json:"edges,omitempty"` // custom adjacency: [row1, col1, row2, col2]

	RepairPolicy RepairPolicy `yaml:"repair_policy" json:"repair_policy"`
	BatchSize    int          `yaml:"batch_size" json:"batch_size"`

	RepairCost      float64 `yaml:"repair_cost" json:"repair_cost"`
	MaintenanceRate float64 `yaml:"maintenance_rate" json:"maintenance_rate"`

	Seed int64 `yaml:"seed" json:"seed"`
}

// DefaultConfig returns the 3×3, r=s=2, λ=μ=10, horizon 50 configuration
// with bounded topology and immediate repairs.
func DefaultConfig() Config {
	return Config{
		M: 3, N: 3, R: 2, S: 2,
		Lam: 10, Mu: 10,
		Horizon:         50,
		Topology:        TopologyBounded,
		Geometry:        GeometryBlock,
		CliqueSize:      DefaultCliqueSize,
		Adjacency:       AdjacencyHexTorus,
		RepairPolicy:    RepairImmediate,
		BatchSize:       1,
		RepairCost:      DefaultRepairCost,
		MaintenanceRate: DefaultMaintenanceRate,
		Seed:            DefaultSeed,
	}
}

// WithDefaults returns a copy with empty enum fields and zero batch/clique
// sizes replaced by their defaults. Numeric model parameters are left as-is.
func (c Config) WithDefaults() Config {
	if c.Topology == "" {
		c.Topology = TopologyBounded
	}
	if c.Geometry == "" {
		c.Geometry = GeometryBlock
	}
	if c.RepairPolicy == "" {
		c.RepairPolicy = RepairImmediate
	}
	if c.Adjacency == "" {
		c.Adjacency = AdjacencyHexTorus
	}
	if c.BatchSize == 0 {
		c.BatchSize = 1
	}
	if c.CliqueSize == 0 {
		c.CliqueSize = DefaultCliqueSize
	}
	return c
}

// Validate checks the configuration before any simulation state is built.
// Every returned error wraps ErrInvalidConfiguration.
func (c Config) Validate() error {
	c = c.WithDefaults()
	if c.M < 1 || c.N < 1 {
		return invalidf("grid dimensions must be positive, got %dx%d", c.M, c.N)
	}
	if !ValidTopologies[c.Topology] {
		return invalidf("unknown topology %q", c.Topology)
	}
	if !ValidGeometries[c.Geometry] {
		return invalidf("unknown geometry %q", c.Geometry)
	}
	if !ValidRepairPolicies[c.RepairPolicy] {
		return invalidf("unknown repair policy %q", c.RepairPolicy)
	}
	if c.Geometry == GeometryBlock || c.RepairPolicy == RepairSmart {
		if c.R < 1 || c.R > c.M {
			return invalidf("r must be in [1, %d], got %d", c.M, c.R)
		}
		if c.S < 1 || c.S > c.N {
			return invalidf("s must be in [1, %d], got %d", c.N, c.S)
		}
	}
	if c.Geometry == GeometryClique {
		if !ValidAdjacencies[c.Adjacency] {
			return invalidf("unknown adjacency %q", c.Adjacency)
		}
		if c.CliqueSize < 2 || c.CliqueSize > c.M*c.N {
			return invalidf("clique_size must be in [2, %d], got %d", c.M*c.N, c.CliqueSize)
		}
		if c.Adjacency == AdjacencyCustom {
			if _, err := AdjacencyFromEdges(c.M, c.N, c.Edges); err != nil {
				return invalidf("%v", err)
			}
		}
	}
	if err := validateRates("lam", c.Lam, c.LamGrid, c.M, c.N); err != nil {
		return err
	}
	if err := validateRates("mu", c.Mu, c.MuGrid, c.M, c.N); err != nil {
		return err
	}
	if math.IsNaN(c.Horizon) || math.IsInf(c.Horizon, 0) || c.Horizon < 0 {
		return invalidf("horizon must be a finite non-negative number, got %v", c.Horizon)
	}
	if c.RepairPolicy == RepairBatch && (c.BatchSize < 1 || c.BatchSize > c.M*c.N) {
		return invalidf("batch_size must be in [1, %d], got %d", c.M*c.N, c.BatchSize)
	}
	if !nonNegativeFinite(c.RepairCost) {
		return invalidf("repair_cost must be a finite non-negative number, got %v", c.RepairCost)
	}
	if !nonNegativeFinite(c.MaintenanceRate) {
		return invalidf("maintenance_rate must be a finite non-negative number, got %v", c.MaintenanceRate)
	}
	return nil
}

// LamAt returns the mean up-time of the component at (row, col).
func (c Config) LamAt(row, col int) float64 {
	if c.LamGrid != nil {
		return c.LamGrid[row][col]
	}
	return c.Lam
}

// MuAt returns the mean down-time of the component at (row, col).
func (c Config) MuAt(row, col int) float64 {
	if c.MuGrid != nil {
		return c.MuGrid[row][col]
	}
	return c.Mu
}

func validateRates(name string, uniform float64, grid [][]float64, m, n int) error {
	if grid == nil {
		if !positiveFinite(uniform) {
			return invalidf("%s must be a finite positive number, got %v", name, uniform)
		}
		return nil
	}
	if len(grid) != m {
		return invalidf("%s_grid must have %d rows, got %d", name, m, len(grid))
	}
	for i, row := range grid {
		if len(row) != n {
			return invalidf("%s_grid row %d must have %d columns, got %d", name, i, n, len(row))
		}
		for j, v := range row {
			if !positiveFinite(v) {
				return invalidf("%s_grid[%d][%d] must be a finite positive number, got %v", name, i, j, v)
			}
		}
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func nonNegativeFinite(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
