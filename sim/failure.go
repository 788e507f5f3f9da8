package sim

import "fmt"

// FailurePredicate decides from the grid alone whether the system as a whole
// is failed. Implementations must be pure: the simulator calls IsFailed once
// per processed event and relies on repeated calls agreeing.
type FailurePredicate interface {
	IsFailed(g *Grid) bool
	Name() string
}

// NewFailurePredicate creates the predicate selected by cfg.Geometry.
// cfg must already be valid.
func NewFailurePredicate(cfg Config) (FailurePredicate, error) {
	cfg = cfg.WithDefaults()
	switch cfg.Geometry {
	case GeometryBlock:
		return &BlockPredicate{R: cfg.R, S: cfg.S, Topology: cfg.Topology}, nil
	case GeometryClique:
		adj, err := NewAdjacencyFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return NewCliquePredicate(cfg.CliqueSize, adj), nil
	default:
		return nil, invalidf("unknown geometry %q", cfg.Geometry)
	}
}

// BlockPredicate fails the system when an r×s block of Down components exists:
// r consecutive rows that each contain a run of s consecutive Down components
// starting at the same column.
//
// Evaluation is two-phase. Each row is scanned once to collect its hazard start
// columns (the start of every window of s consecutive Down cells), then every
// window of r consecutive rows is checked for a start column common to all of
// them. This costs O(m·n) for the scan plus O(m·r·n) for the intersections.
type BlockPredicate struct {
	R, S     int
	Topology Topology
}

func (p *BlockPredicate) Name() string {
	return fmt.Sprintf("block(r=%d,s=%d,%s)", p.R, p.S, p.Topology)
}

func (p *BlockPredicate) wraps() bool {
	return p.Topology == TopologyToroidal
}

// IsFailed implements FailurePredicate.
func (p *BlockPredicate) IsFailed(g *Grid) bool {
	hazards := make([][]bool, g.Rows)
	for i := range hazards {
		hazards[i] = p.hazardMask(g, i)
	}
	starts := windowStarts(g.Rows, p.R, p.wraps())
	for top := 0; top < starts; top++ {
		for col := 0; col < g.Cols; col++ {
			if p.sharedStart(hazards, top, col) {
				return true
			}
		}
	}
	return false
}

// sharedStart reports whether col is a hazard start in all R rows from top.
func (p *BlockPredicate) sharedStart(hazards [][]bool, top, col int) bool {
	m := len(hazards)
	for k := 0; k < p.R; k++ {
		if !hazards[(top+k)%m][col] {
			return false
		}
	}
	return true
}

// hazardMask marks the start columns of every run of S consecutive Down cells in row.
// Once a run reaches S the counter is held at S-1, so a longer run records each
// of its S-wide windows exactly once. When toroidal the scan continues S-1 cells
// past the last column so runs crossing column n-1 → 0 are found.
func (p *BlockPredicate) hazardMask(g *Grid, row int) []bool {
	n := g.Cols
	mask := make([]bool, n)
	span := n
	if p.wraps() {
		span = n + p.S - 1
	}
	run := 0
	for j := 0; j < span; j++ {
		if !g.IsDown(row, j%n) {
			run = 0
			continue
		}
		run++
		if run == p.S {
			mask[(j-p.S+1)%n] = true
			run--
		}
	}
	return mask
}

// HazardStarts returns the hazard start columns of row in ascending order.
func (p *BlockPredicate) HazardStarts(g *Grid, row int) []int {
	var starts []int
	for col, ok := range p.hazardMask(g, row) {
		if ok {
			starts = append(starts, col)
		}
	}
	return starts
}

// CliquePredicate fails the system when K mutually adjacent components are all
// Down. With K=3 on HexTorusAdjacency this is the triangle criterion of the
// lattice-structure study.
type CliquePredicate struct {
	K   int
	Adj *Adjacency
}

// NewCliquePredicate creates a clique predicate. Panics if k < 2 or adj is nil.
func NewCliquePredicate(k int, adj *Adjacency) *CliquePredicate {
	if k < 2 {
		panic(fmt.Sprintf("NewCliquePredicate: k must be >= 2, got %d", k))
	}
	if adj == nil {
		panic("NewCliquePredicate: adjacency must not be nil")
	}
	return &CliquePredicate{K: k, Adj: adj}
}

func (p *CliquePredicate) Name() string {
	return fmt.Sprintf("clique(k=%d)", p.K)
}

// IsFailed implements FailurePredicate.
// Cliques are grown in ascending index order, so each candidate set is examined once.
func (p *CliquePredicate) IsFailed(g *Grid) bool {
	if g.Size() != p.Adj.Size() {
		panic(fmt.Sprintf("CliquePredicate: grid has %d components, adjacency covers %d", g.Size(), p.Adj.Size()))
	}
	if g.DownCount() < p.K {
		return false
	}
	for v := range g.Components {
		if !g.Components[v].IsDown() {
			continue
		}
		var candidates []int
		for _, u := range p.Adj.Neighbors(v) {
			if u > v && g.Components[u].IsDown() {
				candidates = append(candidates, u)
			}
		}
		if p.grow(1, candidates) {
			return true
		}
	}
	return false
}

// grow extends a clique of the given size; every candidate is Down and adjacent
// to all current members.
func (p *CliquePredicate) grow(size int, candidates []int) bool {
	if size == p.K {
		return true
	}
	if size+len(candidates) < p.K {
		return false
	}
	for i, u := range candidates {
		next := make([]int, 0, len(candidates)-i-1)
		for _, w := range candidates[i+1:] {
			if p.Adj.Adjacent(u, w) {
				next = append(next, w)
			}
		}
		if p.grow(size+1, next) {
			return true
		}
	}
	return false
}
