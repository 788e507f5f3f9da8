package sim

import (
	"fmt"
	"slices"
)

// Adjacency is a symmetric neighbour relation over the m·n row-major component indices.
// Connect always adds both directions, so the relation cannot become asymmetric.
type Adjacency struct {
	size      int
	neighbors [][]int // sorted ascending
}

// NewAdjacency creates an empty relation over size components.
func NewAdjacency(size int) *Adjacency {
	return &Adjacency{size: size, neighbors: make([][]int, size)}
}

// Size returns the number of components the relation covers.
func (a *Adjacency) Size() int {
	return a.size
}

// Connect marks u and v as adjacent. Self-loops are ignored; repeats are no-ops.
func (a *Adjacency) Connect(u, v int) {
	if u < 0 || v < 0 || u >= a.size || v >= a.size {
		panic(fmt.Sprintf("Adjacency.Connect: index out of range (%d, %d) for size %d", u, v, a.size))
	}
	if u == v {
		return
	}
	a.insert(u, v)
	a.insert(v, u)
}

func (a *Adjacency) insert(u, v int) {
	pos, found := slices.BinarySearch(a.neighbors[u], v)
	if !found {
		a.neighbors[u] = slices.Insert(a.neighbors[u], pos, v)
	}
}

// Adjacent reports whether u and v are neighbours.
func (a *Adjacency) Adjacent(u, v int) bool {
	_, found := slices.BinarySearch(a.neighbors[u], v)
	return found
}

// Neighbors returns u's neighbours in ascending order.
// The returned slice is internal storage and MUST NOT be modified.
func (a *Adjacency) Neighbors(u int) []int {
	return a.neighbors[u]
}

// EdgeCount returns the number of undirected edges.
func (a *Adjacency) EdgeCount() int {
	total := 0
	for _, ns := range a.neighbors {
		total += len(ns)
	}
	return total / 2
}

// HexTorusAdjacency wires each cell (i,j) to (i±1,j), (i,j±1), (i-1,j-1) and
// (i+1,j+1), all modulo m and n: a triangular lattice on a torus, where every
// cell sits in six triangles.
func HexTorusAdjacency(m, n int) *Adjacency {
	a := NewAdjacency(m * n)
	idx := func(i, j int) int { return mod(i, m)*n + mod(j, n) }
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			u := idx(i, j)
			a.Connect(u, idx(i-1, j))
			a.Connect(u, idx(i+1, j))
			a.Connect(u, idx(i, j-1))
			a.Connect(u, idx(i, j+1))
			a.Connect(u, idx(i-1, j-1))
			a.Connect(u, idx(i+1, j+1))
		}
	}
	return a
}

// GridAdjacency wires the von Neumann (4-neighbour) relation, wrapping when toroidal.
func GridAdjacency(m, n int, toroidal bool) *Adjacency {
	a := NewAdjacency(m * n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			u := i*n + j
			if j+1 < n {
				a.Connect(u, i*n+j+1)
			} else if toroidal {
				a.Connect(u, i*n)
			}
			if i+1 < m {
				a.Connect(u, (i+1)*n+j)
			} else if toroidal {
				a.Connect(u, j)
			}
		}
	}
	return a
}

// AdjacencyFromEdges builds a relation from [row1, col1, row2, col2] edges.
func AdjacencyFromEdges(m, n int, edges [][]int) (*Adjacency, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("custom adjacency requires at least one edge")
	}
	a := NewAdjacency(m * n)
	for k, e := range edges {
		if len(e) != 4 {
			return nil, fmt.Errorf("edge %d: expected [row1, col1, row2, col2], got %v", k, e)
		}
		for p := 0; p < 4; p += 2 {
			if e[p] < 0 || e[p] >= m || e[p+1] < 0 || e[p+1] >= n {
				return nil, fmt.Errorf("edge %d: cell (%d,%d) outside %dx%d grid", k, e[p], e[p+1], m, n)
			}
		}
		if e[0] == e[2] && e[1] == e[3] {
			return nil, fmt.Errorf("edge %d: self-loop at (%d,%d)", k, e[0], e[1])
		}
		a.Connect(e[0]*n+e[1], e[2]*n+e[3])
	}
	return a, nil
}

// NewAdjacencyFromConfig builds the relation named by cfg.Adjacency.
func NewAdjacencyFromConfig(cfg Config) (*Adjacency, error) {
	cfg = cfg.WithDefaults()
	switch cfg.Adjacency {
	case AdjacencyHexTorus:
		return HexTorusAdjacency(cfg.M, cfg.N), nil
	case AdjacencyGrid:
		return GridAdjacency(cfg.M, cfg.N, false), nil
	case AdjacencyGridTorus:
		return GridAdjacency(cfg.M, cfg.N, true), nil
	case AdjacencyCustom:
		return AdjacencyFromEdges(cfg.M, cfg.N, cfg.Edges)
	default:
		return nil, invalidf("unknown adjacency %q", cfg.Adjacency)
	}
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
