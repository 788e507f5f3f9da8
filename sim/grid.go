package sim

// Grid is the m×n array of components, stored row-major.
// Index(row, col) = row*Cols + col is the component's scan order.
type Grid struct {
	Rows, Cols int
	Topology   Topology
	Components []Component
}

// NewGrid builds an all-Up grid from cfg. Dwell times are not drawn here;
// the simulator starts each component when it seeds the event queue.
func NewGrid(cfg Config) *Grid {
	cfg = cfg.WithDefaults()
	g := &Grid{
		Rows:       cfg.M,
		Cols:       cfg.N,
		Topology:   cfg.Topology,
		Components: make([]Component, cfg.M*cfg.N),
	}
	for i := 0; i < cfg.M; i++ {
		for j := 0; j < cfg.N; j++ {
			g.Components[g.Index(i, j)] = Component{
				Row: i, Col: j,
				State: Up,
				Lam:   cfg.LamAt(i, j),
				Mu:    cfg.MuAt(i, j),
			}
		}
	}
	return g
}

// Size returns m·n.
func (g *Grid) Size() int {
	return len(g.Components)
}

// Index returns the row-major index of (row, col).
func (g *Grid) Index(row, col int) int {
	return row*g.Cols + col
}

// Position is the inverse of Index.
func (g *Grid) Position(idx int) (row, col int) {
	return idx / g.Cols, idx % g.Cols
}

// At returns the component at (row, col). Indices must be in range.
func (g *Grid) At(row, col int) *Component {
	return &g.Components[g.Index(row, col)]
}

// IsDown reports whether the component at (row, col) is Down.
func (g *Grid) IsDown(row, col int) bool {
	return g.Components[g.Index(row, col)].State == Down
}

// DownCount returns the number of Down components.
func (g *Grid) DownCount() int {
	n := 0
	for i := range g.Components {
		if g.Components[i].State == Down {
			n++
		}
	}
	return n
}

// SetDown forces the listed (row, col) cells Down. Intended for fixtures.
func (g *Grid) SetDown(cells ...[2]int) {
	for _, c := range cells {
		g.At(c[0], c[1]).State = Down
	}
}

// windowStarts returns the number of start positions for a window of width w
// over a dimension of size d: every position when wrapping, d-w+1 otherwise.
func windowStarts(d, w int, wrap bool) int {
	if wrap {
		return d
	}
	return d - w + 1
}
