package sim

import "testing"

// meanClock returns the mean itself for every draw, making runs fully predictable.
type meanClock struct {
	means []float64 // every requested mean, in order
}

func (c *meanClock) Draw(mean float64) float64 {
	c.means = append(c.means, mean)
	return mean
}

// scriptedClock returns scripted dwell times in order and panics when exhausted.
type scriptedClock struct {
	values []float64
	means  []float64
}

func (c *scriptedClock) Draw(mean float64) float64 {
	if len(c.values) == 0 {
		panic("scriptedClock: out of values")
	}
	v := c.values[0]
	c.values = c.values[1:]
	c.means = append(c.means, mean)
	return v
}

// gridWithDown builds an all-Up m×n grid and forces the given cells Down.
func gridWithDown(m, n int, topology Topology, cells ...[2]int) *Grid {
	cfg := DefaultConfig()
	cfg.M, cfg.N, cfg.Topology = m, n, topology
	g := NewGrid(cfg)
	g.SetDown(cells...)
	return g
}

// testConfig returns a valid configuration for engine tests.
func testConfig(m, n, r, s int, policy RepairPolicy) Config {
	cfg := DefaultConfig()
	cfg.M, cfg.N, cfg.R, cfg.S = m, n, r, s
	cfg.RepairPolicy = policy
	return cfg
}

// mustSimulator builds a simulator or fails the test.
func mustSimulator(t *testing.T, cfg Config, opts ...Option) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, opts...)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return s
}
