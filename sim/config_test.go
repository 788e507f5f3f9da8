package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.M)
	assert.Equal(t, 3, cfg.N)
	assert.Equal(t, 50.0, cfg.Horizon)
	assert.Equal(t, DefaultRepairCost, cfg.RepairCost)
	assert.Equal(t, DefaultMaintenanceRate, cfg.MaintenanceRate)
}

func TestConfig_WithDefaults_FillsEnums(t *testing.T) {
	got := Config{M: 2, N: 2}.WithDefaults()
	assert.Equal(t, TopologyBounded, got.Topology)
	assert.Equal(t, GeometryBlock, got.Geometry)
	assert.Equal(t, RepairImmediate, got.RepairPolicy)
	assert.Equal(t, AdjacencyHexTorus, got.Adjacency)
	assert.Equal(t, 1, got.BatchSize)
	assert.Equal(t, DefaultCliqueSize, got.CliqueSize)
	// numeric model parameters are not defaulted
	assert.Equal(t, 0.0, got.Lam)
}

func TestConfig_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rows", func(c *Config) { c.M = 0 }},
		{"negative columns", func(c *Config) { c.N = -1 }},
		{"r larger than m", func(c *Config) { c.R = 4 }},
		{"s zero", func(c *Config) { c.S = 0 }},
		{"s larger than n", func(c *Config) { c.S = 4 }},
		{"zero lam", func(c *Config) { c.Lam = 0 }},
		{"negative mu", func(c *Config) { c.Mu = -1 }},
		{"infinite lam", func(c *Config) { c.Lam = math.Inf(1) }},
		{"NaN mu", func(c *Config) { c.Mu = math.NaN() }},
		{"negative horizon", func(c *Config) { c.Horizon = -1 }},
		{"infinite horizon", func(c *Config) { c.Horizon = math.Inf(1) }},
		{"unknown topology", func(c *Config) { c.Topology = "mobius" }},
		{"unknown geometry", func(c *Config) { c.Geometry = "ring" }},
		{"unknown policy", func(c *Config) { c.RepairPolicy = "lazy" }},
		{"batch size too large", func(c *Config) { c.RepairPolicy = RepairBatch; c.BatchSize = 10 }},
		{"batch size negative", func(c *Config) { c.RepairPolicy = RepairBatch; c.BatchSize = -2 }},
		{"negative repair cost", func(c *Config) { c.RepairCost = -0.5 }},
		{"NaN maintenance rate", func(c *Config) { c.MaintenanceRate = math.NaN() }},
		{"lam grid wrong rows", func(c *Config) { c.LamGrid = [][]float64{{1, 1, 1}} }},
		{"mu grid wrong cols", func(c *Config) { c.MuGrid = [][]float64{{1, 1}, {1, 1}, {1, 1}} }},
		{"lam grid zero entry", func(c *Config) { c.LamGrid = [][]float64{{1, 1, 1}, {1, 0, 1}, {1, 1, 1}} }},
		{"clique size one", func(c *Config) { c.Geometry = GeometryClique; c.CliqueSize = 1 }},
		{"clique size too large", func(c *Config) { c.Geometry = GeometryClique; c.CliqueSize = 10 }},
		{"unknown adjacency", func(c *Config) { c.Geometry = GeometryClique; c.Adjacency = "hex" }},
		{"custom adjacency without edges", func(c *Config) {
			c.Geometry = GeometryClique
			c.Adjacency = AdjacencyCustom
		}},
		{"custom edge out of range", func(c *Config) {
			c.Geometry = GeometryClique
			c.Adjacency = AdjacencyCustom
			c.Edges = [][]int{{0, 0, 3, 0}}
		}},
		{"smart policy with r out of range", func(c *Config) {
			c.Geometry = GeometryClique
			c.RepairPolicy = RepairSmart
			c.R = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a default config with one invalid field
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			// WHEN validating
			err := cfg.Validate()

			// THEN the error is a configuration error
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestConfig_Validate_Accepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero horizon", func(c *Config) { c.Horizon = 0 }},
		{"r equals m and s equals n", func(c *Config) { c.R, c.S = 3, 3 }},
		{"toroidal", func(c *Config) { c.Topology = TopologyToroidal }},
		{"batch of every component", func(c *Config) { c.RepairPolicy = RepairBatch; c.BatchSize = 9 }},
		{"zero costs", func(c *Config) { c.RepairCost, c.MaintenanceRate = 0, 0 }},
		{"per-component rates", func(c *Config) {
			c.LamGrid = [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
			c.MuGrid = [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
			c.Lam, c.Mu = 0, 0
		}},
		{"clique ignores r and s", func(c *Config) { c.Geometry = GeometryClique; c.R, c.S = 0, 0 }},
		{"custom edges", func(c *Config) {
			c.Geometry = GeometryClique
			c.Adjacency = AdjacencyCustom
			c.Edges = [][]int{{0, 0, 0, 1}, {0, 1, 1, 1}, {1, 1, 0, 0}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_RateLookup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LamGrid = [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	assert.Equal(t, 6.0, cfg.LamAt(1, 2))
	assert.Equal(t, cfg.Mu, cfg.MuAt(1, 2))
}
