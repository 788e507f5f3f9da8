package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/gridsim/sim"
	"github.com/inference-sim/gridsim/sim/scenario"
)

// loadConfigFile parses a YAML run configuration with strict field checking:
// typos must cause errors. Any subset of sim.Config fields may be given.
func loadConfigFile(path string) (scenario.ConfigPatch, error) {
	var patch scenario.ConfigPatch
	data, err := os.ReadFile(path)
	if err != nil {
		return patch, fmt.Errorf("reading config file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&patch); err != nil {
		return patch, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return patch, nil
}

// buildRunConfig layers the run configuration: defaults, then --config,
// then every flag the user set explicitly. Flags left at their defaults never
// overwrite values from the file, so callers check Changed() per flag.
func buildRunConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		patch, err := loadConfigFile(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = patch.Apply(cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("m") {
		cfg.M = gridRows
	}
	if flags.Changed("n") {
		cfg.N = gridCols
	}
	if flags.Changed("r") {
		cfg.R = blockRows
	}
	if flags.Changed("s") {
		cfg.S = blockCols
	}
	if flags.Changed("lam") {
		cfg.Lam, cfg.LamGrid = meanUpTime, nil
	}
	if flags.Changed("mu") {
		cfg.Mu, cfg.MuGrid = meanDownTime, nil
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("topology") {
		cfg.Topology = sim.Topology(topology)
	}
	if flags.Changed("geometry") {
		cfg.Geometry = sim.Geometry(geometry)
	}
	if flags.Changed("clique-size") {
		cfg.CliqueSize = cliqueSize
	}
	if flags.Changed("adjacency") {
		cfg.Adjacency = sim.AdjacencyKind(adjacency)
	}
	if flags.Changed("repair-policy") {
		cfg.RepairPolicy = sim.RepairPolicy(repairPolicy)
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = batchSize
	}
	if flags.Changed("repair-cost") {
		cfg.RepairCost = repairCost
	}
	if flags.Changed("maintenance-rate") {
		cfg.MaintenanceRate = maintenanceRate
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
