package scenario

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/inference-sim/gridsim/sim"
)

// ValidParameters is the set of sweepable parameter names.
// Pair parameters take "AxB" values: rs sets r and s, mn sets m and n,
// lam_mu sets lam and mu.
var ValidParameters = map[string]bool{
	"batch_size": true,
	"horizon":    true,
	"lam":        true,
	"mu":         true,
	"lam_mu":     true,
	"r":          true,
	"s":          true,
	"rs":         true,
	"m":          true,
	"n":          true,
	"mn":         true,
}

// ParameterNames returns the sweepable parameters in sorted order.
func ParameterNames() []string {
	names := make([]string, 0, len(ValidParameters))
	for name := range ValidParameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyParameter sets the named parameter of cfg from its written value.
// Sweeping lam or mu clears the corresponding per-component grid.
func ApplyParameter(cfg *sim.Config, parameter, value string) error {
	var err error
	switch parameter {
	case "batch_size":
		cfg.BatchSize, err = parseInt(parameter, value)
	case "r":
		cfg.R, err = parseInt(parameter, value)
	case "s":
		cfg.S, err = parseInt(parameter, value)
	case "m":
		cfg.M, err = parseInt(parameter, value)
	case "n":
		cfg.N, err = parseInt(parameter, value)
	case "horizon":
		cfg.Horizon, err = parseFloat(parameter, value)
	case "lam":
		cfg.Lam, err = parseFloat(parameter, value)
		cfg.LamGrid = nil
	case "mu":
		cfg.Mu, err = parseFloat(parameter, value)
		cfg.MuGrid = nil
	case "rs":
		cfg.R, cfg.S, err = parseIntPair(parameter, value)
	case "mn":
		cfg.M, cfg.N, err = parseIntPair(parameter, value)
	case "lam_mu":
		var a, b string
		if a, b, err = splitPair(parameter, value); err != nil {
			return err
		}
		if cfg.Lam, err = parseFloat(parameter, a); err != nil {
			return err
		}
		cfg.Mu, err = parseFloat(parameter, b)
		cfg.LamGrid, cfg.MuGrid = nil, nil
	default:
		return fmt.Errorf("unknown sweep parameter %q", parameter)
	}
	return err
}

func parseInt(parameter, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", parameter, value)
	}
	return v, nil
}

func parseFloat(parameter, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", parameter, value)
	}
	return v, nil
}

func splitPair(parameter, value string) (string, string, error) {
	a, b, ok := strings.Cut(strings.ToLower(value), "x")
	if !ok {
		return "", "", fmt.Errorf("%s: %q is not of the form AxB", parameter, value)
	}
	return a, b, nil
}

func parseIntPair(parameter, value string) (int, int, error) {
	a, b, err := splitPair(parameter, value)
	if err != nil {
		return 0, 0, err
	}
	x, err := parseInt(parameter, a)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseInt(parameter, b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
