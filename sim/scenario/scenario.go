// Package scenario loads YAML scenario files and expands them into sweep points.
//
// A scenario file names a set of experiments over a shared default
// configuration. Each experiment may sweep one parameter over a list of values
// and may cross every value with topology and repair-policy variants:
//
//	version: "1"
//	runs: 200
//	defaults: {m: 3, n: 3, r: 2, s: 2, lam: 10, mu: 10, horizon: 50}
//	scenarios:
//	  batch-size:
//	    config: {repair_policy: batch}
//	    sweep: {parameter: batch_size, values: [1, 2, 3, 4]}
//	  wrap:
//	    topologies: [bounded, toroidal]
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/gridsim/sim"
	"github.com/inference-sim/gridsim/sim/sweep"
)

// File is a parsed scenario file.
type File struct {
	Version   string              `yaml:"version"`
	Defaults  ConfigPatch         `yaml:"defaults"`
	Runs      int                 `yaml:"runs"`    // replications per point; scenarios may override
	Workers   int                 `yaml:"workers"` // 0 means one per CPU
	Seed      *int64              `yaml:"seed"`
	Scenarios map[string]Scenario `yaml:"scenarios"`
}

// Scenario is one named experiment.
type Scenario struct {
	Description string             `yaml:"description"`
	Config      ConfigPatch        `yaml:"config"`
	Runs        int                `yaml:"runs"`
	Sweep       *Sweep             `yaml:"sweep"`
	Topologies  []sim.Topology     `yaml:"topologies"`
	Policies    []sim.RepairPolicy `yaml:"policies"`
}

// Sweep varies one parameter over a list of values.
type Sweep struct {
	Parameter string  `yaml:"parameter"`
	Values    []Value `yaml:"values"`
}

// Value is a sweep value kept as written ("3", "0.5", "2x3") so it can label
// report rows; it is parsed against the parameter when applied.
type Value string

// UnmarshalYAML accepts any scalar.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: sweep value must be a scalar", node.Line)
	}
	*v = Value(node.Value)
	return nil
}

// SupportedVersion is the only scenario file version understood by this package.
const SupportedVersion = "1"

// Load reads and strictly parses a scenario file. Unknown keys are errors.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return Parse(data)
}

// Parse strictly decodes a scenario document.
func Parse(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing scenario file: empty document")
		}
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	return &f, nil
}

// Names returns the scenario names in expansion order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Scenarios))
	for name := range f.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the file structure and every configuration it expands to.
func (f *File) Validate() error {
	_, err := f.Expand()
	return err
}

// Expand produces the sweep points of every scenario, scenarios in name order,
// then sweep values in file order, then variants (topology × policy).
// Every point's configuration is validated; errors wrap sim.ErrInvalidConfiguration
// where the configuration itself is at fault.
func (f *File) Expand() ([]sweep.Point, error) {
	if f.Version != "" && f.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported scenario version %q (want %q)", f.Version, SupportedVersion)
	}
	if f.Runs < 0 {
		return nil, fmt.Errorf("runs must be non-negative, got %d", f.Runs)
	}
	if f.Workers < 0 {
		return nil, fmt.Errorf("workers must be non-negative, got %d", f.Workers)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file defines no scenarios")
	}

	base := sim.DefaultConfig()
	if f.Seed != nil {
		base.Seed = *f.Seed
	}
	base = f.Defaults.Apply(base)

	var points []sweep.Point
	for _, name := range f.Names() {
		sc := f.Scenarios[name]
		pts, err := sc.expand(name, base, f.runsFor(sc))
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", name, err)
		}
		points = append(points, pts...)
	}
	return points, nil
}

func (f *File) runsFor(sc Scenario) int {
	switch {
	case sc.Runs > 0:
		return sc.Runs
	case f.Runs > 0:
		return f.Runs
	default:
		return 1
	}
}

type variant struct {
	topology sim.Topology
	policy   sim.RepairPolicy
}

func (v variant) label() string {
	parts := make([]string, 0, 2)
	if v.topology != "" {
		parts = append(parts, string(v.topology))
	}
	if v.policy != "" {
		parts = append(parts, string(v.policy))
	}
	return strings.Join(parts, "/")
}

func (sc Scenario) variants() ([]variant, error) {
	topologies := sc.Topologies
	if len(topologies) == 0 {
		topologies = []sim.Topology{""}
	}
	policies := sc.Policies
	if len(policies) == 0 {
		policies = []sim.RepairPolicy{""}
	}
	out := make([]variant, 0, len(topologies)*len(policies))
	for _, t := range topologies {
		if t != "" && !sim.ValidTopologies[t] {
			return nil, fmt.Errorf("%w: unknown topology %q", sim.ErrInvalidConfiguration, t)
		}
		for _, p := range policies {
			if p != "" && !sim.ValidRepairPolicies[p] {
				return nil, fmt.Errorf("%w: unknown repair policy %q", sim.ErrInvalidConfiguration, p)
			}
			out = append(out, variant{topology: t, policy: p})
		}
	}
	return out, nil
}

func (sc Scenario) expand(name string, base sim.Config, runs int) ([]sweep.Point, error) {
	if sc.Runs < 0 {
		return nil, fmt.Errorf("runs must be non-negative, got %d", sc.Runs)
	}
	variants, err := sc.variants()
	if err != nil {
		return nil, err
	}
	cfg := sc.Config.Apply(base)

	values := []Value{""}
	parameter := ""
	if sc.Sweep != nil {
		if !ValidParameters[sc.Sweep.Parameter] {
			return nil, fmt.Errorf("unknown sweep parameter %q; valid: %s", sc.Sweep.Parameter, strings.Join(ParameterNames(), ", "))
		}
		if len(sc.Sweep.Values) == 0 {
			return nil, fmt.Errorf("sweep over %s has no values", sc.Sweep.Parameter)
		}
		values = sc.Sweep.Values
		parameter = sc.Sweep.Parameter
	}

	points := make([]sweep.Point, 0, len(values)*len(variants))
	for _, v := range values {
		swept := cfg
		if parameter != "" {
			if err := ApplyParameter(&swept, parameter, string(v)); err != nil {
				return nil, err
			}
		}
		for _, va := range variants {
			pc := swept
			if va.topology != "" {
				pc.Topology = va.topology
			}
			if va.policy != "" {
				pc.RepairPolicy = va.policy
			}
			p := sweep.Point{
				Scenario:  name,
				Parameter: parameter,
				Value:     string(v),
				Variant:   va.label(),
				Config:    pc,
				Runs:      runs,
			}
			if err := pc.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", p.Label(), err)
			}
			points = append(points, p)
		}
	}
	return points, nil
}
