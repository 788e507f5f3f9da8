// Package testutil provides shared test infrastructure for the gridsim simulator.
// It consolidates golden-file handling and assertion helpers used across
// sim/ and its sub-package tests.
package testutil

import (
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenRun pins the output of one seeded run.
type GoldenRun struct {
	Name   string        `json:"name"`
	Seed   int64         `json:"seed"`
	Result GoldenMetrics `json:"result"`
}

// GoldenMetrics mirrors sim.Result; kept separate so testutil does not import sim.
type GoldenMetrics struct {
	DowntimeRatio   float64 `json:"downtime_ratio"`
	TTF             float64 `json:"time_to_first_failure"`
	MTBF            float64 `json:"mean_time_between_failures"`
	RepairCost      float64 `json:"repair_cost"`
	MaintenanceCost float64 `json:"maintenance_cost"`
}

// GoldenPath resolves a file in the repo root testdata/ directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func GoldenPath(t *testing.T, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", name)
}

// ReadGolden decodes testdata/<name> into v. Returns false if the file does not exist.
func ReadGolden(t *testing.T, name string, v any) bool {
	t.Helper()
	data, err := os.ReadFile(GoldenPath(t, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	if err != nil {
		t.Fatalf("Failed to read golden file %s: %v", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to parse golden file %s: %v", name, err)
	}
	return true
}

// WriteGolden records v as testdata/<name>.
func WriteGolden(t *testing.T, name string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("Failed to encode golden file %s: %v", name, err)
	}
	path := GoldenPath(t, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create testdata dir: %v", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		t.Fatalf("Failed to write golden file %s: %v", name, err)
	}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
