package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/gridsim/sim/artifact"
	"github.com/inference-sim/gridsim/sim/observability"
	"github.com/inference-sim/gridsim/sim/scenario"
	"github.com/inference-sim/gridsim/sim/sweep"
)

var (
	scenarioPath  string // Scenario YAML file
	reportPath    string // Report output file
	reportJSON    bool   // Write the report as JSON instead of CSV
	uploadReport  bool   // Upload the report to the configured artifact store
	sweepWorkers  int    // Overrides the scenario file's workers when set
	sweepLogLevel string
)

// sweepCmd runs every scenario of a scenario file and writes one report row per point
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the parameter sweeps of a scenario file",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(sweepLogLevel)

		shutdown, err := observability.InitTracingFromEnv("gridsim")
		if err != nil {
			logrus.Fatalf("Failed to initialize tracing: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		workersOverride := -1
		if cmd.Flags().Changed("workers") {
			workersOverride = sweepWorkers
		}
		req := sweepRequest{
			ScenarioPath: scenarioPath,
			ReportPath:   reportPath,
			JSON:         reportJSON,
			Upload:       uploadReport,
			Workers:      workersOverride,
		}
		if err := executeSweep(ctx, req, shutdown); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// validateCmd checks a scenario file without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate a scenario file",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(sweepLogLevel)
		if err := validateScenario(os.Stdout, scenarioPath); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// sweepRequest carries the sweep command's inputs.
type sweepRequest struct {
	ScenarioPath string
	ReportPath   string
	JSON         bool
	Upload       bool
	Workers      int // < 0 keeps the scenario file's value
}

// executeSweep runs req, then shuts tracing down whether or not the sweep failed.
func executeSweep(ctx context.Context, req sweepRequest, shutdown func(context.Context) error) error {
	err := runSweep(ctx, req)
	if serr := shutdown(context.Background()); serr != nil {
		logrus.Warnf("Tracing shutdown: %v", serr)
	}
	return err
}

// runSweep loads, expands, runs and reports a scenario file.
func runSweep(ctx context.Context, req sweepRequest) error {
	f, err := scenario.Load(req.ScenarioPath)
	if err != nil {
		return err
	}
	points, err := f.Expand()
	if err != nil {
		return err
	}
	opts := sweep.Options{Workers: f.Workers}
	if req.Workers >= 0 {
		opts.Workers = req.Workers
	}

	report, err := sweep.Run(ctx, points, opts)
	if err != nil {
		return err
	}
	if err := sweep.SaveReport(req.ReportPath, report, req.JSON); err != nil {
		return err
	}
	logrus.Infof("Sweep %s: %d rows written to %s", report.RunID, len(report.Summaries), req.ReportPath)

	if req.Upload {
		store, err := artifact.NewStoreFromEnv()
		if err != nil {
			return err
		}
		if _, err := store.Put(ctx, report.RunID, req.ReportPath); err != nil {
			return fmt.Errorf("uploading report: %w", err)
		}
	}
	return nil
}

// validateScenario loads and expands a scenario file and reports what it would run.
func validateScenario(w io.Writer, path string) error {
	f, err := scenario.Load(path)
	if err != nil {
		return err
	}
	points, err := f.Expand()
	if err != nil {
		return err
	}
	runs := 0
	for _, p := range points {
		runs += p.Runs
	}
	_, err = fmt.Fprintf(w, "%s: %d scenarios, %d points, %d runs\n", path, len(f.Scenarios), len(points), runs)
	return err
}

func init() {
	for _, c := range []*cobra.Command{sweepCmd, validateCmd} {
		c.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file")
		c.Flags().StringVar(&sweepLogLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
		_ = c.MarkFlagRequired("scenario")
	}
	sweepCmd.Flags().StringVar(&reportPath, "out", "report.csv", "Report output file")
	sweepCmd.Flags().BoolVar(&reportJSON, "json", false, "Write the report as JSON instead of CSV")
	sweepCmd.Flags().BoolVar(&uploadReport, "upload", false, "Upload the report to the artifact store (GRIDSIM_ARTIFACT_BACKEND)")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "Concurrent replications, overriding the scenario file (0 = one per CPU)")
}
