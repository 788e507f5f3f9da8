package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/gridsim/sim"
	"github.com/inference-sim/gridsim/sim/sweep"
	"github.com/inference-sim/gridsim/sim/trace"
)

var (
	// CLI flags for the grid model
	gridRows        int     // Grid rows (m)
	gridCols        int     // Grid columns (n)
	blockRows       int     // Failure block height (r)
	blockCols       int     // Failure block width (s)
	meanUpTime      float64 // Mean component up-time (lam)
	meanDownTime    float64 // Mean component down-time (mu)
	horizon         float64 // Simulated time span
	topology        string  // bounded or toroidal
	geometry        string  // block or clique
	cliqueSize      int     // Clique size for the clique geometry
	adjacency       string  // Adjacency relation for the clique geometry
	repairPolicy    string  // immediate, naive, smart or batch
	batchSize       int     // Batch size for the batch policy
	repairCost      float64 // Cost of one repair order
	maintenanceRate float64 // Maintenance cost per unit of scheduled up-time
	seed            int64   // Master seed

	// CLI flags for execution and output
	configPath     string // Optional YAML file with a (partial) run configuration
	runs           int    // Monte-Carlo replications
	workers        int    // Concurrent replications
	logLevel       string // Log verbosity level
	traceLevel     string // none or decisions
	traceOutput    string // Write the decision trace of replication 0 to this file
	summarizeTrace bool   // Print a trace summary after the run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "gridsim",
	Short: "Discrete-event reliability simulator for grids of repairable components",
}

// runCmd simulates one configuration using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one configuration, optionally replicated",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		cfg, err := buildRunConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if runs < 1 {
			logrus.Fatalf("--runs must be >= 1, got %d", runs)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid --trace-level %q (want none or decisions)", traceLevel)
		}
		if traceOutput != "" && trace.TraceLevel(traceLevel) != trace.TraceLevelDecisions {
			logrus.Warnf("--trace-out has no effect unless --trace-level=decisions")
		}

		logrus.Infof("Starting simulation: %dx%d grid, r=%d s=%d, lam=%g mu=%g, horizon=%g, %s/%s/%s, seed=%d, runs=%d",
			cfg.M, cfg.N, cfg.R, cfg.S, cfg.Lam, cfg.Mu, cfg.Horizon,
			cfg.Topology, cfg.Geometry, cfg.RepairPolicy, cfg.Seed, runs)
		startTime := time.Now()

		if err := executeRun(cmd.Context(), os.Stdout, cfg); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// executeRun runs cfg (replicated when --runs > 1) and prints the result to w.
func executeRun(ctx context.Context, w io.Writer, cfg sim.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if trace.TraceLevel(traceLevel) == trace.TraceLevelDecisions {
		if err := writeTrace(w, cfg); err != nil {
			return err
		}
	}
	if runs == 1 {
		res, err := sim.RunOnce(cfg)
		if err != nil {
			return err
		}
		return printJSON(w, "Run Result", res)
	}
	p := sweep.Point{Scenario: "run", Config: cfg, Runs: runs}
	results, err := sweep.RunPoint(ctx, p, sweep.Options{Workers: workers})
	if err != nil {
		return err
	}
	return printJSON(w, "Summary", sweep.Aggregate(p, results))
}

// writeTrace reruns replication 0 with decision tracing enabled.
func writeTrace(w io.Writer, cfg sim.Config) error {
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	if _, err := sim.RunOnce(cfg, sim.WithTrace(st)); err != nil {
		return err
	}
	summary := trace.Summarize(st)
	if traceOutput != "" {
		data, err := json.MarshalIndent(struct {
			Repairs     []trace.RepairRecord `json:"repairs"`
			Transitions []trace.SystemRecord `json:"transitions"`
		}{st.Repairs, st.Transitions}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding trace: %w", err)
		}
		if err := os.WriteFile(traceOutput, data, 0o644); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		logrus.Infof("Decision trace written to %s (%d repair orders)", traceOutput, summary.RepairOrders)
	}
	if summarizeTrace {
		_, _ = fmt.Fprintln(w, "=== Trace Summary ===")
		_, _ = fmt.Fprintf(w, "Repair orders: %d (%d components)\n", summary.RepairOrders, summary.RepairedComponents)
		_, _ = fmt.Fprintf(w, "Mean repair duration: %.4f\n", summary.MeanRepairDuration)
		_, _ = fmt.Fprintf(w, "System failures: %d, recoveries: %d\n", summary.SystemFailures, summary.SystemRecoveries)
		_, _ = fmt.Fprintf(w, "Max down components at a failure: %d\n", summary.MaxDownAtFailure)
	}
	return nil
}

func printJSON(w io.Writer, title string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", title, err)
	}
	_, err = fmt.Fprintf(w, "=== %s ===\n%s\n", title, data)
	return err
}

func setLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", name)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	def := sim.DefaultConfig()

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML file with run configuration; flags set explicitly override it")
	runCmd.Flags().Int64Var(&seed, "seed", def.Seed, "Master seed; replication i uses a seed derived from it")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Grid model
	runCmd.Flags().IntVar(&gridRows, "m", def.M, "Grid rows")
	runCmd.Flags().IntVar(&gridCols, "n", def.N, "Grid columns")
	runCmd.Flags().IntVar(&blockRows, "r", def.R, "Failure block height (consecutive rows)")
	runCmd.Flags().IntVar(&blockCols, "s", def.S, "Failure block width (consecutive Down components per row)")
	runCmd.Flags().Float64Var(&meanUpTime, "lam", def.Lam, "Mean component up-time")
	runCmd.Flags().Float64Var(&meanDownTime, "mu", def.Mu, "Mean component repair time")
	runCmd.Flags().Float64Var(&horizon, "horizon", def.Horizon, "Simulated time span")
	runCmd.Flags().StringVar(&topology, "topology", string(def.Topology), "Block addressing: bounded or toroidal")
	runCmd.Flags().StringVar(&geometry, "geometry", string(def.Geometry), "System failure criterion: block or clique")
	runCmd.Flags().IntVar(&cliqueSize, "clique-size", def.CliqueSize, "Mutually adjacent Down components that fail the system (clique geometry)")
	runCmd.Flags().StringVar(&adjacency, "adjacency", string(def.Adjacency), "Adjacency for the clique geometry: hex-torus, grid or grid-torus")

	// Repair and cost
	runCmd.Flags().StringVar(&repairPolicy, "repair-policy", string(def.RepairPolicy), "Repair policy: immediate, naive, smart or batch")
	runCmd.Flags().IntVar(&batchSize, "batch-size", def.BatchSize, "Failures collected before a batch repair")
	runCmd.Flags().Float64Var(&repairCost, "repair-cost", def.RepairCost, "Cost of one repair order")
	runCmd.Flags().Float64Var(&maintenanceRate, "maintenance-rate", def.MaintenanceRate, "Maintenance cost per unit of scheduled up-time")

	// Execution and output
	runCmd.Flags().IntVar(&runs, "runs", 1, "Monte-Carlo replications")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent replications (0 = one per CPU)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Decision trace level: none or decisions (traces replication 0)")
	runCmd.Flags().StringVar(&traceOutput, "trace-out", "", "Write the decision trace as JSON to this file")
	runCmd.Flags().BoolVar(&summarizeTrace, "summarize-trace", false, "Print a summary of the decision trace of replication 0")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(validateCmd)
}
