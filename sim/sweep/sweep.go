// Package sweep runs Monte-Carlo replications of simulator configurations and
// aggregates them into per-point summaries.
//
// Replications of one point run on a bounded worker pool. Each replication
// builds its own Simulator with a seed derived by sim.ReplicaSeed, so a sweep's
// output depends only on its inputs, never on the worker count or scheduling.
package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/gridsim/sim"
	"github.com/inference-sim/gridsim/sim/observability"
)

// Point is one configuration to replicate, labelled by where it came from.
type Point struct {
	Scenario  string
	Parameter string // swept parameter name, empty for a single configuration
	Value     string // swept value as written in the report (e.g. "3" or "2x2")
	Variant   string // topology/policy variant label, empty if none
	Config    sim.Config
	Runs      int // replications; replication i uses sim.ReplicaSeed(Config.Seed, i)
}

// Label identifies the point in logs and errors.
func (p Point) Label() string {
	label := p.Scenario
	if p.Parameter != "" {
		label += fmt.Sprintf(" %s=%s", p.Parameter, p.Value)
	}
	if p.Variant != "" {
		label += " [" + p.Variant + "]"
	}
	return label
}

// Options controls sweep execution.
type Options struct {
	Workers int // concurrent replications; <= 0 means runtime.NumCPU()
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// Report is the output of one sweep.
type Report struct {
	RunID     string    `json:"run_id"`
	Summaries []Summary `json:"summaries"`
}

// Run replicates every point in order and returns one summary per point.
// Cancellation is honoured between replications; a started run always completes.
func Run(ctx context.Context, points []Point, opts Options) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Summaries: make([]Summary, 0, len(points))}
	ctx, span := observability.StartSpan(ctx, "sweep.run",
		attribute.String("gridsim.run_id", report.RunID),
		attribute.Int("gridsim.points", len(points)),
	)
	defer span.End()

	logrus.Infof("Sweep %s: %d points, %d workers", report.RunID, len(points), opts.workers())
	for i, p := range points {
		results, err := RunPoint(ctx, p, opts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		summary := Aggregate(p, results)
		report.Summaries = append(report.Summaries, summary)
		logrus.Infof("[%d/%d] %s: reliability=%.6f mttf=%.4f breakeven=%.6f",
			i+1, len(points), p.Label(), summary.Reliability, summary.MTTF, summary.BreakevenProfit)
	}
	return report, nil
}

// RunPoint executes p.Runs replications of p.Config and returns their results
// in replication order.
func RunPoint(ctx context.Context, p Point, opts Options) ([]sim.Result, error) {
	if p.Runs < 1 {
		return nil, fmt.Errorf("%s: runs must be >= 1, got %d", p.Label(), p.Runs)
	}
	if err := p.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", p.Label(), err)
	}
	ctx, span := observability.StartSpan(ctx, "sweep.point",
		attribute.String("gridsim.scenario", p.Scenario),
		attribute.String("gridsim.parameter", p.Parameter),
		attribute.String("gridsim.value", p.Value),
		attribute.String("gridsim.variant", p.Variant),
		attribute.Int("gridsim.runs", p.Runs),
	)
	defer span.End()

	results := make([]sim.Result, p.Runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i := 0; i < p.Runs; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cfg := p.Config
			cfg.Seed = sim.ReplicaSeed(p.Config.Seed, i)
			res, err := sim.RunOnce(cfg)
			if err != nil {
				return fmt.Errorf("%s replication %d: %w", p.Label(), i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Breakeven is the per-unit-of-uptime price at which average costs are covered:
// (avgRepair + avgMaintenance) / (reliability × horizon), rounded to
// sim.CostPrecision digits. +Inf when the system is never up or the horizon is 0.
func Breakeven(avgRepair, avgMaintenance, reliability, horizon float64) float64 {
	denom := reliability * horizon
	if denom <= 0 {
		return math.Inf(1)
	}
	return sim.RoundTo((avgRepair+avgMaintenance)/denom, sim.CostPrecision)
}
