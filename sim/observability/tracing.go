// Package observability wires OpenTelemetry tracing around sweeps.
// Tracing is off unless GRIDSIM_OTEL_EXPORTER selects an exporter.
package observability

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/inference-sim/gridsim/sim/internal/envutil"
)

const tracerName = "gridsim"

// Environment variables read by InitTracingFromEnv.
const (
	EnvExporter    = "GRIDSIM_OTEL_EXPORTER" // none | stdout | otlphttp
	EnvEndpoint    = "GRIDSIM_OTEL_ENDPOINT"
	EnvHeaders     = "GRIDSIM_OTEL_HEADERS" // k1=v1,k2=v2
	EnvInsecure    = "GRIDSIM_OTEL_INSECURE"
	EnvSampleRatio = "GRIDSIM_OTEL_SAMPLER_RATIO"
)

var (
	tracerOnce sync.Once
	shutdownFn func(context.Context) error
	initErr    error // sticky: later calls report the first call's failure
)

// InitTracingFromEnv installs the global tracer provider once per process and
// returns its shutdown function. With no exporter configured a no-op provider
// is installed and shutdown does nothing. A failed initialization is not
// retried; every call returns the same error.
func InitTracingFromEnv(service string) (func(context.Context) error, error) {
	tracerOnce.Do(func() {
		exporterName := strings.ToLower(strings.TrimSpace(os.Getenv(EnvExporter)))
		if exporterName == "" || exporterName == "none" {
			otel.SetTracerProvider(noop.NewTracerProvider())
			shutdownFn = func(context.Context) error { return nil }
			return
		}

		exp, err := buildExporter(context.Background(), exporterName)
		if err != nil {
			initErr = err
			return
		}
		res, err := resource.New(context.Background(),
			resource.WithAttributes(semconv.ServiceNameKey.String(service)),
		)
		if err != nil {
			initErr = err
			return
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithSampler(buildSampler()),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdownFn = tp.Shutdown
	})
	if shutdownFn == nil {
		shutdownFn = func(context.Context) error { return nil }
	}
	return shutdownFn, initErr
}

// StartSpan starts a span on the gridsim tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func buildExporter(ctx context.Context, exporterName string) (sdktrace.SpanExporter, error) {
	switch exporterName {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlphttp", "http":
		endpoint := strings.TrimSpace(os.Getenv(EnvEndpoint))
		if endpoint == "" {
			endpoint = "http://localhost:4318"
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
		if headers := ParseHeaders(os.Getenv(EnvHeaders)); len(headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(headers))
		}
		if envutil.Bool(EnvInsecure, true) {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown %s %q (want none, stdout or otlphttp)", EnvExporter, exporterName)
	}
}

// ParseHeaders parses "k1=v1,k2=v2"; malformed pairs are skipped.
func ParseHeaders(raw string) map[string]string {
	out := map[string]string{}
	for _, p := range strings.Split(strings.TrimSpace(raw), ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

func buildSampler() sdktrace.Sampler {
	ratio := envutil.Float(EnvSampleRatio, 1.0)
	if ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	if ratio < 0 {
		ratio = 0
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}
