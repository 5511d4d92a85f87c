package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	otlpmetrichttp "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	stdoutmetric "go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// EnvExporter selects the metrics exporter backend; "otlphttp" sends to a
// collector, anything else (including unset) uses the stdout exporter.
const EnvExporter = "MEILISYNC_OTEL_EXPORTER"

// Providers bundles the tracer and meter built by Setup, plus a Shutdown
// func that flushes both on process exit. No engine package uses Tracer or
// Meter; reconciliation cycles are not instrumented.
type Providers struct {
	Tracer   trace.Tracer
	Meter    metric.Meter
	Shutdown func(context.Context) error
}

// Setup builds the tracer/meter providers. Trace export always goes to
// stdout (there is no collector assumed by default); metric export is
// stdout unless EnvExporter selects "otlphttp".
func Setup(ctx context.Context) (*Providers, error) {
	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: build trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
	otel.SetTracerProvider(tp)

	var metricReader sdkmetric.Reader
	if os.Getenv(EnvExporter) == "otlphttp" {
		exp, err := otlpmetrichttp.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("telemetry: build otlp metric exporter: %w", err)
		}
		metricReader = sdkmetric.NewPeriodicReader(exp)
	} else {
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("telemetry: build stdout metric exporter: %w", err)
		}
		metricReader = sdkmetric.NewPeriodicReader(exp)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricReader))
	otel.SetMeterProvider(mp)

	return &Providers{
		Tracer: tp.Tracer("github.com/meilisync/connector"),
		Meter:  mp.Meter("github.com/meilisync/connector"),
		Shutdown: func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				return err
			}
			return mp.Shutdown(ctx)
		},
	}, nil
}
