// Package telemetry owns the process tracer provider and metrics registry.
//
// Spans are always recorded so API requests carry a traceparent header.
// Export to the diagnostics writer and the metrics dump are opt-in.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/codex-platform/codex-cli/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Telemetry struct {
	registry    *prometheus.Registry
	provider    *sdktrace.TracerProvider
	metricsFile string
}

// New builds the provider and registry. Spans are written to out as JSON
// when cfg.Traces is set.
func New(cfg config.TelemetryConfig, out io.Writer) (*Telemetry, error) {
	var opts []sdktrace.TracerProviderOption
	if cfg.Traces {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("create span exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithSyncer(exporter))
	}

	return &Telemetry{
		registry:    prometheus.NewRegistry(),
		provider:    sdktrace.NewTracerProvider(opts...),
		metricsFile: cfg.MetricsFile,
	}, nil
}

func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.provider
}

// Shutdown flushes spans and writes the metrics dump when one is configured.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if err := t.provider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
	}
	if t.metricsFile != "" {
		if err := t.WriteMetrics(t.metricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteMetrics writes the registry in the Prometheus text format. The file at
// path is replaced atomically.
func (t *Telemetry) WriteMetrics(path string) error {
	families, err := t.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".metrics-*")
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer os.Remove(tmp.Name())

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(tmp, family); err != nil {
			tmp.Close()
			return fmt.Errorf("encode metric %s: %w", family.GetName(), err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metrics file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}
