package trace

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Options configures a Provider.
type Options struct {
	// Endpoint of an OTLP/HTTP collector, as host:port or a URL. Empty
	// disables export.
	Endpoint    string
	ServiceName string
	// Recorder, if set, receives every finished span.
	Recorder *Recorder
}

// Provider owns the tracer provider used by the engine.
type Provider struct {
	tp        *sdktrace.TracerProvider
	exporting bool
}

// NewProvider builds a tracer provider. Spans always reach the recorder;
// they are batched to the collector only when an endpoint is configured.
func NewProvider(ctx context.Context, opts Options) (*Provider, error) {
	name := opts.ServiceName
	if name == "" {
		name = "workbench"
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(name),
	)
	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if opts.Recorder != nil {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(opts.Recorder))
	}

	p := &Provider{}
	if opts.Endpoint != "" {
		exporter, err := newExporter(ctx, opts.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter for %s: %w", opts.Endpoint, err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
		p.exporting = true
	}
	p.tp = sdktrace.NewTracerProvider(tpOpts...)
	return p, nil
}

func newExporter(ctx context.Context, endpoint string) (*otlptrace.Exporter, error) {
	if strings.Contains(endpoint, "://") {
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	}
	return otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
}

// Tracer returns a named tracer.
func (p *Provider) Tracer(name string) oteltrace.Tracer {
	return p.tp.Tracer(name)
}

// Exporting reports whether spans are sent to a collector.
func (p *Provider) Exporting() bool { return p.exporting }

// Shutdown flushes pending exports. Must be called before exit.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
