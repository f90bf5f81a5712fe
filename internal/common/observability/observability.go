package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ctc-budget-checker/internal/common/metrics"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Options configures New.
type Options struct {
	ServiceName string
	// Registerer receives the OTel Prometheus collector. Defaults to the global registry.
	Registerer promclient.Registerer
	// JaegerEndpoint enables span export when set, e.g. http://jaeger:14268/api/traces.
	JaegerEndpoint string
	// SpanProcessor is added to the tracer provider; tests use it to capture spans.
	SpanProcessor sdktrace.SpanProcessor
}

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	checkCounter   otelmetric.Int64Counter
	checkDuration  otelmetric.Float64Histogram
}

func New(opts Options) (*Observability, error) {
	if opts.ServiceName == "" {
		return nil, errors.New("observability: service name is required")
	}

	var exporterOpts []otelprom.Option
	if opts.Registerer != nil {
		exporterOpts = append(exporterOpts, otelprom.WithRegisterer(opts.Registerer))
	}
	exporter, err := otelprom.New(exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(opts.ServiceName)

	checkCounter, err := meter.Int64Counter(
		"budget_check_requests",
		otelmetric.WithDescription("Number of budget checks answered"),
	)
	if err != nil {
		return nil, fmt.Errorf("create check counter: %w", err)
	}

	checkDuration, err := meter.Float64Histogram(
		"budget_check_duration",
		otelmetric.WithDescription("Budget check handling duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create check histogram: %w", err)
	}

	var tpOpts []sdktrace.TracerProviderOption
	if opts.JaegerEndpoint != "" {
		jexp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(opts.JaegerEndpoint)))
		if err != nil {
			return nil, fmt.Errorf("create jaeger exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(jexp))
	}
	if opts.SpanProcessor != nil {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(opts.SpanProcessor))
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tracerProvider)

	return &Observability{
		meterProvider:  provider,
		tracerProvider: tracerProvider,
		meter:          meter,
		tracer:         tracerProvider.Tracer(opts.ServiceName),
		checkCounter:   checkCounter,
		checkDuration:  checkDuration,
	}, nil
}

// NewNoop returns an Observability that records Prometheus metrics only.
func NewNoop() *Observability {
	return &Observability{tracer: noop.NewTracerProvider().Tracer("noop")}
}

// StartSpan starts a span named name as a child of any span in ctx.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordCheck records one answered check on both the OTel instruments and
// the Prometheus collectors. errorCode is empty for non-error results.
func (o *Observability) RecordCheck(ctx context.Context, transport, result, errorCode string, duration time.Duration) {
	metrics.RecordCheck(transport, result, errorCode, duration.Seconds())

	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("result", result),
		attribute.String("error_code", errorCode),
	)
	if o.checkCounter != nil {
		o.checkCounter.Add(ctx, 1, attrs)
	}
	if o.checkDuration != nil {
		o.checkDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
