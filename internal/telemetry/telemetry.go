// Package telemetry traces and counts instance validations.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/corvid-labs/jsonschema"
)

const scope = "github.com/corvid-labs/jsonschema/cmd/jv"

// Recorder wraps schema validation with a span per instance
// and counters of validated and invalid instances.
type Recorder struct {
	RunID string

	tracer    trace.Tracer
	validated metric.Int64Counter
	invalid   metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewRecorder creates the instruments from the given providers.
func NewRecorder(tp trace.TracerProvider, mp metric.MeterProvider) (*Recorder, error) {
	meter := mp.Meter(scope)
	validated, err := meter.Int64Counter("jv.instances.validated",
		metric.WithDescription("Number of instances validated"),
	)
	if err != nil {
		return nil, err
	}
	invalid, err := meter.Int64Counter("jv.instances.invalid",
		metric.WithDescription("Number of instances that failed validation"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("jv.validation.duration",
		metric.WithDescription("Duration of instance validation in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		RunID:     uuid.NewString(),
		tracer:    tp.Tracer(scope),
		validated: validated,
		invalid:   invalid,
		duration:  duration,
	}, nil
}

// Validate validates doc, named name, against sch.
func (r *Recorder) Validate(ctx context.Context, sch *jsonschema.Schema, name string, doc any) error {
	attrs := []attribute.KeyValue{
		attribute.String("jv.run_id", r.RunID),
		attribute.String("jv.schema", sch.Location),
		attribute.String("jv.instance", name),
	}
	ctx, span := r.tracer.Start(ctx, "validate", trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	err := sch.Validate(doc)
	elapsed := time.Since(start)

	opt := metric.WithAttributes(attribute.String("jv.schema", sch.Location))
	r.validated.Add(ctx, 1, opt)
	r.duration.Record(ctx, elapsed.Seconds(), opt)

	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		r.invalid.Add(ctx, 1, opt)
		span.SetAttributes(attribute.Int("jv.errors", countLeaves(verr)))
		span.SetStatus(codes.Error, "instance is invalid")
	}
	return err
}

func countLeaves(e *jsonschema.ValidationError) int {
	n := 0
	for range e.Leaves {
		n++
	}
	return n
}

// --

// Telemetry owns the providers set up for a jv run.
type Telemetry struct {
	*Recorder

	logger *zap.Logger
	tp     *sdktrace.TracerProvider
	reader *sdkmetric.ManualReader
	mp     *sdkmetric.MeterProvider
}

// Setup exports spans to the OTLP/HTTP endpoint, when given. Metrics
// are kept in memory and logged at debug level on Shutdown.
func Setup(ctx context.Context, endpoint string, insecure bool, logger *zap.Logger) (*Telemetry, error) {
	t := &Telemetry{logger: logger}
	t.reader = sdkmetric.NewManualReader()
	t.mp = sdkmetric.NewMeterProvider(sdkmetric.WithReader(t.reader))

	var tp trace.TracerProvider = noop.NewTracerProvider()
	if endpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, err
		}
		t.tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "jv"))),
		)
		tp = t.tp
	}

	rec, err := NewRecorder(tp, t.mp)
	if err != nil {
		return nil, err
	}
	t.Recorder = rec
	logger.Debug("telemetry ready", zap.String("run_id", rec.RunID), zap.String("otlp_endpoint", endpoint))
	return t, nil
}

// Shutdown flushes spans and logs the collected metrics.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err == nil {
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
					var total int64
					for _, dp := range sum.DataPoints {
						total += dp.Value
					}
					t.logger.Debug("metric", zap.String("name", m.Name), zap.Int64("value", total), zap.String("run_id", t.RunID))
				}
			}
		}
	}
	errs := []error{t.mp.Shutdown(ctx)}
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
