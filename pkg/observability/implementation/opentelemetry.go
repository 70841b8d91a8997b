package implementation

import (
	"context"
	"fmt"
	"time"

	"github.com/jt828/promtext/pkg/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type otelTracer struct {
	tracer trace.Tracer
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End() { s.span.End() }

func (s otelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s otelSpan) SetAttributes(fields ...observability.Field) {
	attrs := make([]attribute.KeyValue, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, toAttribute(f))
	}
	s.span.SetAttributes(attrs...)
}

func toAttribute(f observability.Field) attribute.KeyValue {
	switch v := f.Value.(type) {
	case string:
		return attribute.String(f.Key, v)
	case int:
		return attribute.Int(f.Key, v)
	case int64:
		return attribute.Int64(f.Key, v)
	case bool:
		return attribute.Bool(f.Key, v)
	case float64:
		return attribute.Float64(f.Key, v)
	case time.Duration:
		return attribute.String(f.Key, v.String())
	default:
		return attribute.String(f.Key, fmt.Sprint(v))
	}
}

func (t otelTracer) Start(
	ctx context.Context,
	name string,
) (context.Context, observability.Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, otelSpan{span}
}

func NewNoopTracer() observability.Tracer {
	return otelTracer{tracer: noop.NewTracerProvider().Tracer("")}
}

// NewOtelTracer exports spans over OTLP/gRPC to endpoint and installs the
// provider globally, so otelhttp and otelgrpc pick it up. With no endpoint
// the tracer records nothing.
func NewOtelTracer(
	ctx context.Context,
	serviceName string,
	endpoint string,
) (observability.Tracer, func(ctx context.Context) error, error) {
	if endpoint == "" {
		return NewNoopTracer(), func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			attribute.String("service.version", "0.1.0"),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return otelTracer{tracer: otel.Tracer(serviceName)},
		func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return tp.Shutdown(ctx)
		},
		nil
}

// NewRecordingTracer returns a tracer backed by an in-process SDK provider
// that hands finished spans to exporter.
func NewRecordingTracer(exporter sdktrace.SpanExporter) (observability.Tracer, *sdktrace.TracerProvider) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return otelTracer{tracer: tp.Tracer("promtext")}, tp
}
