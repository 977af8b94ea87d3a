package main

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/floryst/aws-ahi-playground/internal/config"
)

type closer struct {
	name  string
	close func(context.Context) error
}

// telemetry owns everything started for OTLP export. Parts are released in
// reverse order of creation so providers flush before the connection closes.
type telemetry struct {
	closers []closer
}

func (t *telemetry) add(name string, fn func(context.Context) error) {
	t.closers = append(t.closers, closer{name: name, close: fn})
}

func (t *telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		c := t.closers[i]
		if err := c.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	t.closers = nil
	return errors.Join(errs...)
}

// startTelemetry connects to cfg.OtelEndpoint and installs global tracer and
// meter providers. On error, whatever was already started is released.
func startTelemetry(ctx context.Context, cfg *config.Config) (_ *telemetry, err error) {
	t := &telemetry{}
	defer func() {
		if err != nil {
			err = errors.Join(err, t.Shutdown(ctx))
		}
	}()

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.OtelServiceName),
		semconv.ServiceVersion(cfg.OtelServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	conn, err := grpc.NewClient(cfg.OtelEndpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("otlp connection to %s: %w", cfg.OtelEndpoint, err)
	}
	t.add("grpc connection", func(context.Context) error { return conn.Close() })

	tp, err := newTracerProvider(ctx, conn, res)
	if err != nil {
		return nil, err
	}
	t.add("tracer provider", tp.Shutdown)

	mp, err := newMeterProvider(ctx, conn, res)
	if err != nil {
		return nil, err
	}
	t.add("meter provider", mp.Shutdown)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return t, nil
}

func newTracerProvider(ctx context.Context, conn *grpc.ClientConn, res *resource.Resource) (*trace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("otlp trace exporter: %w", err)
	}
	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
	), nil
}

func newMeterProvider(ctx context.Context, conn *grpc.ClientConn, res *resource.Resource) (*metric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}
	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter)),
	), nil
}
