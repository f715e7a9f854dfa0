// Package telemetry configures OpenTelemetry tracing for a githours process.
package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const defaultServiceName = "githours"

// Config configures tracing setup.
type Config struct {
	Enabled     bool
	ServiceName string
	Logger      *zap.Logger // Receives one debug line per finished span
}

// Runtime contains the initialized provider and its lifecycle hook.
type Runtime struct {
	TracerProvider *sdktrace.TracerProvider
	Shutdown       func(ctx context.Context) error
}

// Setup installs a global tracer provider. When disabled it never samples,
// so instrumented code pays only for no-op spans.
func Setup(cfg Config) (Runtime, error) {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return Runtime{}, err
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.Enabled {
		opts = append(opts, sdktrace.WithSampler(sdktrace.AlwaysSample()))
		if cfg.Logger != nil {
			opts = append(opts, sdktrace.WithSpanProcessor(&logProcessor{logger: cfg.Logger}))
		}
	} else {
		opts = append(opts, sdktrace.WithSampler(sdktrace.NeverSample()))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	return Runtime{TracerProvider: provider, Shutdown: provider.Shutdown}, nil
}

// logProcessor writes finished spans to a zap logger.
type logProcessor struct {
	logger *zap.Logger
}

var _ sdktrace.SpanProcessor = &logProcessor{} // Compile-time check

func (p *logProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := []zap.Field{
		zap.String("span", s.Name()),
		zap.Duration("took", s.EndTime().Sub(s.StartTime())),
		zap.String("trace_id", s.SpanContext().TraceID().String()),
	}
	for _, kv := range s.Attributes() {
		fields = append(fields, zap.String(string(kv.Key), kv.Value.Emit()))
	}
	if status := s.Status(); status.Description != "" {
		fields = append(fields, zap.String("error", status.Description))
	}
	p.logger.Debug("span finished", fields...)
}

func (p *logProcessor) Shutdown(context.Context) error {
	return p.logger.Sync()
}

func (p *logProcessor) ForceFlush(context.Context) error {
	return nil
}
