package infra

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
	"github.com/kvv-bao/profiler/internal/pkg/bininfo"
	"github.com/kvv-bao/profiler/internal/pkg/observability"
)

// TracingInit installs the global tracer provider with side-effect
func TracingInit(conf *appconfig.Config, lc fx.Lifecycle) error {
	if !conf.TracingEnabled {
		return nil
	}

	opts := []tracesdk.TracerProviderOption{
		tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.TraceIDRatioBased(conf.TracingSampleRate))),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(observability.ServiceName),
			semconv.ServiceVersionKey.String(bininfo.Version),
			attribute.Bool("dev", conf.DevMode),
		)),
	}

	for _, name := range conf.TracingExporters {
		var (
			exporter tracesdk.SpanExporter
			err      error
		)
		switch name {
		case "jaeger":
			exporter, err = jaeger.New(jaeger.WithCollectorEndpoint())
		case "otlp":
			exporter, err = otlptracegrpc.New(context.Background())
		case "stdout":
			exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		default:
			return errors.Errorf("infra: tracing: unknown exporter %q", name)
		}
		if err != nil {
			return errors.Wrapf(err, "infra: tracing: failed to create %s exporter", name)
		}
		opts = append(opts, tracesdk.WithBatcher(exporter))
	}

	tp := tracesdk.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	log.Info().
		Str("evt.name", "infra.tracing.init").
		Strs("exporters", conf.TracingExporters).
		Float64("sampleRate", conf.TracingSampleRate).
		Msg("tracing enabled")

	lc.Append(fx.Hook{
		OnStop: tp.Shutdown,
	})

	return nil
}
