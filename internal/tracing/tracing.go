package tracing

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const TracerName = "autoremediate"

func OtelConfigPresent() bool {
	_, present := os.LookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT")
	return present
}

// InitOtel installs a global tracer provider. Spans are only exported when
// an OTLP endpoint is configured.
func InitOtel(ctx context.Context) (*sdktrace.TracerProvider, func()) {
	var opts []sdktrace.TracerProviderOption

	if OtelConfigPresent() {
		log.Info().Msg("initializing OpenTelemetry with OTLP exporter")

		exp, err := otlptrace.New(ctx, otlptracegrpc.NewClient())
		if err != nil {
			log.Error().Err(err).Msg("failed to create OTLP exporter, spans will not be exported")
		} else {
			opts = append(opts, sdktrace.WithBatcher(exp))
		}
	}

	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTextMapPropagator(propagation.TraceContext{})
	otel.SetTracerProvider(tp)

	return tp, func() {
		_ = tp.ForceFlush(ctx)
		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("failed to shut down tracer provider")
		}
	}
}
