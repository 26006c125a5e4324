package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitTracerProvider installs a process-wide TracerProvider so every
// otel.Tracer(...) call made elsewhere in the module — notably
// pkg/engine's per-node spans — attaches to a real provider instead of
// the package-level no-op default. No exporter is wired: this repo has no
// collector dependency in its stack, so spans are sampled and built but
// not shipped anywhere until a caller adds a processor via the returned
// provider. shutdown must be called on process exit.
func InitTracerProvider(serviceName string) (shutdown func(context.Context) error, err error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
