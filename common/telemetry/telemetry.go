package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Merco74/ScoutPlateform/common/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitMeterProvider installs a global meter provider exporting over OTLP/gRPC.
// When OTEL_EXPORTER_OTLP_ENDPOINT is empty the global no-op provider is kept
// and nil is returned.
func InitMeterProvider(ctx context.Context, serviceName, serviceVersion string, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		logger.InfoContext(ctx, "OTel endpoint not configured, metrics are not exported")
		return nil, nil
	}

	logger.InfoContext(ctx, "initializing OTel metrics", "endpoint", endpoint)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(10*time.Second))),
	)

	otel.SetMeterProvider(provider)
	return provider, nil
}

type Telemetry struct {
	MeterProvider *sdkmetric.MeterProvider
	Metrics       *metrics.Metrics
}

func Init(ctx context.Context, serviceName, serviceVersion, env string, logger *slog.Logger) (*Telemetry, error) {
	provider, err := InitMeterProvider(ctx, serviceName, serviceVersion, logger)
	if err != nil {
		return nil, err
	}

	m, err := metrics.New(ctx, serviceName, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	meter := otel.Meter(serviceName)
	if err := m.Health.RegisterServiceInfo(ctx, meter, serviceName, serviceVersion, env); err != nil {
		logger.WarnContext(ctx, "failed to register service info", "error", err)
	}

	return &Telemetry{
		MeterProvider: provider,
		Metrics:       m,
	}, nil
}

func (t *Telemetry) Shutdown(ctx context.Context, logger *slog.Logger) error {
	if t == nil || t.MeterProvider == nil {
		return nil
	}
	logger.InfoContext(ctx, "shutting down OTel meter provider")
	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}
