package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
)

// Metrics groups the infrastructure instruments shared by every component
// of the service.
type Metrics struct {
	Runtime   *RuntimeMetrics
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics
	Health    *HealthMetrics
	Grpc      *GrpcMetrics
	logger    *slog.Logger
}

func New(ctx context.Context, serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	runtime, err := NewRuntimeMetrics(meter)
	if err != nil {
		return nil, err
	}

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	health, err := NewHealthMetrics(meter)
	if err != nil {
		return nil, err
	}

	grpcMetrics, err := NewGrpcMetrics(meter)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "infrastructure metrics initialized")

	return &Metrics{
		Runtime:   runtime,
		Database:  database,
		Messaging: messaging,
		Health:    health,
		Grpc:      grpcMetrics,
		logger:    logger,
	}, nil
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Database:  &DatabaseMetrics{},
		Messaging: &MessagingMetrics{},
		Health:    &HealthMetrics{dependencies: map[string]*DependencyStatus{}},
		Runtime:   &RuntimeMetrics{},
		Grpc:      &GrpcMetrics{},
	}
}
