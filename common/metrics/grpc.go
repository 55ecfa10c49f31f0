package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type GrpcMetrics struct {
	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	errorsTotal     metric.Int64Counter
}

func NewGrpcMetrics(meter metric.Meter) (*GrpcMetrics, error) {
	gm := &GrpcMetrics{}

	var err error

	// Buckets: 1ms, 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s
	gm.requestDuration, err = meter.Float64Histogram(
		"grpc.server.request_duration",
		metric.WithDescription("gRPC request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0),
	)
	if err != nil {
		return nil, err
	}

	gm.requestsTotal, err = meter.Int64Counter(
		"grpc.server.requests_total",
		metric.WithDescription("Total number of gRPC requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	gm.errorsTotal, err = meter.Int64Counter(
		"grpc.server.errors_total",
		metric.WithDescription("Total number of gRPC errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return gm, nil
}

// RecordRequest records one finished call. Non-OK codes also count as errors.
func (gm *GrpcMetrics) RecordRequest(ctx context.Context, fullMethod string, duration time.Duration, code codes.Code) {
	if gm == nil || gm.requestsTotal == nil {
		return
	}

	service, method := splitMethodName(fullMethod)
	attrs := metric.WithAttributes(
		attribute.String("grpc_service", service),
		attribute.String("grpc_method", method),
		attribute.String("grpc_code", code.String()),
	)

	gm.requestDuration.Record(ctx, duration.Seconds(), attrs)
	gm.requestsTotal.Add(ctx, 1, attrs)
	if code != codes.OK {
		gm.errorsTotal.Add(ctx, 1, attrs)
	}
}

func (gm *GrpcMetrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		gm.RecordRequest(ctx, info.FullMethod, time.Since(start), status.Code(err))
		return resp, err
	}
}

// splitMethodName splits "/package.Service/Method" into service and method
func splitMethodName(fullMethod string) (string, string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[:i], fullMethod[i+1:]
	}
	return "unknown", fullMethod
}
