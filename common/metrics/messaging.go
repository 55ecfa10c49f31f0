package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type MessagingMetrics struct {
	messagesPublished metric.Int64Counter
	publishDuration   metric.Float64Histogram
	publishErrors     metric.Int64Counter
}

func NewMessagingMetrics(meter metric.Meter) (*MessagingMetrics, error) {
	mm := &MessagingMetrics{}

	var err error

	mm.messagesPublished, err = meter.Int64Counter(
		"messaging.messages.published",
		metric.WithDescription("Total number of messages published"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 100µs, 500µs, 1ms, 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s
	mm.publishDuration, err = meter.Float64Histogram(
		"messaging.message.publish_duration",
		metric.WithDescription("Time spent publishing a message"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0),
	)
	if err != nil {
		return nil, err
	}

	mm.publishErrors, err = meter.Int64Counter(
		"messaging.message.errors",
		metric.WithDescription("Total number of failed publishes"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return mm, nil
}

// RecordPublish records one publish attempt on the given subject or topic.
func (mm *MessagingMetrics) RecordPublish(ctx context.Context, subject string, duration time.Duration, err error) {
	if mm == nil || mm.messagesPublished == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("subject", subject))

	mm.messagesPublished.Add(ctx, 1, attrs)
	mm.publishDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		mm.publishErrors.Add(ctx, 1, attrs)
	}
}
