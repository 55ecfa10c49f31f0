package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Merco74/ScoutPlateform/common/metrics"

	"github.com/nats-io/nats.go"
)

// Publisher sends registration events to a NATS subject. The event key
// travels in the Nats-Msg-Id header so JetStream consumers can deduplicate.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewPublisher(url, subject string, logger *slog.Logger, m *metrics.Metrics) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("scouts-inscription"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &Publisher{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, key string, event interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Header.Set(nats.MsgIdHdr, key)
	msg.Data = data

	start := time.Now()
	err = p.conn.PublishMsg(msg)
	p.metrics.Messaging.RecordPublish(ctx, p.subject, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.subject, err)
	}

	p.logger.DebugContext(ctx, "event published", "subject", p.subject, "key", key)
	return nil
}

// Ping reports whether the connection to the server is up.
func (p *Publisher) Ping(context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats connection %s", p.conn.Status())
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.conn.Drain()
}
