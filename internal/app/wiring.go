package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	commonmetrics "github.com/Merco74/ScoutPlateform/common/metrics"
	"github.com/Merco74/ScoutPlateform/internal/auth"
	"github.com/Merco74/ScoutPlateform/internal/config"
	"github.com/Merco74/ScoutPlateform/internal/health"
	"github.com/Merco74/ScoutPlateform/internal/kafka"
	"github.com/Merco74/ScoutPlateform/internal/messaging"
	"github.com/Merco74/ScoutPlateform/internal/registration"

	"github.com/redis/go-redis/v9"
)

// CategoryTable turns the configured categories into the validator table.
func CategoryTable(categories map[string]config.CategoryConfig) (registration.CategoryTable, error) {
	if len(categories) == 0 {
		return registration.DefaultCategories(), nil
	}
	rules := make(map[string]registration.CategoryRule, len(categories))
	for name, c := range categories {
		rules[name] = registration.CategoryRule{
			DisplayName: c.DisplayName,
			MinAge:      c.MinAge,
			MaxAge:      c.MaxAge,
		}
	}
	return registration.NewCategoryTable(rules)
}

type eventPublisher interface {
	registration.Publisher
	io.Closer
}

// newPublisher returns nil when events are disabled.
func newPublisher(cfg config.EventsConfig, logger *slog.Logger, m *commonmetrics.Metrics) (eventPublisher, *health.Dependency, error) {
	switch strings.ToLower(cfg.Broker) {
	case "", "none":
		return nil, nil, nil
	case "nats":
		p, err := messaging.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger, m)
		if err != nil {
			return nil, nil, err
		}
		return p, &health.Dependency{Name: "nats", Check: p.Ping}, nil
	case "kafka":
		p, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger, m)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown events broker %q", cfg.Broker)
	}
}

// newSessionStore keeps sessions in memory when no Redis URL is set. The
// returned client is nil in that case.
func newSessionStore(ctx context.Context, cfg config.RedisConfig) (auth.SessionStore, *redis.Client, error) {
	if cfg.URL == "" {
		return auth.NewMemorySessionStore(), nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return auth.NewRedisSessionStore(client, cfg.Namespace), client, nil
}

// newAuthService returns nil when no staff password hash is configured,
// which leaves the staff routes unmounted.
func newAuthService(cfg config.AuthConfig, sessions auth.SessionStore, logger *slog.Logger) (*auth.Service, error) {
	if cfg.AdminPasswordHash == "" {
		return nil, nil
	}
	verifier, err := auth.NewBcryptVerifier(cfg.AdminPasswordHash)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	return auth.NewService(verifier, tokens, sessions, logger), nil
}
