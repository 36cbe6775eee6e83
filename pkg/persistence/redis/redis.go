// Package redis provides Redis-backed persistence for webhook endpoint
// configuration.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/persistence"
)

// Persistence implements the persistence layer on Redis. Endpoints live in a
// single hash keyed by identifier, which keeps the full reload used by the
// registry a single HGETALL.
type Persistence struct {
	client      *redis.Client
	logger      *slog.Logger
	webhookRepo *WebhookRepository
}

// NewPersistence creates a Redis persistence layer from a redis:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{
		client:      client,
		logger:      logger,
		webhookRepo: NewWebhookRepository(client),
	}, nil
}

// WebhookRepository returns the webhook endpoint repository.
func (p *Persistence) WebhookRepository() persistence.WebhookRepository {
	return p.webhookRepo
}

// HealthCheck verifies the Redis connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Close closes the Redis client.
func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}
