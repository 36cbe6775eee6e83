package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/models"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/persistence"
)

const endpointsKey = "webhook_endpoints"

// WebhookRepository stores endpoints as JSON values in one Redis hash.
type WebhookRepository struct {
	client *redis.Client
}

// NewWebhookRepository creates a new Redis-backed webhook endpoint repository.
func NewWebhookRepository(client *redis.Client) *WebhookRepository {
	return &WebhookRepository{client: client}
}

// All returns every configured endpoint, ordered by name.
func (wr *WebhookRepository) All(ctx context.Context) ([]*models.WebhookEndpoint, error) {
	values, err := wr.client.HGetAll(ctx, endpointsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load webhook endpoints: %w", err)
	}

	endpoints := make([]*models.WebhookEndpoint, 0, len(values))

	for identifier, raw := range values {
		var endpoint models.WebhookEndpoint

		err = json.Unmarshal([]byte(raw), &endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to decode webhook endpoint %s: %w", identifier, err)
		}

		endpoints = append(endpoints, &endpoint)
	}

	sort.Slice(endpoints, func(i, j int) bool {
		return endpoints[i].Name < endpoints[j].Name
	})

	return endpoints, nil
}

// GetByIdentifier returns the endpoint configured for a logical identifier.
func (wr *WebhookRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.WebhookEndpoint, error) {
	raw, err := wr.client.HGet(ctx, endpointsKey, identifier).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.ErrEndpointNotFound
		}

		return nil, fmt.Errorf("failed to load webhook endpoint: %w", err)
	}

	var endpoint models.WebhookEndpoint

	err = json.Unmarshal([]byte(raw), &endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to decode webhook endpoint %s: %w", identifier, err)
	}

	return &endpoint, nil
}

// Save inserts the endpoint or replaces the hash field with the same
// identifier.
func (wr *WebhookRepository) Save(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	if strings.TrimSpace(endpoint.Identifier) == "" {
		return persistence.ErrIdentifierRequired
	}

	if strings.TrimSpace(endpoint.URL) == "" {
		return persistence.ErrURLRequired
	}

	now := time.Now().UTC()

	if existing, err := wr.GetByIdentifier(ctx, endpoint.Identifier); err == nil {
		endpoint.ID = existing.ID
		endpoint.CreatedAt = existing.CreatedAt
	}

	if endpoint.ID == "" {
		endpoint.ID = uuid.New().String()
	}

	if endpoint.CreatedAt.IsZero() {
		endpoint.CreatedAt = now
	}

	endpoint.UpdatedAt = now

	data, err := json.Marshal(endpoint)
	if err != nil {
		return fmt.Errorf("failed to encode webhook endpoint: %w", err)
	}

	err = wr.client.HSet(ctx, endpointsKey, endpoint.Identifier, data).Err()
	if err != nil {
		return fmt.Errorf("failed to save webhook endpoint: %w", err)
	}

	return nil
}

// Delete removes the hash field for an identifier.
func (wr *WebhookRepository) Delete(ctx context.Context, identifier string) error {
	removed, err := wr.client.HDel(ctx, endpointsKey, identifier).Result()
	if err != nil {
		return fmt.Errorf("failed to delete webhook endpoint: %w", err)
	}

	if removed == 0 {
		return persistence.ErrEndpointNotFound
	}

	return nil
}
