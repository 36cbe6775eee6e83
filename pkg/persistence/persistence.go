// Package persistence defines the storage contracts for webhook endpoint
// configuration.
package persistence

import (
	"context"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/models"
)

// WebhookRepository stores webhook endpoint configuration rows.
type WebhookRepository interface {
	// All returns every configured endpoint, ordered by name.
	All(ctx context.Context) ([]*models.WebhookEndpoint, error)

	// GetByIdentifier returns the endpoint for a logical identifier, or
	// ErrEndpointNotFound.
	GetByIdentifier(ctx context.Context, identifier string) (*models.WebhookEndpoint, error)

	// Save inserts a new endpoint or updates the existing row with the same
	// identifier.
	Save(ctx context.Context, endpoint *models.WebhookEndpoint) error

	// Delete removes the endpoint for an identifier. Deleting an unknown
	// identifier returns ErrEndpointNotFound.
	Delete(ctx context.Context, identifier string) error
}

// Persistence is the top-level storage handle owned by the process.
type Persistence interface {
	WebhookRepository() WebhookRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
