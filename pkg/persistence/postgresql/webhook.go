package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/models"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/persistence"
)

// WebhookRepository handles webhook endpoint database operations.
type WebhookRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWebhookRepository creates a new webhook endpoint repository.
func NewWebhookRepository(db *sql.DB, logger *slog.Logger) *WebhookRepository {
	return &WebhookRepository{db: db, logger: logger}
}

// All returns every configured endpoint, ordered by name.
func (r *WebhookRepository) All(ctx context.Context) ([]*models.WebhookEndpoint, error) {
	query := `
		SELECT
			id
		  , name
		  , url
		  , description
		  , identifier
		  , created_at
		  , updated_at
		FROM webhook_endpoints
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhook endpoints: %w", err)
	}

	defer func(ctx context.Context, r *WebhookRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	endpoints := make([]*models.WebhookEndpoint, 0)

	for rows.Next() {
		endpoint, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook endpoint: %w", err)
		}

		endpoints = append(endpoints, endpoint)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating webhook endpoints: %w", err)
	}

	return endpoints, nil
}

// GetByIdentifier returns the endpoint configured for a logical identifier.
func (r *WebhookRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.WebhookEndpoint, error) {
	query := `
		SELECT
			id
		  , name
		  , url
		  , description
		  , identifier
		  , created_at
		  , updated_at
		FROM webhook_endpoints
		WHERE identifier = $1
	`

	endpoint, err := scanEndpoint(r.db.QueryRowContext(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrEndpointNotFound
		}

		return nil, fmt.Errorf("failed to scan webhook endpoint: %w", err)
	}

	return endpoint, nil
}

// Save inserts the endpoint or updates the row with the same identifier.
func (r *WebhookRepository) Save(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	if strings.TrimSpace(endpoint.Identifier) == "" {
		return persistence.ErrIdentifierRequired
	}

	if strings.TrimSpace(endpoint.URL) == "" {
		return persistence.ErrURLRequired
	}

	now := time.Now().UTC()

	if endpoint.ID == "" {
		endpoint.ID = uuid.New().String()
	}

	if endpoint.CreatedAt.IsZero() {
		endpoint.CreatedAt = now
	}

	endpoint.UpdatedAt = now

	query := `
		INSERT INTO webhook_endpoints (id, name, url, description, identifier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (identifier) DO UPDATE SET
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		endpoint.ID,
		endpoint.Name,
		endpoint.URL,
		endpoint.Description,
		endpoint.Identifier,
		endpoint.CreatedAt,
		endpoint.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save webhook endpoint: %w", err)
	}

	return nil
}

// Delete removes the endpoint for an identifier.
func (r *WebhookRepository) Delete(ctx context.Context, identifier string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM webhook_endpoints WHERE identifier = $1", identifier)
	if err != nil {
		return fmt.Errorf("failed to delete webhook endpoint: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.ErrEndpointNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEndpoint(row rowScanner) (*models.WebhookEndpoint, error) {
	var endpoint models.WebhookEndpoint

	err := row.Scan(
		&endpoint.ID,
		&endpoint.Name,
		&endpoint.URL,
		&endpoint.Description,
		&endpoint.Identifier,
		&endpoint.CreatedAt,
		&endpoint.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &endpoint, nil
}
