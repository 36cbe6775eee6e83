package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/models"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/persistence"
)

const endpointDirPerm = 0o755

// WebhookRepository stores one JSON file per endpoint under
// <root>/webhooks/<identifier>.json.
type WebhookRepository struct {
	root string
}

// NewWebhookRepository creates a new file-backed webhook endpoint repository.
func NewWebhookRepository(root string) *WebhookRepository {
	return &WebhookRepository{root: root}
}

func (wr *WebhookRepository) dir() string {
	return path.Join(wr.root, "webhooks")
}

func (wr *WebhookRepository) filePath(identifier string) string {
	return path.Join(wr.dir(), identifier+".json")
}

// All returns every configured endpoint, ordered by name.
func (wr *WebhookRepository) All(ctx context.Context) ([]*models.WebhookEndpoint, error) {
	if _, err := os.Stat(wr.dir()); os.IsNotExist(err) {
		return make([]*models.WebhookEndpoint, 0), nil
	}

	root := os.DirFS(wr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook endpoint files: %w", err)
	}

	endpoints := make([]*models.WebhookEndpoint, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		identifier := strings.TrimSuffix(file, ".json")

		endpoint, err := wr.GetByIdentifier(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("failed to load webhook endpoint %s: %w", identifier, err)
		}

		endpoints = append(endpoints, endpoint)
	}

	sort.Slice(endpoints, func(i, j int) bool {
		return endpoints[i].Name < endpoints[j].Name
	})

	return endpoints, nil
}

// GetByIdentifier returns the endpoint configured for a logical identifier.
func (wr *WebhookRepository) GetByIdentifier(_ context.Context, identifier string) (*models.WebhookEndpoint, error) {
	data, err := os.ReadFile(wr.filePath(identifier))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrEndpointNotFound
		}

		return nil, fmt.Errorf("failed to read webhook endpoint file: %w", err)
	}

	var endpoint models.WebhookEndpoint

	err = json.Unmarshal(data, &endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to decode webhook endpoint %s: %w", identifier, err)
	}

	return &endpoint, nil
}

// Save inserts the endpoint or replaces the file with the same identifier.
func (wr *WebhookRepository) Save(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	if strings.TrimSpace(endpoint.Identifier) == "" {
		return persistence.ErrIdentifierRequired
	}

	if strings.TrimSpace(endpoint.URL) == "" {
		return persistence.ErrURLRequired
	}

	err := os.MkdirAll(wr.dir(), endpointDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create webhook endpoint directory: %w", err)
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

	data, err := json.MarshalIndent(endpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode webhook endpoint: %w", err)
	}

	err = os.WriteFile(wr.filePath(endpoint.Identifier), data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write webhook endpoint file: %w", err)
	}

	return nil
}

// Delete removes the endpoint file for an identifier.
func (wr *WebhookRepository) Delete(_ context.Context, identifier string) error {
	err := os.Remove(wr.filePath(identifier))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.ErrEndpointNotFound
		}

		return fmt.Errorf("failed to delete webhook endpoint file: %w", err)
	}

	return nil
}
