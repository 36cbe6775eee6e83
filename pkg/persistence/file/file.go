// Package file provides file-based persistence for webhook endpoint
// configuration, intended for development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface on the file
// system.
type Persistence struct {
	root        string
	webhookRepo *WebhookRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A "file://" prefix on the root is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:        cleanRoot,
		webhookRepo: NewWebhookRepository(cleanRoot),
	}
}

// WebhookRepository returns the webhook endpoint repository.
func (fp *Persistence) WebhookRepository() persistence.WebhookRepository {
	return fp.webhookRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
