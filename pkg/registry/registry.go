// Package registry resolves logical webhook identifiers to callable URLs,
// isolating every other component from how and where URLs are stored.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/persistence"
)

// Registry caches the identifier to URL mapping loaded from the webhook
// configuration store, merged over the static fallback defaults.
//
// The cache is either unset (nil) or holds the full merged map; it is never
// partially populated. Concurrent Resolve calls during one unset window
// share a single store fetch.
type Registry struct {
	logger *slog.Logger
	repo   persistence.WebhookRepository

	mu    sync.RWMutex
	cache map[string]string // nil means unset

	group singleflight.Group
}

// NewRegistry creates a registry backed by the given repository.
func NewRegistry(logger *slog.Logger, repo persistence.WebhookRepository) *Registry {
	return &Registry{
		logger: logger.With("module", "webhook_registry"),
		repo:   repo,
	}
}

// Load fetches all configured endpoints, merges them over the static
// defaults and replaces the cache with the result. When the store fetch
// fails the full default map is cached and returned instead; callers are
// never exposed to partial state.
func (r *Registry) Load(ctx context.Context) map[string]string {
	urls := defaultURLs()

	endpoints, err := r.repo.All(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to load webhook endpoints, using defaults", "error", err)
	} else {
		for _, endpoint := range endpoints {
			if endpoint.URL == "" {
				continue
			}

			urls[endpoint.Identifier] = endpoint.URL
		}
	}

	r.mu.Lock()
	r.cache = urls
	r.mu.Unlock()

	return urls
}

// Resolve returns the URL for a logical identifier: the configured URL when
// one exists, otherwise the static default, otherwise the empty string.
// Callers must treat an empty result as "unconfigured" and abort instead of
// dialing it. An unset cache triggers a Load shared by all concurrent
// resolvers.
func (r *Registry) Resolve(ctx context.Context, identifier string) string {
	r.mu.RLock()
	cache := r.cache
	r.mu.RUnlock()

	if cache == nil {
		loaded, _, _ := r.group.Do("load", func() (any, error) {
			return r.Load(ctx), nil
		})

		cache = loaded.(map[string]string)
	}

	if url, ok := cache[identifier]; ok {
		return url
	}

	return defaultURLs()[identifier]
}

// Invalidate resets the cache to its unset state. It must be called after
// any mutation of the webhook configuration.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.cache = nil
	r.mu.Unlock()
}
