// internal/interfaces/http/handlers/registry.go
package handlers

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/analytics"
	"github.com/your-org/storefront-bff/internal/domain/checkout"
	"github.com/your-org/storefront-bff/internal/domain/session"
	"github.com/your-org/storefront-bff/internal/domain/store"
	"github.com/your-org/storefront-bff/internal/remote"
)

// Bundle holds the per-session service graph. Each browser session gets
// its own state store, checkout orchestrator and guard, all sharing one
// remote client authenticated through the guard.
type Bundle struct {
	Guard     *session.Guard
	Store     *store.Service
	Checkout  *checkout.Service
	Analytics *analytics.Service
	Remote    *remote.Client

	mu       sync.Mutex
	hydrated bool
}

// EnsureHydrated loads the cart and wishlist projections from the
// remote service the first time a session touches commerce state.
// A failed hydration is retried on the next request.
func (b *Bundle) EnsureHydrated(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hydrated {
		return nil
	}
	if err := b.Store.Hydrate(ctx); err != nil {
		return err
	}
	b.hydrated = true
	return nil
}

// Registry creates and caches one Bundle per session id
type Registry struct {
	cfg   *config.Config
	creds session.CredentialStore
	log   *logrus.Logger

	mu      sync.Mutex
	bundles map[string]*Bundle
}

// NewRegistry creates a new session bundle registry
func NewRegistry(cfg *config.Config, creds session.CredentialStore, log *logrus.Logger) *Registry {
	return &Registry{
		cfg:     cfg,
		creds:   creds,
		log:     log,
		bundles: make(map[string]*Bundle),
	}
}

// Bundle returns the session's service graph, building it on first use
func (r *Registry) Bundle(sessionID string) *Bundle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.bundles[sessionID]; ok {
		return b
	}

	guard := session.NewGuard(sessionID, r.creds, r.cfg.Session.LoginPath, r.cfg.Session.TTL, r.log)
	client := remote.NewClient(r.cfg, guard, r.log)

	b := &Bundle{
		Guard:    guard,
		Remote:   client,
		Store:    store.NewService(client, guard, r.cfg.Store.Currency, r.log),
		Checkout: checkout.NewService(client, guard, r.cfg.Store.Currency, r.log),
		Analytics: analytics.NewService(
			client,
			guard,
			r.cfg.AnalyticsLocation(),
			r.cfg.Analytics.TopN,
			r.cfg.Analytics.FetchLimit,
			r.log,
		),
	}
	r.bundles[sessionID] = b
	return b
}
