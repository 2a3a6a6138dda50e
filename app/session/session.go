// Package session holds the authenticated identity for the lifetime of the
// process.
//
// The provider is an explicit object handed to the screens that need it, not
// a hidden singleton. It fetches the identity exactly once (Load), and the
// identity afterwards changes only through Login and Logout.
package session

import (
	"context"
	"sync"

	"github.com/vperfumes/tracker/app/client"
	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/pkg/logger"
)

// Provider caches the current identity. The server remains the source of
// truth; the cache is invalidated on logout and never refreshed in the
// background.
type Provider struct {
	client *client.Client

	// loadMu serialises Load so concurrent callers share one fetch.
	loadMu sync.Mutex

	mu       sync.RWMutex
	identity *models.Identity
	loading  bool
	loaded   bool
}

// New builds a Provider. The identity is unknown until Load is called.
func New(c *client.Client) *Provider {
	return &Provider{client: c, loading: true}
}

// Load performs the one "who am I" request using the ambient session cookie.
// Any failure (network error, 401, anything else) resolves to "no identity"
// with no retry; callers cannot tell the error kinds apart.
func (p *Provider) Load(ctx context.Context) {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.mu.RLock()
	loaded := p.loaded
	p.mu.RUnlock()
	if loaded {
		return
	}

	identity, err := p.client.CurrentUser(ctx)
	if err != nil {
		logger.Debug("session: current user fetch failed", "error", err)
		identity = nil
	}

	p.mu.Lock()
	p.identity = identity
	p.loading = false
	p.loaded = true
	p.mu.Unlock()
}

// Loading reports whether the initial identity fetch is still pending.
// Screens defer rendering while this is true.
func (p *Provider) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Identity returns the cached identity, or nil when unauthenticated.
func (p *Provider) Identity() *models.Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.identity
}

// Login installs an identity already obtained by the login screen. No
// independent fetch happens here.
func (p *Provider) Login(identity *models.Identity) {
	p.mu.Lock()
	p.identity = identity
	p.loading = false
	p.loaded = true
	p.mu.Unlock()
}

// Logout invalidates the server session best-effort (failures are swallowed)
// and then unconditionally clears the local identity.
func (p *Provider) Logout(ctx context.Context) {
	if err := p.client.Logout(ctx); err != nil {
		logger.Debug("session: logout request failed", "error", err)
	}

	p.mu.Lock()
	p.identity = nil
	p.mu.Unlock()
}
