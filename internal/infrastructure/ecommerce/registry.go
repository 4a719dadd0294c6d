package ecommerce

import (
	"fmt"
	"sync"

	"github.com/channelbridge/backend/internal/domain/integration"
)

// Registry holds the registered storefront clients, keyed by platform code
type Registry struct {
	mu      sync.RWMutex
	clients map[integration.PlatformCode]integration.StorefrontClient
}

// NewRegistry creates a new client registry
func NewRegistry(clients ...integration.StorefrontClient) *Registry {
	r := &Registry{
		clients: make(map[integration.PlatformCode]integration.StorefrontClient),
	}
	for _, c := range clients {
		r.Register(c)
	}
	return r
}

// Register adds a client. A later registration for the same platform code
// replaces the earlier one.
func (r *Registry) Register(client integration.StorefrontClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.Platform()] = client
}

// GetClient returns the client for the given platform code
func (r *Registry) GetClient(code integration.PlatformCode) (integration.StorefrontClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformNotRegistered, code)
	}
	return client, nil
}

// ListClients returns all registered clients
func (r *Registry) ListClients() []integration.StorefrontClient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]integration.StorefrontClient, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Ensure Registry implements ClientRegistry
var _ integration.ClientRegistry = (*Registry)(nil)
