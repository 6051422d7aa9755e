package usage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/spend-watch/pkg/services/config"
)

// ClientFactory creates a Client from process settings
type ClientFactory func(ctx context.Context, settings *config.Settings) (Client, error)

// Registry manages provider client factories
type Registry interface {
	// Register adds a new provider client factory
	Register(provider string, factory ClientFactory) error
	// Create instantiates a client for the specified provider
	Create(ctx context.Context, provider string, settings *config.Settings) (Client, error)
	// ListProviders returns the registered provider names, sorted
	ListProviders() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]ClientFactory
}

// NewRegistry creates a registry pre-populated with factories
func NewRegistry(factories map[string]ClientFactory) Registry {
	r := &registry{
		factories: make(map[string]ClientFactory, len(factories)),
	}
	for name, f := range factories {
		r.factories[name] = f
	}
	return r
}

func (r *registry) Register(provider string, factory ClientFactory) error {
	if provider == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[provider]; exists {
		return fmt.Errorf("provider %q is already registered", provider)
	}

	r.factories[provider] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, provider string, settings *config.Settings) (Client, error) {
	r.mu.RLock()
	factory, exists := r.factories[provider]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q is not registered", ErrUnsupportedProvider, provider)
	}

	return factory(ctx, settings)
}

func (r *registry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.factories))
	for provider := range r.factories {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}
