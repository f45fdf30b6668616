package evaluation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"docs-evaluator/internal/domain"
)

// Provider sends a review prompt to one AI backend.
type Provider interface {
	// Name is the key clients select the provider by, e.g. "openrouter".
	Name() string
	// Model identifies the model that produced a result.
	Model() string
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Registry holds the configured providers by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a registry populated with providers.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds p. Names are case-insensitive and must be unique.
func (r *Registry) Register(p Provider) error {
	key := strings.ToLower(p.Name())
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[key]; ok {
		return domain.ErrConflict("provider %q already registered", p.Name())
	}
	r.providers[key] = p
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, domain.ErrValidation("unknown AI provider %q (available: %s)", name, strings.Join(r.namesLocked(), ", "))
	}
	return p, nil
}

// Names lists registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.providers))
	for k := range r.providers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
