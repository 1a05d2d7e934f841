package adapters

import (
	"fmt"
	"strings"

	"github.com/verlyx/hub/internal/payment/domain"
)

// aliases maps route and config spellings onto registered provider names.
var aliases = map[string]string{
	"dlocal":   domain.ProviderDLocalGo,
	"dlocalgo": domain.ProviderDLocalGo,
}

// Registry resolves a provider name to the factory that builds its gateway.
type Registry struct {
	factories map[string]domain.AdapterFactory
}

func NewRegistry(factories ...domain.AdapterFactory) *Registry {
	r := &Registry{factories: make(map[string]domain.AdapterFactory, len(factories))}
	for _, f := range factories {
		if f == nil {
			continue
		}
		if name := canonical(f.Provider()); name != "" {
			r.factories[name] = f
		}
	}
	return r
}

func (r *Registry) lookup(provider string) (string, domain.AdapterFactory, bool) {
	if r == nil {
		return "", nil, false
	}
	name := canonical(provider)
	f, ok := r.factories[name]
	return name, f, ok
}

func (r *Registry) ProviderExists(provider string) bool {
	_, _, ok := r.lookup(provider)
	return ok
}

// NewAdapter builds a gateway for provider; cfg.Provider is overwritten with
// the canonical name.
func (r *Registry) NewAdapter(provider string, cfg domain.AdapterConfig) (domain.Gateway, error) {
	name, f, ok := r.lookup(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrProviderNotFound, provider)
	}
	cfg.Provider = name
	return f.NewAdapter(cfg)
}

func canonical(provider string) string {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(provider)), "-", "_")
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}
