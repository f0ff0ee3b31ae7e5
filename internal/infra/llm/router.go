// LLM provider router. Selects an LLMProvider at request time; the default
// provider serves every request unless the caller names a registered one.
package llm

import (
	"context"
	"fmt"
)

// Router selects an LLMProvider for each request.
type Router struct {
	providers       map[string]LLMProvider
	defaultProvider string
}

// NewRouter creates a Router with an initial set of providers and a default key.
func NewRouter(providers map[string]LLMProvider, defaultProvider string) *Router {
	// defensive copy so the caller cannot mutate the internal map.
	ps := make(map[string]LLMProvider, len(providers))
	for k, v := range providers {
		ps[k] = v
	}
	return &Router{providers: ps, defaultProvider: defaultProvider}
}

// Register adds (or replaces) a provider under the given key.
// Useful for dynamic reconfiguration or tests.
func (r *Router) Register(key string, p LLMProvider) {
	r.providers[key] = p
}

// Route returns the default provider.
// Returns an error if the default provider is not registered.
func (r *Router) Route(ctx context.Context) (LLMProvider, error) {
	return r.RouteKey(ctx, "")
}

// RouteKey returns the provider registered under key, falling back to the
// default when key is empty or unknown. An unknown key is not an error: model
// identifiers pass through to the provider, which resolves them itself.
func (r *Router) RouteKey(_ context.Context, key string) (LLMProvider, error) {
	if key != "" {
		if p, ok := r.providers[key]; ok {
			return p, nil
		}
	}
	p, ok := r.providers[r.defaultProvider]
	if !ok {
		return nil, fmt.Errorf("llm router: provider %q not registered (available: %v)", r.defaultProvider, r.keys())
	}
	return p, nil
}

// keys returns the registered provider names (for error messages).
func (r *Router) keys() []string {
	out := make([]string, 0, len(r.providers))
	for k := range r.providers {
		out = append(out, k)
	}
	return out
}
