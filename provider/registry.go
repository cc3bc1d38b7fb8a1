package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds the named factories for one provider kind. Each
// sidecar package registers its factory in init; the binaries pick one
// by its configured name.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry creates an empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

// RegisterFactory makes a factory available under name, replacing any
// earlier registration.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create builds a provider via the named factory. Unknown names report
// the registered alternatives so config typos are easy to spot.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown provider %q, registered: %s",
			name, strings.Join(r.Names(), ", "))
	}
	return factory(cfg)
}

// Names returns the registered factory names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
