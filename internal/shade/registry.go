package shade

import (
	"fmt"
	"sort"
)

// Registry maps names to the available color mappings.
type Registry struct {
	mappings map[string]func() Mapping
}

// NewRegistry returns a registry holding the built-in mappings.
func NewRegistry() *Registry {
	r := &Registry{mappings: make(map[string]func() Mapping)}

	r.mappings["banded"] = func() Mapping { return Banded{} }
	r.mappings["unbanded-k4"] = func() Mapping { return UnbandedK4() }
	r.mappings["unbanded-k20"] = func() Mapping { return UnbandedK20() }

	return r
}

// Get looks up a mapping by name.
func (r *Registry) Get(name string) (Mapping, error) {
	fn, ok := r.mappings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMapping, name)
	}
	return fn(), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.mappings[name]
	return ok
}

// Names returns the registered mapping names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.mappings))
	for name := range r.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the mapping registered after name, wrapping around.
func (r *Registry) Next(name string) Mapping {
	names := r.Names()
	for i, n := range names {
		if n == name {
			m, _ := r.Get(names[(i+1)%len(names)])
			return m
		}
	}
	m, _ := r.Get(names[0])
	return m
}
