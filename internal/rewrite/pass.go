package rewrite

import "context"

// Pass rewrites the trees of a Context.
type Pass interface {
	// Name returns the pass identifier used in configuration (e.g. "icons").
	Name() string
	// Apply rewrites every target unit in rc.
	Apply(ctx context.Context, rc *Context) error
}

// Registry holds registered passes.
type Registry struct {
	passes []Pass
}

// NewRegistry creates a new pass registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with the built-in passes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Icons{})
	r.Register(Unify{PassName: "buttons"})
	r.Register(Landmarks{})
	return r
}

// Register adds a pass to the registry.
func (r *Registry) Register(p Pass) {
	r.passes = append(r.passes, p)
}

// Get returns the pass with the given name, or nil if not found.
func (r *Registry) Get(name string) Pass {
	for _, p := range r.passes {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// All returns all registered passes.
func (r *Registry) All() []Pass {
	return r.passes
}
