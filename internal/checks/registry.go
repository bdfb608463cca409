// Package checks inspects a finished replica and reports findings. Findings are
// informational; a check error is logged by the engine and never fails a run.
package checks

import (
	"context"

	"github.com/dejo1307/pagerepl/internal/replica"
)

// Check analyzes a replica and produces findings.
type Check interface {
	// Name returns the check identifier (e.g. "renderdiff", "syntax").
	Name() string
	// Run inspects the replica and returns findings.
	Run(ctx context.Context, r *replica.Replica) ([]replica.Finding, error)
}

// Registry holds registered checks.
type Registry struct {
	checks []Check
}

// NewRegistry creates a new check registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a check to the registry.
func (r *Registry) Register(c Check) {
	r.checks = append(r.checks, c)
}

// Get returns the check with the given name, or nil if not found.
func (r *Registry) Get(name string) Check {
	for _, c := range r.checks {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// All returns all registered checks.
func (r *Registry) All() []Check {
	return r.checks
}
