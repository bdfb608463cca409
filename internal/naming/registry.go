package naming

import (
	"strconv"
	"sync"
)

// Registry hands out unique names. Claiming a taken base yields Base2, Base3, ...
type Registry struct {
	mu   sync.Mutex
	used map[string]bool
	next map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{used: make(map[string]bool), next: make(map[string]int)}
}

// Claim returns base if it is free, otherwise the first free base+N with N >= 2.
func (r *Registry) Claim(base string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.used[base] {
		r.used[base] = true
		return base
	}
	n := r.next[base]
	if n < 2 {
		n = 2
	}
	for r.used[base+strconv.Itoa(n)] {
		n++
	}
	name := base + strconv.Itoa(n)
	r.used[name] = true
	r.next[base] = n + 1
	return name
}

// Reserve marks name as used and reports whether it was free.
func (r *Registry) Reserve(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.used[name] {
		return false
	}
	r.used[name] = true
	return true
}

// Taken reports whether name has been handed out or reserved.
func (r *Registry) Taken(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.used[name]
}
