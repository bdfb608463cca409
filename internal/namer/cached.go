package namer

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached remembers names per signature and only forwards unseen signatures to
// the wrapped Namer.
type Cached struct {
	next  Namer
	cache *lru.Cache[string, string]
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next Namer, size int) (*Cached, error) {
	if size <= 0 {
		size = 512
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating name cache: %w", err)
	}
	return &Cached{next: next, cache: c}, nil
}

func (c *Cached) Name(ctx context.Context, sigs []Signature) (map[string]string, error) {
	out := make(map[string]string, len(sigs))
	var misses []Signature
	for _, sig := range sigs {
		if name, ok := c.cache.Get(sig.ID); ok {
			out[sig.ID] = name
			continue
		}
		misses = append(misses, sig)
	}
	if len(misses) == 0 {
		return out, nil
	}

	fresh, err := c.next.Name(ctx, misses)
	if err != nil {
		return out, err
	}
	for id, name := range fresh {
		c.cache.Add(id, name)
		out[id] = name
	}
	return out, nil
}

// Len reports the number of cached names.
func (c *Cached) Len() int { return c.cache.Len() }
