package rewrite

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dejo1307/pagerepl/internal/jsx"
)

// DefaultPasses is the pass order used when none is configured.
var DefaultPasses = []string{"icons", "buttons", "landmarks"}

// Rewriter runs configured passes over a page and resolves the result.
type Rewriter struct {
	passes *Registry
	order  []string
}

// New creates a Rewriter running the named passes from reg in order.
func New(reg *Registry, order []string) *Rewriter {
	if len(order) == 0 {
		order = DefaultPasses
	}
	return &Rewriter{passes: reg, order: order}
}

// Rewrite builds the page unit from body nodes, applies every pass and resolves
// all units. The page unit is returned; rc.Units lists every generated unit.
func (r *Rewriter) Rewrite(ctx context.Context, rc *Context, body []jsx.Node) (*Unit, error) {
	rc.Names.Reserve("Page")
	page := rc.addUnit(KindPage, "app", "Page", &jsx.Element{Children: body})

	for _, name := range r.order {
		p := r.passes.Get(name)
		if p == nil {
			return nil, fmt.Errorf("unknown pass %q", name)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		before := len(rc.Units())
		if err := p.Apply(ctx, rc); err != nil {
			return nil, fmt.Errorf("pass %s: %w", name, err)
		}
		log.Printf("[rewrite] pass %s: %d new units in %s", name, len(rc.Units())-before, time.Since(start))
	}

	for _, u := range rc.Units() {
		if err := rc.Resolve(u); err != nil {
			return nil, fmt.Errorf("resolving %s: %w", u.Path, err)
		}
	}
	return page, nil
}
