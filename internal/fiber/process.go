package fiber

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dejo1307/pagerepl/internal/snapshot"
)

// NodeRef pairs a node with its id.
type NodeRef struct {
	ID   snapshot.NodeID
	Node snapshot.Node
}

// Group is what a visitor receives for one component: the component and every node
// it rendered.
type Group struct {
	ID        snapshot.ComponentID
	Component snapshot.Component
	Nodes     []NodeRef
}

// VisitFunc is called once per component.
type VisitFunc func(ctx context.Context, g Group) error

// Process builds the dependency graph for meta and visits every component exactly
// once, each code-bearing component strictly after all of its code-bearing
// descendants. Order among unrelated components follows document order.
func Process(ctx context.Context, meta *snapshot.FiberSnapshot, visit VisitFunc) error {
	g, err := BuildGraph(meta)
	if err != nil {
		return err
	}
	return g.Process(ctx, visit)
}

// Process visits the graph's components sequentially in dependency order.
func (g *Graph) Process(ctx context.Context, visit VisitFunc) error {
	remaining := g.meta.ComponentIDs()
	processed := make(map[snapshot.ComponentID]bool, len(remaining))

	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		next := -1
		for i, id := range remaining {
			if g.ready(id, processed) {
				next = i
				break
			}
		}
		if next < 0 {
			return &CyclicDependencyError{Remaining: append([]snapshot.ComponentID(nil), remaining...)}
		}

		id := remaining[next]
		if err := visit(ctx, g.group(id)); err != nil {
			return fmt.Errorf("visiting component %s: %w", id, err)
		}
		processed[id] = true
		remaining = append(remaining[:next], remaining[next+1:]...)
	}
	return nil
}

// ProcessConcurrent visits components in waves: every component whose dependencies
// are all processed runs in the current wave, with at most workers visits in
// flight. The dependency contract is the same as Process; order within a wave is
// not.
func (g *Graph) ProcessConcurrent(ctx context.Context, workers int, visit VisitFunc) error {
	if workers <= 1 {
		return g.Process(ctx, visit)
	}

	remaining := g.meta.ComponentIDs()
	processed := make(map[snapshot.ComponentID]bool, len(remaining))
	var mu sync.Mutex
	wave := 0

	for len(remaining) > 0 {
		var ready, rest []snapshot.ComponentID
		for _, id := range remaining {
			if g.ready(id, processed) {
				ready = append(ready, id)
			} else {
				rest = append(rest, id)
			}
		}
		if len(ready) == 0 {
			return &CyclicDependencyError{Remaining: rest}
		}
		wave++
		log.Printf("[fiber] wave %d: %d components", wave, len(ready))

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(workers)
		for _, id := range ready {
			grp := g.group(id)
			eg.Go(func() error {
				if err := visit(egCtx, grp); err != nil {
					return fmt.Errorf("visiting component %s: %w", grp.ID, err)
				}
				mu.Lock()
				processed[grp.ID] = true
				mu.Unlock()
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
		remaining = rest
	}
	return nil
}

func (g *Graph) ready(id snapshot.ComponentID, processed map[snapshot.ComponentID]bool) bool {
	for dep := range g.Deps[id] {
		if !processed[dep] {
			return false
		}
	}
	return true
}

func (g *Graph) group(id snapshot.ComponentID) Group {
	nodeIDs := g.ComponentNodes[id]
	nodes := make([]NodeRef, 0, len(nodeIDs))
	for _, nid := range nodeIDs {
		nodes = append(nodes, NodeRef{ID: nid, Node: g.meta.Nodes[nid]})
	}
	return Group{ID: id, Component: g.meta.Components[id], Nodes: nodes}
}
