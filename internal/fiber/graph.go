// Package fiber turns captured component metadata into dependency graphs and visits
// components in dependency order.
package fiber

import (
	"errors"
	"fmt"

	"github.com/dejo1307/pagerepl/internal/snapshot"
)

// ErrInvalidMetadata is wrapped by every structural validation failure.
var ErrInvalidMetadata = errors.New("invalid fiber metadata")

// Graph holds the structures derived from a FiberSnapshot. It is built once per run
// and discarded afterwards.
type Graph struct {
	meta *snapshot.FiberSnapshot

	// Root is the single node without a parent.
	Root snapshot.NodeID
	// Children maps a node to its child nodes in document order.
	Children map[snapshot.NodeID][]snapshot.NodeID
	// ComponentNodes maps a component to the nodes it rendered, in document order.
	ComponentNodes map[snapshot.ComponentID][]snapshot.NodeID
	// Direct maps a component to the components rendered directly beneath it.
	Direct map[snapshot.ComponentID][]snapshot.ComponentID
	// Deps maps a component to the transitive set of code-bearing components
	// rendered beneath it.
	Deps map[snapshot.ComponentID]map[snapshot.ComponentID]bool
}

// Validate checks the node invariants: exactly one root, every parent id resolves
// to an existing node and every node references a known component.
func Validate(meta *snapshot.FiberSnapshot) (snapshot.NodeID, error) {
	if meta == nil {
		return "", fmt.Errorf("%w: no metadata", ErrInvalidMetadata)
	}
	var roots []snapshot.NodeID
	for _, id := range meta.NodeIDs() {
		n := meta.Nodes[id]
		if _, ok := meta.Components[n.ComponentID]; !ok {
			return "", fmt.Errorf("%w: node %s references unknown component %s", ErrInvalidMetadata, id, n.ComponentID)
		}
		if n.IsRoot() {
			roots = append(roots, id)
			continue
		}
		if _, ok := meta.Nodes[*n.ParentID]; !ok {
			return "", fmt.Errorf("%w: node %s has unknown parent %s", ErrInvalidMetadata, id, *n.ParentID)
		}
	}
	switch len(roots) {
	case 0:
		if len(meta.Nodes) == 0 {
			return "", nil
		}
		return "", fmt.Errorf("%w: no root node", ErrInvalidMetadata)
	case 1:
		return roots[0], nil
	default:
		return "", fmt.Errorf("%w: %d root nodes %v", ErrInvalidMetadata, len(roots), roots)
	}
}

// BuildGraph validates meta and derives the child map, the component->nodes map,
// direct component edges and the transitive dependency closure. A component that
// can reach itself yields a *CyclicDependencyError.
func BuildGraph(meta *snapshot.FiberSnapshot) (*Graph, error) {
	root, err := Validate(meta)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		meta:           meta,
		Root:           root,
		Children:       make(map[snapshot.NodeID][]snapshot.NodeID),
		ComponentNodes: make(map[snapshot.ComponentID][]snapshot.NodeID),
		Direct:         make(map[snapshot.ComponentID][]snapshot.ComponentID),
		Deps:           make(map[snapshot.ComponentID]map[snapshot.ComponentID]bool),
	}

	seenEdge := make(map[[2]snapshot.ComponentID]bool)
	for _, id := range meta.NodeIDs() {
		n := meta.Nodes[id]
		g.ComponentNodes[n.ComponentID] = append(g.ComponentNodes[n.ComponentID], id)
		if n.IsRoot() {
			continue
		}
		parentID := *n.ParentID
		g.Children[parentID] = append(g.Children[parentID], id)

		parentComp := meta.Nodes[parentID].ComponentID
		if parentComp == n.ComponentID {
			continue
		}
		edge := [2]snapshot.ComponentID{parentComp, n.ComponentID}
		if !seenEdge[edge] {
			seenEdge[edge] = true
			g.Direct[parentComp] = append(g.Direct[parentComp], n.ComponentID)
		}
	}

	if cycles := findCycles(meta.ComponentIDs(), g.Direct); len(cycles) > 0 {
		return nil, &CyclicDependencyError{Cycles: cycles}
	}

	for _, id := range meta.ComponentIDs() {
		g.closure(id)
	}
	return g, nil
}

// closure computes Deps[id] by memoized DFS. The graph is acyclic by the time this
// runs, so recursion terminates.
func (g *Graph) closure(id snapshot.ComponentID) map[snapshot.ComponentID]bool {
	if deps, ok := g.Deps[id]; ok {
		return deps
	}
	deps := make(map[snapshot.ComponentID]bool)
	for _, child := range g.Direct[id] {
		if g.meta.Components[child].CodeBearing() {
			deps[child] = true
		}
		for d := range g.closure(child) {
			deps[d] = true
		}
	}
	g.Deps[id] = deps
	return deps
}

// Component returns the component with the given id.
func (g *Graph) Component(id snapshot.ComponentID) snapshot.Component {
	return g.meta.Components[id]
}

// Node returns the node with the given id.
func (g *Graph) Node(id snapshot.NodeID) snapshot.Node {
	return g.meta.Nodes[id]
}

// CodeBearingDirect returns the code-bearing components reachable from id without
// passing through another code-bearing component. These are the components a
// generated file for id has to import.
func (g *Graph) CodeBearingDirect(id snapshot.ComponentID) []snapshot.ComponentID {
	var out []snapshot.ComponentID
	seen := make(map[snapshot.ComponentID]bool)
	var walk func(c snapshot.ComponentID)
	walk = func(c snapshot.ComponentID) {
		for _, child := range g.Direct[c] {
			if seen[child] {
				continue
			}
			seen[child] = true
			if g.meta.Components[child].CodeBearing() {
				out = append(out, child)
				continue
			}
			walk(child)
		}
	}
	walk(id)
	return out
}
