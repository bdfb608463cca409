// Package snapshot defines the captured page input: serialized HTML plus the
// optional component and node graph, decoded with document order preserved.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// Snapshot is a captured rendering of a live page: serialized HTML plus optional
// component-tree metadata. It is read-only input to the replicator.
type Snapshot struct {
	Page     Page           `json:"page"`
	Metadata *FiberSnapshot `json:"metadata,omitempty"`
}

// Page holds the captured document.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// ComponentID identifies a component in a FiberSnapshot.
type ComponentID string

// NodeID identifies a rendered node in a FiberSnapshot.
type NodeID string

// Kind is the component variant tag.
type Kind string

// Component variant tags.
const (
	KindHostRoot   Kind = "host_root"
	KindFunction   Kind = "function"
	KindForwardRef Kind = "forward_ref"
	KindMemo       Kind = "memo"
	KindSimpleMemo Kind = "simple_memo"
	KindText       Kind = "text"
)

// Component is one variant of the component tagged union. Name and Code are only
// meaningful for code-bearing kinds.
type Component struct {
	Kind Kind   `json:"type"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

// CodeBearing reports whether the component carries user source and therefore
// takes part in dependency ordering and naming.
func (c Component) CodeBearing() bool {
	switch c.Kind {
	case KindFunction, KindForwardRef, KindMemo, KindSimpleMemo:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown variant tags.
func (c *Component) UnmarshalJSON(data []byte) error {
	type raw Component
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	switch r.Kind {
	case KindHostRoot, KindFunction, KindForwardRef, KindMemo, KindSimpleMemo, KindText:
	default:
		return fmt.Errorf("unknown component type %q", r.Kind)
	}
	*c = Component(r)
	return nil
}

// Node is one rendered fiber. ParentID is nil for the single root node.
type Node struct {
	ComponentID ComponentID     `json:"componentId"`
	ParentID    *NodeID         `json:"parentId"`
	Props       json.RawMessage `json:"props,omitempty"`
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == nil
}

// FiberSnapshot is the component/node graph captured alongside the page. Both maps
// remember the order in which their keys appeared in the source document. A
// snapshot built as a struct literal has no recorded order and iterates its
// keys sorted.
type FiberSnapshot struct {
	Components map[ComponentID]Component
	Nodes      map[NodeID]Node

	componentOrder []ComponentID
	nodeOrder      []NodeID
}

// NewFiberSnapshot creates an empty snapshot for programmatic construction.
func NewFiberSnapshot() *FiberSnapshot {
	return &FiberSnapshot{
		Components: make(map[ComponentID]Component),
		Nodes:      make(map[NodeID]Node),
	}
}

// AddComponent inserts or replaces a component, keeping first-insertion order.
func (f *FiberSnapshot) AddComponent(id ComponentID, c Component) {
	if f.Components == nil {
		f.Components = make(map[ComponentID]Component)
	}
	if _, ok := f.Components[id]; !ok {
		f.componentOrder = append(f.componentOrder, id)
	}
	f.Components[id] = c
}

// AddNode inserts or replaces a node, keeping first-insertion order.
func (f *FiberSnapshot) AddNode(id NodeID, n Node) {
	if f.Nodes == nil {
		f.Nodes = make(map[NodeID]Node)
	}
	if _, ok := f.Nodes[id]; !ok {
		f.nodeOrder = append(f.nodeOrder, id)
	}
	f.Nodes[id] = n
}

// ComponentIDs returns component ids in document order.
func (f *FiberSnapshot) ComponentIDs() []ComponentID {
	return orderedKeys(f.Components, f.componentOrder)
}

// NodeIDs returns node ids in document order.
func (f *FiberSnapshot) NodeIDs() []NodeID {
	return orderedKeys(f.Nodes, f.nodeOrder)
}

// orderedKeys returns the recorded keys still present in m, followed by any
// keys set directly on the map in sorted order.
func orderedKeys[K ~string, V any](m map[K]V, order []K) []K {
	out := make([]K, 0, len(m))
	seen := make(map[K]bool, len(order))
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	if len(out) == len(m) {
		return out
	}
	var rest []K
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

// UnmarshalJSON decodes {"components": {...}, "nodes": {...}} preserving key order.
func (f *FiberSnapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Components json.RawMessage `json:"components"`
		Nodes      json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := NewFiberSnapshot()
	if err := decodeOrdered(raw.Components, func(key string, val json.RawMessage) error {
		var c Component
		if err := json.Unmarshal(val, &c); err != nil {
			return fmt.Errorf("component %s: %w", key, err)
		}
		out.AddComponent(ComponentID(key), c)
		return nil
	}); err != nil {
		return fmt.Errorf("decoding components: %w", err)
	}
	if err := decodeOrdered(raw.Nodes, func(key string, val json.RawMessage) error {
		var n Node
		if err := json.Unmarshal(val, &n); err != nil {
			return fmt.Errorf("node %s: %w", key, err)
		}
		out.AddNode(NodeID(key), n)
		return nil
	}); err != nil {
		return fmt.Errorf("decoding nodes: %w", err)
	}

	*f = *out
	return nil
}

// MarshalJSON encodes the snapshot; encoding/json sorts map keys.
func (f *FiberSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Components map[ComponentID]Component `json:"components"`
		Nodes      map[NodeID]Node           `json:"nodes"`
	}{f.Components, f.Nodes})
}

// Decode reads a Snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &s, nil
}

// Load reads a Snapshot JSON file.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
