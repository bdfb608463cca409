// Package jsx is the typed intermediate representation the rewriter works on: a
// closed set of node variants converted from HTML at the boundary, printed as JSX
// source, parsed back from JSX with tree-sitter and rendered to HTML for checks.
package jsx

import (
	"unicode"
	"unicode/utf8"
)

// Node is one of *Element, *Text, *Expr or *Ref.
type Node interface {
	jsxNode()
}

// Element is a host element (lower-case Tag), a component reference (capitalized
// Tag) or a fragment (empty Tag).
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node

	// Module is the import path of the generated component this element refers
	// to. It is set by reference resolution and never printed.
	Module string
}

// Text is literal character data.
type Text struct {
	Value string
}

// Expr is an embedded JavaScript expression printed as {Source}.
type Expr struct {
	Source string
}

// Ref is a pending reference produced by the first rewrite phase: a location that
// the second phase replaces with the element parsed from Source (plus Children)
// and whose Imports are hoisted into the enclosing module.
type Ref struct {
	Imports  []Import
	Source   string
	Module   string
	Children []Node
}

func (*Element) jsxNode() {}
func (*Text) jsxNode()    {}
func (*Expr) jsxNode()    {}
func (*Ref) jsxNode()     {}

// AttrKind tags the value form of an attribute.
type AttrKind int

const (
	AttrString AttrKind = iota // name="value"
	AttrBool                   // name
	AttrExpr                   // name={expr}
	AttrStyle                  // style={{ ... }}
	AttrSpread                 // {...expr}
)

// Attr is one JSX attribute. Value holds the literal for AttrString, the source
// for AttrExpr and the spread expression for AttrSpread.
type Attr struct {
	Name  string
	Kind  AttrKind
	Value string
	Style []StyleProp
}

// StyleProp is one entry of a style object; Name is the JSX (camelCase) key.
type StyleProp struct {
	Name  string
	Value string
}

// IsComponent reports whether the element refers to a component rather than a
// host element.
func (e *Element) IsComponent() bool {
	r, _ := utf8.DecodeRuneInString(e.Tag)
	return unicode.IsUpper(r)
}

// IsFragment reports whether the element is <>...</>.
func (e *Element) IsFragment() bool {
	return e.Tag == ""
}

// Attr returns the first attribute named name.
func (e *Element) Attr(name string) (Attr, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// WithoutAttr returns e's attributes minus every attribute named name.
func (e *Element) WithoutAttr(name string) []Attr {
	out := make([]Attr, 0, len(e.Attrs))
	for _, a := range e.Attrs {
		if a.Name != name {
			out = append(out, a)
		}
	}
	return out
}

// Clone deep-copies n.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Element:
		c := &Element{Tag: v.Tag, Module: v.Module}
		c.Attrs = cloneAttrs(v.Attrs)
		c.Children = cloneNodes(v.Children)
		return c
	case *Text:
		return &Text{Value: v.Value}
	case *Expr:
		return &Expr{Source: v.Source}
	case *Ref:
		return &Ref{
			Imports:  append([]Import(nil), v.Imports...),
			Source:   v.Source,
			Module:   v.Module,
			Children: cloneNodes(v.Children),
		}
	}
	return n
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, c := range nodes {
		out[i] = Clone(c)
	}
	return out
}

func cloneAttrs(attrs []Attr) []Attr {
	if attrs == nil {
		return nil
	}
	out := make([]Attr, len(attrs))
	for i, a := range attrs {
		out[i] = a
		out[i].Style = append([]StyleProp(nil), a.Style...)
	}
	return out
}
