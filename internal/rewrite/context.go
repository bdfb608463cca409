// Package rewrite turns the page IR into generated component units. Passes run
// in configured order and replace subtrees with pending references; Resolve then
// splices each reference into real JSX and hoists its imports.
package rewrite

import (
	"fmt"
	"path"
	"time"

	"github.com/dejo1307/pagerepl/internal/jsx"
	"github.com/dejo1307/pagerepl/internal/namer"
	"github.com/dejo1307/pagerepl/internal/naming"
)

// UnitKind classifies a generated file.
type UnitKind string

const (
	KindPage     UnitKind = "page"
	KindLandmark UnitKind = "landmark"
	KindElement  UnitKind = "element"
	KindIcon     UnitKind = "icon"
)

// Unit is one generated TSX module.
type Unit struct {
	Kind   UnitKind `json:"kind"`
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Module string   `json:"module"`
	Key    string   `json:"key,omitempty"` // content hash for icons, signature for elements
	Uses   int      `json:"uses"`

	Params string   `json:"-"`
	Root   jsx.Node `json:"-"`
	Source string   `json:"-"` // set by Resolve
}

// Options configure the passes.
type Options struct {
	Landmarks      []string
	UnifyTags      []string
	MinOccurrences int
	NamerTimeout   time.Duration
}

// DefaultOptions returns the landmark set and unification defaults.
func DefaultOptions() Options {
	return Options{
		Landmarks:      []string{"header", "main", "section", "nav", "aside", "footer", "dialog", "table"},
		UnifyTags:      []string{"button"},
		MinOccurrences: 2,
		NamerTimeout:   20 * time.Second,
	}
}

// Context carries every piece of state a run accumulates. A Context is used for
// exactly one page and is not safe for concurrent passes.
type Context struct {
	Options Options
	Namer   namer.Namer // optional
	Names   *naming.Registry

	units      []*Unit
	byModule   map[string]*Unit
	icons      map[string]*Unit
	signatures map[string]*Unit
}

// NewContext creates an empty Context. nm may be nil.
func NewContext(opts Options, nm namer.Namer) *Context {
	if opts.MinOccurrences < 1 {
		opts.MinOccurrences = 1
	}
	return &Context{
		Options:    opts,
		Namer:      nm,
		Names:      naming.NewRegistry(),
		byModule:   make(map[string]*Unit),
		icons:      make(map[string]*Unit),
		signatures: make(map[string]*Unit),
	}
}

// Units returns generated units in creation order; the page comes first.
func (c *Context) Units() []*Unit {
	return c.units
}

// Unit returns the unit for an import path.
func (c *Context) Unit(module string) (*Unit, bool) {
	u, ok := c.byModule[module]
	return u, ok
}

// Lookup resolves a module to its root element for rendering.
func (c *Context) Lookup(module string) (*jsx.Element, bool) {
	u, ok := c.byModule[module]
	if !ok {
		return nil, false
	}
	el, ok := u.Root.(*jsx.Element)
	return el, ok
}

// targets returns the units whose trees passes rewrite: the page and landmarks.
func (c *Context) targets() []*Unit {
	var out []*Unit
	for _, u := range c.units {
		if u.Kind == KindPage || u.Kind == KindLandmark {
			out = append(out, u)
		}
	}
	return out
}

// newUnit claims a unique identifier derived from base and registers a unit
// under dir ("app", "components/ui", ...).
func (c *Context) newUnit(kind UnitKind, dir, base string, root jsx.Node) *Unit {
	return c.addUnit(kind, dir, c.Names.Claim(base), root)
}

func (c *Context) addUnit(kind UnitKind, dir, name string, root jsx.Node) *Unit {
	file := name
	if kind == KindPage {
		file = "page"
	}
	u := &Unit{
		Kind:   kind,
		Name:   name,
		Path:   path.Join("src", dir, file+".tsx"),
		Module: "@/" + path.Join(dir, file),
		Root:   root,
	}
	c.units = append(c.units, u)
	c.byModule[u.Module] = u
	return u
}

// ref builds the pending reference that stands in for u at one call site.
func (u *Unit) ref(attrs []jsx.Attr, children []jsx.Node) *jsx.Ref {
	u.Uses++
	return &jsx.Ref{
		Imports:  []jsx.Import{{Module: u.Module, Default: u.Name}},
		Source:   jsx.Print(&jsx.Element{Tag: u.Name, Attrs: attrs}),
		Module:   u.Module,
		Children: children,
	}
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s %s (%s)", u.Kind, u.Name, u.Path)
}
