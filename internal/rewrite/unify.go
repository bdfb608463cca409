package rewrite

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"

	"github.com/dejo1307/pagerepl/internal/canon"
	"github.com/dejo1307/pagerepl/internal/jsx"
	"github.com/dejo1307/pagerepl/internal/namer"
	"github.com/dejo1307/pagerepl/internal/naming"
)

// Unify turns repeated host elements that share a signature (tag plus class set)
// into one shared component. Call sites keep their children and every attribute
// except className.
type Unify struct {
	PassName string
}

func (p Unify) Name() string {
	if p.PassName == "" {
		return "unify"
	}
	return p.PassName
}

type group struct {
	sig    string
	tag    string
	tokens []string
	count  int
	sample *jsx.Element
}

// Signature returns the normalization signature of a host element, e.g.
// "button|bg-blue-500 px-2 py-1".
func Signature(el *jsx.Element) string {
	return el.Tag + "|" + strings.Join(classTokens(el), " ")
}

func classTokens(el *jsx.Element) []string {
	a, ok := el.Attr("className")
	if !ok || a.Kind != jsx.AttrString {
		return nil
	}
	return canon.ClassTokens(a.Value)
}

func (p Unify) Apply(ctx context.Context, rc *Context) error {
	tags := rc.Options.UnifyTags
	candidate := func(n jsx.Node) (*jsx.Element, bool) {
		el, ok := n.(*jsx.Element)
		if !ok || el.IsComponent() || el.IsFragment() || !slices.Contains(tags, el.Tag) {
			return nil, false
		}
		if a, ok := el.Attr("className"); ok && a.Kind != jsx.AttrString {
			return nil, false
		}
		return el, true
	}

	var order []*group
	groups := make(map[string]*group)
	for _, u := range rc.targets() {
		_, err := jsx.Walk(u.Root, jsx.VisitorFunc(func(n jsx.Node) (jsx.Step, error) {
			el, ok := candidate(n)
			if !ok {
				return jsx.Step{}, nil
			}
			sig := Signature(el)
			g, ok := groups[sig]
			if !ok {
				g = &group{sig: sig, tag: el.Tag, tokens: classTokens(el), sample: el}
				groups[sig] = g
				order = append(order, g)
			}
			g.count++
			return jsx.Step{}, nil
		}))
		if err != nil {
			return err
		}
	}

	var selected []*group
	for _, g := range order {
		if _, done := rc.signatures[g.sig]; done || g.count >= rc.Options.MinOccurrences {
			selected = append(selected, g)
		}
	}
	if len(selected) == 0 {
		return nil
	}

	names := rc.resolveNames(ctx, selected)
	for i, g := range selected {
		if _, ok := rc.signatures[g.sig]; ok {
			continue
		}
		u := rc.newUnit(KindElement, "components/ui", names[i], unifiedTemplate(g))
		u.Params = "{ children, ...props }"
		u.Key = g.sig
		rc.signatures[g.sig] = u
	}

	var visit jsx.VisitorFunc
	visit = func(n jsx.Node) (jsx.Step, error) {
		el, ok := candidate(n)
		if !ok {
			return jsx.Step{}, nil
		}
		u, ok := rc.signatures[Signature(el)]
		if !ok {
			return jsx.Step{}, nil
		}
		children := el.Children
		for i, c := range children {
			r, err := jsx.Walk(c, visit)
			if err != nil {
				return jsx.Step{}, err
			}
			children[i] = r
		}
		return jsx.ReplaceWith(u.ref(el.WithoutAttr("className"), compact(children))), nil
	}
	for _, u := range rc.targets() {
		root, err := jsx.Walk(u.Root, visit)
		if err != nil {
			return fmt.Errorf("%s: %w", u.Path, err)
		}
		u.Root = root
	}
	log.Printf("[rewrite] %s: %d shared components from %d signatures", p.Name(), len(selected), len(order))
	return nil
}

func unifiedTemplate(g *group) *jsx.Element {
	el := &jsx.Element{Tag: g.tag}
	if len(g.tokens) > 0 {
		el.Attrs = append(el.Attrs, jsx.Attr{Name: "className", Kind: jsx.AttrString, Value: strings.Join(g.tokens, " ")})
	}
	el.Attrs = append(el.Attrs, jsx.Attr{Kind: jsx.AttrSpread, Value: "props"})
	el.Children = []jsx.Node{&jsx.Expr{Source: "children"}}
	return el
}

// resolveNames asks the namer once for every selected signature and returns a
// base name per group. Without a namer, names derive from the tag; when the
// namer fails, groups it did not answer for become Component<n>.
func (c *Context) resolveNames(ctx context.Context, groups []*group) []string {
	var answered map[string]string
	var nameErr error
	if c.Namer != nil {
		sigs := make([]namer.Signature, 0, len(groups))
		for _, g := range groups {
			if _, done := c.signatures[g.sig]; done {
				continue
			}
			sigs = append(sigs, namer.Signature{ID: g.sig, Sample: sample(g.sample)})
		}
		if len(sigs) > 0 {
			callCtx, cancel := context.WithTimeout(ctx, c.Options.NamerTimeout)
			answered, nameErr = c.Namer.Name(callCtx, sigs)
			cancel()
			if nameErr != nil {
				log.Printf("[rewrite] namer failed, using fallback names: %v", nameErr)
			}
		}
	}

	out := make([]string, len(groups))
	for i, g := range groups {
		if name, ok := namer.Sanitize(answered[g.sig]); ok {
			out[i] = name
			continue
		}
		if nameErr != nil {
			out[i] = "Component" + strconv.Itoa(i+1)
			continue
		}
		out[i] = naming.PascalCase(g.tag)
	}
	return out
}

func sample(el *jsx.Element) string {
	s := jsx.Print(el)
	if len(s) > 400 {
		s = s[:400]
	}
	return s
}

func compact(nodes []jsx.Node) []jsx.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
