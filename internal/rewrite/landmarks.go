package rewrite

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/dejo1307/pagerepl/internal/jsx"
	"github.com/dejo1307/pagerepl/internal/naming"
)

// Landmarks lifts semantic containers into layout/<tag> components. Nested
// landmarks are lifted before the landmark that contains them.
type Landmarks struct{}

func (Landmarks) Name() string { return "landmarks" }

func (p Landmarks) Apply(_ context.Context, rc *Context) error {
	lifted := 0
	var visit jsx.VisitorFunc
	visit = func(n jsx.Node) (jsx.Step, error) {
		el, ok := n.(*jsx.Element)
		if !ok || el.IsComponent() || !slices.Contains(rc.Options.Landmarks, el.Tag) {
			return jsx.Step{}, nil
		}
		for i, c := range el.Children {
			r, err := jsx.Walk(c, visit)
			if err != nil {
				return jsx.Step{}, err
			}
			el.Children[i] = r
		}
		el.Children = compact(el.Children)

		u := rc.newUnit(KindLandmark, "components/layout/"+el.Tag, naming.PascalCase(el.Tag), el)
		lifted++
		return jsx.ReplaceWith(u.ref(nil, nil)), nil
	}

	// units lifted during this loop are not in the target list; their insides
	// were rewritten before lifting
	for _, u := range rc.targets() {
		root, err := p.walkTarget(u, visit)
		if err != nil {
			return fmt.Errorf("%s: %w", u.Path, err)
		}
		u.Root = root
	}
	log.Printf("[rewrite] landmarks: lifted %d", lifted)
	return nil
}

// walkTarget rewrites the inside of a unit; a landmark unit's own root element
// is not lifted again.
func (Landmarks) walkTarget(u *Unit, visit jsx.VisitorFunc) (jsx.Node, error) {
	el, ok := u.Root.(*jsx.Element)
	if u.Kind != KindLandmark || !ok {
		return jsx.Walk(u.Root, visit)
	}
	for i, c := range el.Children {
		r, err := jsx.Walk(c, visit)
		if err != nil {
			return nil, err
		}
		el.Children[i] = r
	}
	el.Children = compact(el.Children)
	return el, nil
}
