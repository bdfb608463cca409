package rewrite

import (
	"fmt"

	"github.com/dejo1307/pagerepl/internal/jsx"
)

// StructuralError reports a pending reference that lacks what resolution needs.
type StructuralError struct {
	Unit   string
	Detail string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: malformed reference: %s", e.Unit, e.Detail)
}

// Resolve replaces every pending reference in u with the element parsed from its
// source, merges the references' imports and prints the module into u.Source.
func (c *Context) Resolve(u *Unit) error {
	var imports []jsx.Import
	root, err := resolveTree(u, u.Root, &imports)
	if err != nil {
		return err
	}
	u.Root = root
	u.Source = jsx.PrintModule(jsx.Program{
		Imports: jsx.MergeImports(imports),
		Params:  u.Params,
		Root:    root,
	})
	return nil
}

func resolveTree(u *Unit, n jsx.Node, imports *[]jsx.Import) (jsx.Node, error) {
	visit := jsx.VisitorFunc(func(n jsx.Node) (jsx.Step, error) {
		ref, ok := n.(*jsx.Ref)
		if !ok {
			return jsx.Step{}, nil
		}
		el, err := resolveRef(u, ref, imports)
		if err != nil {
			return jsx.Step{}, err
		}
		return jsx.ReplaceWith(el), nil
	})
	return jsx.Walk(n, visit)
}

func resolveRef(u *Unit, ref *jsx.Ref, imports *[]jsx.Import) (*jsx.Element, error) {
	switch {
	case ref.Source == "":
		return nil, &StructuralError{Unit: u.Path, Detail: "empty source"}
	case ref.Module == "":
		return nil, &StructuralError{Unit: u.Path, Detail: fmt.Sprintf("no module for %s", ref.Source)}
	case len(ref.Imports) == 0:
		return nil, &StructuralError{Unit: u.Path, Detail: fmt.Sprintf("no imports for %s", ref.Source)}
	}

	// children are resolved here since the spliced element is not re-walked
	children := make([]jsx.Node, 0, len(ref.Children))
	for _, c := range ref.Children {
		r, err := resolveTree(u, c, imports)
		if err != nil {
			return nil, err
		}
		if r != nil {
			children = append(children, r)
		}
	}

	parsed, err := jsx.ParseFragment(ref.Source)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", ref.Source, err)
	}
	el, ok := parsed.(*jsx.Element)
	if !ok || el.IsFragment() || !el.IsComponent() {
		return nil, &StructuralError{Unit: u.Path, Detail: fmt.Sprintf("%s is not a component element", ref.Source)}
	}
	el.Module = ref.Module
	el.Children = append(el.Children, children...)
	*imports = append(*imports, ref.Imports...)
	return el, nil
}
