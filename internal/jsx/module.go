package jsx

import (
	"fmt"
	"slices"
	"strings"
)

// Import is one import declaration. Default is the default binding, Named the
// named bindings; either may be empty.
type Import struct {
	Module  string
	Default string
	Named   []string
}

// Line renders the import statement.
func (imp Import) Line() string {
	var parts []string
	if imp.Default != "" {
		parts = append(parts, imp.Default)
	}
	if len(imp.Named) > 0 {
		parts = append(parts, "{ "+strings.Join(imp.Named, ", ")+" }")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("import %q;", imp.Module)
	}
	return fmt.Sprintf("import %s from %q;", strings.Join(parts, ", "), imp.Module)
}

// MergeImports combines imports per module in first-seen order. Named bindings are
// deduplicated and sorted. Conflicting default bindings for one module keep the
// first.
func MergeImports(imports ...[]Import) []Import {
	var order []string
	merged := make(map[string]*Import)
	for _, list := range imports {
		for _, imp := range list {
			m, ok := merged[imp.Module]
			if !ok {
				m = &Import{Module: imp.Module}
				merged[imp.Module] = m
				order = append(order, imp.Module)
			}
			if m.Default == "" {
				m.Default = imp.Default
			}
			for _, n := range imp.Named {
				if !slices.Contains(m.Named, n) {
					m.Named = append(m.Named, n)
				}
			}
		}
	}

	out := make([]Import, 0, len(order))
	for _, mod := range order {
		m := merged[mod]
		slices.Sort(m.Named)
		out = append(out, *m)
	}
	return out
}

// Program is a generated component module: imports followed by a default-exported
// arrow function returning Root.
type Program struct {
	Imports []Import
	Params  string // e.g. "{ children, ...props }"; empty for ()
	Root    Node
}

// PrintModule renders p as TSX source.
func PrintModule(p Program) string {
	var sb strings.Builder
	for _, imp := range p.Imports {
		sb.WriteString(imp.Line())
		sb.WriteByte('\n')
	}
	if len(p.Imports) > 0 {
		sb.WriteByte('\n')
	}

	fmt.Fprintf(&sb, "export default (%s) => (\n", p.Params)
	root := p.Root
	if root == nil {
		root = &Element{}
	}
	writeNode(&sb, root, 1)
	sb.WriteString(");\n")
	return sb.String()
}
