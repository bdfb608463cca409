package canon

import (
	"fmt"
	"strings"
)

// ChangeKind classifies a structural difference.
type ChangeKind string

// Change kinds reported by Diff.
const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// Change is one structural difference between two canonical trees. Path locates
// the node in the first tree, e.g. "/div[0]/button[1]".
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Path   string     `json:"path"`
	Detail string     `json:"detail"`
}

// Report lists the differences found by Diff.
type Report struct {
	Changes []Change `json:"changes"`
}

// String renders the report one change per line.
func (r *Report) String() string {
	if r == nil || len(r.Changes) == 0 {
		return "equivalent"
	}
	var sb strings.Builder
	for _, c := range r.Changes {
		fmt.Fprintf(&sb, "%-7s %s: %s\n", c.Kind, c.Path, c.Detail)
	}
	return sb.String()
}

// Diff canonicalizes both fragments and returns nil when they are structurally
// equivalent, or a report describing every difference otherwise.
func Diff(a, b string) (*Report, error) {
	ca, err := Canonicalize(a)
	if err != nil {
		return nil, err
	}
	cb, err := Canonicalize(b)
	if err != nil {
		return nil, err
	}
	return Compare(ca, cb), nil
}

// Compare diffs two canonical trees. It returns nil when they are equal.
func Compare(a, b *Node) *Report {
	r := &Report{}
	compareNode(r, "", a, b)
	if len(r.Changes) == 0 {
		return nil
	}
	return r
}

// Equal reports whether two canonical trees are deep-equal.
func Equal(a, b *Node) bool {
	return Compare(a, b) == nil
}

func (r *Report) add(kind ChangeKind, path, format string, args ...any) {
	if path == "" {
		path = "/"
	}
	r.Changes = append(r.Changes, Change{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)})
}

func compareNode(r *Report, path string, a, b *Node) {
	switch {
	case a.IsText() && b.IsText():
		if a.Text != b.Text {
			r.add(Changed, path, "text %q -> %q", a.Text, b.Text)
		}
		return
	case a.IsText() != b.IsText() || a.Tag != b.Tag:
		r.add(Changed, path, "node %s -> %s", describe(a), describe(b))
		return
	}

	compareAttrs(r, path, a.Attrs, b.Attrs)

	n := len(a.Children)
	if len(b.Children) > n {
		n = len(b.Children)
	}
	for i := 0; i < n; i++ {
		switch {
		case i >= len(a.Children):
			child := b.Children[i]
			r.add(Added, path+"/"+label(child, i), "node %s", describe(child))
		case i >= len(b.Children):
			child := a.Children[i]
			r.add(Removed, path+"/"+label(child, i), "node %s", describe(child))
		default:
			compareNode(r, path+"/"+label(a.Children[i], i), a.Children[i], b.Children[i])
		}
	}
}

func compareAttrs(r *Report, path string, a, b map[string]string) {
	for _, k := range sortedKeys(a) {
		bv, ok := b[k]
		if !ok {
			r.add(Removed, path, "attribute %s=%q", k, a[k])
			continue
		}
		if bv != a[k] {
			r.add(Changed, path, "attribute %s: %q -> %q", k, a[k], bv)
		}
	}
	for _, k := range sortedKeys(b) {
		if _, ok := a[k]; !ok {
			r.add(Added, path, "attribute %s=%q", k, b[k])
		}
	}
}

func label(n *Node, i int) string {
	if n.IsText() {
		return fmt.Sprintf("#text[%d]", i)
	}
	return fmt.Sprintf("%s[%d]", n.Tag, i)
}

func describe(n *Node) string {
	if n.IsText() {
		return fmt.Sprintf("#text(%q)", snippet(n.Text))
	}
	return "<" + n.Tag + ">"
}
