// Package canon normalizes HTML fragments into comparison-ready trees and reports
// structural differences between two fragments.
package canon

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FragmentTag is the tag of the synthetic root returned by Canonicalize.
const FragmentTag = "#fragment"

// Node is a canonical tree node. Text nodes have an empty Tag and carry Text.
type Node struct {
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*Node           `json:"children,omitempty"`
	Text     string            `json:"text,omitempty"`
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Tag == ""
}

// attribute names produced by JSX renderings that the HTML tokenizer lowercases
var attrAliases = map[string]string{
	"classname": "class",
	"htmlfor":   "for",
}

// booleanAttrs may be written as name="name" and still mean "present".
var booleanAttrs = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true, "autoplay": true,
	"checked": true, "controls": true, "default": true, "defer": true,
	"disabled": true, "formnovalidate": true, "hidden": true, "inert": true,
	"ismap": true, "itemscope": true, "loop": true, "multiple": true,
	"muted": true, "nomodule": true, "novalidate": true, "open": true,
	"playsinline": true, "readonly": true, "required": true, "reversed": true,
	"selected": true,
}

// Canonicalize parses an HTML fragment and returns its canonical tree rooted at a
// FragmentTag node.
func Canonicalize(src string) (*Node, error) {
	nodes, err := ParseFragment(src)
	if err != nil {
		return nil, err
	}
	root := &Node{Tag: FragmentTag}
	root.Children = canonicalChildren(nodes)
	return root, nil
}

// ParseFragment parses src in a <body> context.
func ParseFragment(src string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing html fragment %q: %w", snippet(src), err)
	}
	return nodes, nil
}

// FromHTML canonicalizes an already parsed node.
func FromHTML(n *html.Node) *Node {
	out := canonicalChildren([]*html.Node{n})
	if len(out) == 0 {
		return nil
	}
	return out[0]
}

func canonicalChildren(nodes []*html.Node) []*Node {
	var out []*Node
	var pending strings.Builder
	hasPending := false

	flush := func() {
		if !hasPending {
			return
		}
		if text := collapseSpace(pending.String()); text != "" {
			out = append(out, &Node{Text: text})
		}
		pending.Reset()
		hasPending = false
	}

	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			pending.WriteString(n.Data)
			hasPending = true
		case html.ElementNode:
			flush()
			out = append(out, canonicalElement(n))
		case html.DocumentNode:
			flush()
			out = append(out, canonicalChildren(childList(n))...)
		default:
			// comments and doctypes are insignificant
		}
	}
	flush()
	return out
}

func canonicalElement(n *html.Node) *Node {
	el := &Node{Tag: n.Data, Attrs: make(map[string]string, len(n.Attr))}
	for _, a := range n.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		if alias, ok := attrAliases[strings.ToLower(key)]; ok {
			key = alias
		}
		val, keep := normalizeAttr(key, a.Val)
		if keep {
			el.Attrs[key] = val
		}
	}
	if len(el.Attrs) == 0 {
		el.Attrs = nil
	}
	el.Children = canonicalChildren(childList(n))
	return el
}

func normalizeAttr(key, val string) (string, bool) {
	switch strings.ToLower(key) {
	case "class":
		v := NormalizeClass(val)
		return v, v != ""
	case "style":
		v := NormalizeStyle(val)
		return v, v != ""
	}
	if booleanAttrs[strings.ToLower(key)] && strings.EqualFold(val, key) {
		return "", true
	}
	return val, true
}

// NormalizeClass returns the sorted, de-duplicated class token set joined by spaces.
func NormalizeClass(val string) string {
	tokens := ClassTokens(val)
	return strings.Join(tokens, " ")
}

// ClassTokens splits a class attribute into a sorted, de-duplicated token list.
func ClassTokens(val string) []string {
	fields := strings.Fields(val)
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	sort.Strings(tokens)
	return tokens
}

func childList(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// String renders the canonical tree as deterministic markup. Attributes are sorted;
// the output is stable for equal trees and is used as a content address.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n.IsText() {
		sb.WriteString(html.EscapeString(n.Text))
		return
	}
	if n.Tag == FragmentTag {
		for _, c := range n.Children {
			c.write(sb)
		}
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	for _, k := range sortedKeys(n.Attrs) {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(n.Attrs[k]))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	for _, c := range n.Children {
		c.write(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func snippet(s string) string {
	s = collapseSpace(s)
	if len(s) > 80 {
		return s[:77] + "..."
	}
	return s
}
