package jsx

import (
	"fmt"
	"html"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ParseError reports TSX source that tree-sitter could not parse cleanly.
type ParseError struct {
	Unit    string // file path or a short description of the source
	Row     int    // 1-based
	Column  int    // 1-based
	Snippet string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: syntax error at %d:%d near %q", e.Unit, e.Row, e.Column, e.Snippet)
}

// Check parses a whole TSX module and returns a *ParseError if the tree contains
// error or missing nodes.
func Check(unit, src string) error {
	return withTree([]byte(src), func(root *sitter.Node, b []byte) error {
		return syntaxError(unit, root, b, 0)
	})
}

// ParseFragment parses a single JSX expression such as `<Button type="submit" />`
// into an IR node.
func ParseFragment(src string) (Node, error) {
	const prefix = "("
	wrapped := []byte(prefix + src + "\n);")

	var out Node
	err := withTree(wrapped, func(root *sitter.Node, b []byte) error {
		if err := syntaxError("fragment", root, b, len(prefix)); err != nil {
			return err
		}
		el := firstJSX(root)
		if el == nil {
			return fmt.Errorf("parse fragment %q: no JSX element", snippet(src))
		}
		out = convertJSX(el, b)
		return nil
	})
	return out, err
}

func withTree(src []byte, fn func(root *sitter.Node, src []byte) error) error {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitter.NewLanguage(typescript.LanguageTSX())); err != nil {
		return fmt.Errorf("loading tsx grammar: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return fmt.Errorf("tree-sitter returned no tree")
	}
	defer tree.Close()
	return fn(tree.RootNode(), src)
}

func syntaxError(unit string, root *sitter.Node, src []byte, offset int) error {
	if !root.HasError() {
		return nil
	}
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pos := bad.StartPosition()
	start := int(bad.StartByte())
	end := min(start+40, len(src))
	col := int(pos.Column) + 1
	if pos.Row == 0 {
		col -= offset
	}
	return &ParseError{
		Unit:    unit,
		Row:     int(pos.Row) + 1,
		Column:  max(col, 1),
		Snippet: strings.TrimSpace(string(src[start:end])),
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := range n.ChildCount() {
		c := n.Child(i)
		if c == nil || !(c.HasError() || c.IsMissing()) {
			continue
		}
		if bad := firstError(c); bad != nil {
			return bad
		}
	}
	return nil
}

func firstJSX(n *sitter.Node) *sitter.Node {
	switch n.Kind() {
	case "jsx_element", "jsx_self_closing_element":
		return n
	}
	for i := range n.NamedChildCount() {
		if found := firstJSX(n.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

func convertJSX(n *sitter.Node, src []byte) Node {
	switch n.Kind() {
	case "jsx_self_closing_element":
		return &Element{Tag: tagName(n, src), Attrs: jsxAttrs(n, src)}
	case "jsx_element":
		open := n.ChildByFieldName("open_tag")
		if open == nil {
			open = n.NamedChild(0)
		}
		el := &Element{Tag: tagName(open, src), Attrs: jsxAttrs(open, src)}
		for i := range n.NamedChildCount() {
			c := n.NamedChild(i)
			switch c.Kind() {
			case "jsx_opening_element", "jsx_closing_element":
				continue
			}
			if child := convertChild(c, src); child != nil {
				el.Children = appendChild(el.Children, child)
			}
		}
		return el
	}
	return &Expr{Source: text(n, src)}
}

func convertChild(n *sitter.Node, src []byte) Node {
	switch n.Kind() {
	case "jsx_text":
		if s := cleanJSXText(text(n, src)); s != "" {
			return &Text{Value: html.UnescapeString(s)}
		}
		return nil
	case "html_character_reference":
		return &Text{Value: html.UnescapeString(text(n, src))}
	case "jsx_element", "jsx_self_closing_element":
		return convertJSX(n, src)
	case "jsx_expression":
		inner := exprBody(n)
		if inner == nil {
			return nil
		}
		if s, ok := stringLiteral(inner, src); ok {
			return &Text{Value: s}
		}
		return &Expr{Source: text(inner, src)}
	}
	return nil
}

// appendChild merges consecutive text children.
func appendChild(children []Node, n Node) []Node {
	if t, ok := n.(*Text); ok && len(children) > 0 {
		if prev, ok := children[len(children)-1].(*Text); ok {
			prev.Value += t.Value
			return children
		}
	}
	return append(children, n)
}

func tagName(open *sitter.Node, src []byte) string {
	if open == nil {
		return ""
	}
	name := open.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return text(name, src)
}

func jsxAttrs(open *sitter.Node, src []byte) []Attr {
	var attrs []Attr
	for i := range open.NamedChildCount() {
		c := open.NamedChild(i)
		switch c.Kind() {
		case "jsx_attribute":
			attrs = append(attrs, jsxAttr(c, src))
		case "jsx_expression":
			inner := exprBody(c)
			if inner != nil && inner.Kind() == "spread_element" {
				attrs = append(attrs, Attr{Kind: AttrSpread, Value: strings.TrimPrefix(text(inner, src), "...")})
			}
		}
	}
	return attrs
}

func jsxAttr(n *sitter.Node, src []byte) Attr {
	name := text(n.NamedChild(0), src)
	if n.NamedChildCount() < 2 {
		return Attr{Name: name, Kind: AttrBool}
	}
	val := n.NamedChild(1)
	if s, ok := stringLiteral(val, src); ok {
		return Attr{Name: name, Kind: AttrString, Value: s}
	}
	if val.Kind() != "jsx_expression" {
		return Attr{Name: name, Kind: AttrExpr, Value: text(val, src)}
	}

	inner := exprBody(val)
	if inner == nil {
		return Attr{Name: name, Kind: AttrExpr, Value: "undefined"}
	}
	if s, ok := stringLiteral(inner, src); ok {
		return Attr{Name: name, Kind: AttrString, Value: s}
	}
	if inner.Kind() == "true" {
		return Attr{Name: name, Kind: AttrBool}
	}
	if name == "style" && inner.Kind() == "object" {
		if props, ok := styleProps(inner, src); ok {
			return Attr{Name: name, Kind: AttrStyle, Style: props}
		}
	}
	return Attr{Name: name, Kind: AttrExpr, Value: text(inner, src)}
}

// styleProps reads an object literal of literal values. ok is false when any
// entry is computed, spread or non-literal.
func styleProps(obj *sitter.Node, src []byte) ([]StyleProp, bool) {
	var props []StyleProp
	for i := range obj.NamedChildCount() {
		pair := obj.NamedChild(i)
		if pair.Kind() == "comment" {
			continue
		}
		if pair.Kind() != "pair" {
			return nil, false
		}
		key, val := pair.ChildByFieldName("key"), pair.ChildByFieldName("value")
		if key == nil || val == nil {
			return nil, false
		}
		var k string
		switch key.Kind() {
		case "property_identifier":
			k = text(key, src)
		case "string":
			k, _ = stringLiteral(key, src)
		default:
			return nil, false
		}
		var v string
		if s, ok := stringLiteral(val, src); ok {
			v = s
		} else if val.Kind() == "number" {
			v = text(val, src)
		} else {
			return nil, false
		}
		props = append(props, StyleProp{Name: k, Value: v})
	}
	return props, true
}

// stringLiteral returns the value of a string node. JSX attribute strings carry
// HTML entities; JavaScript strings are decoded as JSON where possible.
func stringLiteral(n *sitter.Node, src []byte) (string, bool) {
	if n == nil || n.Kind() != "string" {
		return "", false
	}
	raw := text(n, src)
	if len(raw) < 2 {
		return "", false
	}
	body := raw[1 : len(raw)-1]
	if n.Parent() != nil && n.Parent().Kind() == "jsx_attribute" {
		return html.UnescapeString(body), true
	}
	return unescapeJS(body), true
}

func unescapeJS(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// exprBody returns the expression inside {...}, or nil for {} and comments.
func exprBody(n *sitter.Node) *sitter.Node {
	for i := range n.NamedChildCount() {
		c := n.NamedChild(i)
		if c.Kind() != "comment" {
			return c
		}
	}
	return nil
}

// cleanJSXText applies JSX whitespace rules: lines are trimmed at their inner
// edges, blank lines dropped and the rest joined by single spaces.
func cleanJSXText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lastNonEmpty := -1
	for i, l := range lines {
		if strings.TrimLeft(l, " \t") != "" {
			lastNonEmpty = i
		}
	}

	var sb strings.Builder
	for i, l := range lines {
		l = strings.ReplaceAll(l, "\t", " ")
		if i > 0 {
			l = strings.TrimLeft(l, " ")
		}
		if i < len(lines)-1 {
			l = strings.TrimRight(l, " ")
		}
		if l == "" {
			continue
		}
		if i != lastNonEmpty {
			l += " "
		}
		sb.WriteString(l)
	}
	return sb.String()
}

func text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
