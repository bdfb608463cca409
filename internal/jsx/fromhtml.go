package jsx

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dejo1307/pagerepl/internal/canon"
)

// FromHTML converts parsed HTML nodes into IR nodes. Comments and doctypes are
// dropped, whitespace runs in text collapse to one space and whitespace-only text
// disappears. Inline event handler attributes are dropped. Attributes whose
// names JSX cannot express, such as @click or x-on:click.prevent, are kept as
// a spread of a one-entry object literal.
func FromHTML(nodes []*html.Node) []Node {
	var out []Node
	for _, n := range nodes {
		out = append(out, convert(n, false)...)
	}
	return mergeText(out)
}

func convert(n *html.Node, inSVG bool) []Node {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []Node{&Text{Value: text}}
	case html.ElementNode:
		return []Node{convertElement(n, inSVG || n.Data == "svg")}
	case html.DocumentNode:
		var out []Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out = append(out, convert(c, inSVG)...)
		}
		return out
	}
	return nil
}

func convertElement(n *html.Node, inSVG bool) *Element {
	el := &Element{Tag: n.Data}
	for _, a := range n.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		if IsEventHandler(key) {
			continue
		}
		el.Attrs = append(el.Attrs, convertAttr(n.Data, key, a.Val, inSVG))
	}

	var children []Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, convert(c, inSVG)...)
	}
	el.Children = mergeText(children)
	return el
}

// IsEventHandler reports whether an HTML attribute is an inline event handler.
func IsEventHandler(key string) bool {
	return strings.HasPrefix(strings.ToLower(key), "on") && !strings.ContainsAny(key, "-:")
}

func convertAttr(tag, key, val string, inSVG bool) Attr {
	if key == "style" {
		var props []StyleProp
		for _, d := range canon.ParseStyle(val) {
			props = append(props, StyleProp{Name: StyleKey(d.Property), Value: d.Value})
		}
		return Attr{Name: "style", Kind: AttrStyle, Style: props}
	}
	if !ValidAttrName(key) {
		return Attr{Kind: AttrSpread, Value: "{" + quote(key) + ": " + quote(val) + "}"}
	}
	name := JSXAttrName(tag, key, inSVG)
	if booleanAttrs[key] && (val == "" || strings.EqualFold(val, key)) {
		return Attr{Name: name, Kind: AttrBool}
	}
	return Attr{Name: name, Kind: AttrString, Value: val}
}

// mergeText joins adjacent text nodes left behind by dropped comments.
func mergeText(nodes []Node) []Node {
	var out []Node
	for _, n := range nodes {
		t, ok := n.(*Text)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*Text); ok {
				prev.Value = collapseSpace(prev.Value + t.Value)
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// collapseSpace turns every whitespace run into one space, keeping a single
// leading or trailing space when one was present.
func collapseSpace(s string) string {
	if s == "" {
		return s
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
