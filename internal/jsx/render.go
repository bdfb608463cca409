package jsx

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// Lookup resolves a component module path to the root element of its default
// export.
type Lookup func(module string) (*Element, bool)

const maxExpandDepth = 64

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// RenderHTML renders n to HTML markup the way React would on the server, inlining
// component elements through lookup. Component templates may spread {...props}
// and place {children}; both are substituted from the call site.
func RenderHTML(n Node, lookup Lookup) (string, error) {
	expanded, err := expand([]Node{n}, lookup, 0)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, e := range expanded {
		if err := renderNode(&sb, e, false, false); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// expand inlines every component element so only host elements remain.
func expand(nodes []Node, lookup Lookup, depth int) ([]Node, error) {
	if depth > maxExpandDepth {
		return nil, fmt.Errorf("component expansion deeper than %d levels", maxExpandDepth)
	}
	var out []Node
	for _, n := range nodes {
		switch v := n.(type) {
		case *Ref:
			return nil, fmt.Errorf("unresolved reference %s", snippet(v.Source))
		case *Element:
			if v.IsFragment() {
				children, err := expand(v.Children, lookup, depth)
				if err != nil {
					return nil, err
				}
				out = append(out, children...)
				continue
			}
			if !v.IsComponent() {
				children, err := expand(v.Children, lookup, depth)
				if err != nil {
					return nil, err
				}
				out = append(out, &Element{Tag: v.Tag, Attrs: v.Attrs, Children: children})
				continue
			}
			if lookup == nil {
				return nil, fmt.Errorf("component <%s> has no lookup", v.Tag)
			}
			tmpl, ok := lookup(v.Module)
			if !ok {
				return nil, fmt.Errorf("component <%s>: module %q not found", v.Tag, v.Module)
			}
			inst := substitute(Clone(tmpl), v.Attrs, v.Children)
			inlined, err := expand(inst, lookup, depth+1)
			if err != nil {
				return nil, fmt.Errorf("expanding <%s>: %w", v.Tag, err)
			}
			out = append(out, inlined...)
		default:
			out = append(out, n)
		}
	}
	return out, nil
}

// substitute replaces {...props} spreads with props and {children} with children.
func substitute(n Node, props []Attr, children []Node) []Node {
	switch v := n.(type) {
	case *Element:
		var attrs []Attr
		for _, a := range v.Attrs {
			if a.Kind == AttrSpread && a.Value == "props" {
				attrs = append(attrs, props...)
				continue
			}
			attrs = append(attrs, a)
		}
		v.Attrs = attrs
		var kids []Node
		for _, c := range v.Children {
			kids = append(kids, substitute(c, props, children)...)
		}
		v.Children = kids
		return []Node{v}
	case *Expr:
		if strings.TrimSpace(v.Source) == "children" {
			return cloneNodes(children)
		}
	}
	return []Node{n}
}

func renderNode(sb *strings.Builder, n Node, inSVG, raw bool) error {
	switch v := n.(type) {
	case *Text:
		if raw {
			sb.WriteString(v.Value)
		} else {
			sb.WriteString(html.EscapeString(v.Value))
		}
	case *Expr:
		s, ok, err := literalExpr(v.Source)
		if err != nil {
			return err
		}
		if ok {
			sb.WriteString(html.EscapeString(s))
		}
	case *Element:
		return renderElement(sb, v, inSVG || v.Tag == "svg")
	case *Ref:
		return fmt.Errorf("unresolved reference %s", snippet(v.Source))
	}
	return nil
}

func renderElement(sb *strings.Builder, e *Element, inSVG bool) error {
	sb.WriteString("<" + e.Tag)

	type kv struct{ name, val string }
	var attrs []kv
	index := make(map[string]int)
	set := func(name, val string) {
		if i, ok := index[name]; ok {
			attrs[i].val = val
			return
		}
		index[name] = len(attrs)
		attrs = append(attrs, kv{name, val})
	}
	unset := func(name string) {
		if i, ok := index[name]; ok {
			attrs[i].name = ""
			delete(index, name)
		}
	}

	for _, a := range e.Attrs {
		switch a.Kind {
		case AttrSpread:
			entries, ok := spreadLiteral(a.Value)
			if !ok {
				return fmt.Errorf("<%s>: cannot render spread {...%s}", e.Tag, a.Value)
			}
			for _, kv := range entries {
				set(kv[0], kv[1])
			}
		case AttrBool:
			set(HTMLAttrName(e.Tag, a.Name, inSVG), "")
		case AttrString:
			set(HTMLAttrName(e.Tag, a.Name, inSVG), a.Value)
		case AttrStyle:
			set("style", styleString(a.Style))
		case AttrExpr:
			switch strings.TrimSpace(a.Value) {
			case "false", "null", "undefined":
				unset(HTMLAttrName(e.Tag, a.Name, inSVG))
				continue
			case "true":
				set(HTMLAttrName(e.Tag, a.Name, inSVG), "")
				continue
			}
			s, ok, err := literalExpr(a.Value)
			if err != nil {
				return fmt.Errorf("<%s %s>: %w", e.Tag, a.Name, err)
			}
			if ok {
				set(HTMLAttrName(e.Tag, a.Name, inSVG), s)
			}
		}
	}
	for _, a := range attrs {
		if a.name == "" {
			continue
		}
		sb.WriteString(" " + a.name + `="` + html.EscapeString(a.val) + `"`)
	}
	sb.WriteString(">")

	if voidElements[e.Tag] && !inSVG {
		return nil
	}
	raw := e.Tag == "style" || e.Tag == "script"
	for _, c := range e.Children {
		if err := renderNode(sb, c, inSVG && e.Tag != "foreignObject", raw); err != nil {
			return err
		}
	}
	sb.WriteString("</" + e.Tag + ">")
	return nil
}

func styleString(props []StyleProp) string {
	parts := make([]string, 0, len(props))
	for _, p := range props {
		parts = append(parts, CSSProperty(p.Name)+": "+p.Value)
	}
	return strings.Join(parts, "; ")
}

// literalExpr evaluates the expression forms the renderer understands: string
// and number literals render as text, booleans and nullish values as nothing.
func literalExpr(src string) (string, bool, error) {
	src = strings.TrimSpace(src)
	switch src {
	case "", "true", "false", "null", "undefined":
		return "", false, nil
	}
	if len(src) >= 2 && (src[0] == '"' || src[0] == '\'' || src[0] == '`') && src[len(src)-1] == src[0] {
		return unescapeJS(src[1 : len(src)-1]), true, nil
	}
	if _, err := strconv.ParseFloat(src, 64); err == nil {
		return src, true, nil
	}
	return "", false, fmt.Errorf("cannot render expression {%s}", snippet(src))
}

// spreadLiteral reads a spread of an object literal whose keys and values are
// all string literals, keeping entry order.
func spreadLiteral(src string) ([][2]string, bool) {
	dec := json.NewDecoder(strings.NewReader(src))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, false
	}
	var entries [][2]string
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, false
		}
		val, err := dec.Token()
		if err != nil {
			return nil, false
		}
		k, _ := key.(string)
		v, ok := val.(string)
		if !ok {
			return nil, false
		}
		entries = append(entries, [2]string{k, v})
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return entries, true
}
