package jsx

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

const (
	indent    = "  "
	lineWidth = 100
)

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Print renders n as JSX source indented for depth.
func Print(n Node) string {
	var sb strings.Builder
	writeNode(&sb, n, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}

func writeNode(sb *strings.Builder, n Node, depth int) {
	pad := strings.Repeat(indent, depth)
	switch v := n.(type) {
	case *Element:
		writeElement(sb, v, depth)
	case *Text:
		writeText(sb, v.Value, pad)
	case *Expr:
		sb.WriteString(pad + "{" + v.Source + "}\n")
	case *Ref:
		// unresolved refs print their call site
		sb.WriteString(pad + v.Source + "\n")
	}
}

func writeElement(sb *strings.Builder, e *Element, depth int) {
	pad := strings.Repeat(indent, depth)
	open := openTag(e)

	if len(e.Children) == 0 {
		if e.IsFragment() {
			sb.WriteString(pad + "<></>\n")
			return
		}
		sb.WriteString(pad + strings.TrimSuffix(open, ">") + " />\n")
		return
	}

	closeTag := "</" + e.Tag + ">"
	if len(e.Children) == 1 {
		if t, ok := e.Children[0].(*Text); ok && !needsExpr(t.Value) {
			line := pad + open + t.Value + closeTag
			if len(line) <= lineWidth {
				sb.WriteString(line + "\n")
				return
			}
		}
	}

	sb.WriteString(pad + open + "\n")
	for _, c := range e.Children {
		writeNode(sb, c, depth+1)
	}
	sb.WriteString(pad + closeTag + "\n")
}

func openTag(e *Element) string {
	if e.IsFragment() {
		return "<>"
	}
	parts := make([]string, 0, len(e.Attrs))
	for _, a := range e.Attrs {
		parts = append(parts, printAttr(a))
	}
	if len(parts) == 0 {
		return "<" + e.Tag + ">"
	}
	return "<" + e.Tag + " " + strings.Join(parts, " ") + ">"
}

func printAttr(a Attr) string {
	switch a.Kind {
	case AttrBool:
		return a.Name
	case AttrExpr:
		return a.Name + "={" + a.Value + "}"
	case AttrSpread:
		return "{..." + a.Value + "}"
	case AttrStyle:
		return "style={" + styleObject(a.Style) + "}"
	}
	if strings.ContainsAny(a.Value, "\"&\n\r") {
		return a.Name + "={" + quote(a.Value) + "}"
	}
	return a.Name + `="` + a.Value + `"`
}

func styleObject(props []StyleProp) string {
	if len(props) == 0 {
		return "{}"
	}
	parts := make([]string, len(props))
	for i, p := range props {
		key := p.Name
		if !identifier.MatchString(key) {
			key = quote(key)
		}
		parts[i] = key + ": " + quote(p.Value)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// writeText prints text on its own line. JSX trims whitespace at line edges, so
// edge spaces become {" "} and text with markup characters becomes a string
// expression.
func writeText(sb *strings.Builder, s, pad string) {
	core := strings.TrimSpace(s)
	if core == "" {
		sb.WriteString(pad + `{" "}` + "\n")
		return
	}
	if s[0] == ' ' {
		sb.WriteString(pad + `{" "}` + "\n")
	}
	if needsExpr(core) {
		sb.WriteString(pad + "{" + quote(core) + "}\n")
	} else {
		sb.WriteString(pad + core + "\n")
	}
	if s[len(s)-1] == ' ' {
		sb.WriteString(pad + `{" "}` + "\n")
	}
}

func needsExpr(s string) bool {
	return strings.ContainsAny(s, "{}<>&\n\r")
}

// quote encodes s as a JavaScript string literal.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
