package canon

import (
	"regexp"
	"sort"
	"strings"
)

// propertyAliases maps legacy property names to their standard spelling.
var propertyAliases = map[string]string{
	"word-wrap":             "overflow-wrap",
	"grid-gap":              "gap",
	"grid-row-gap":          "row-gap",
	"grid-column-gap":       "column-gap",
	"-webkit-box-sizing":    "box-sizing",
	"-webkit-border-radius": "border-radius",
	"-webkit-appearance":    "appearance",
	"-moz-appearance":       "appearance",
}

var (
	zeroLength  = regexp.MustCompile(`^[+-]?(0+(\.0*)?|\.0+)(px|em|rem|%|pt|pc|vh|vw|vmin|vmax|ch|ex|cm|mm|in|q|lh|rlh|svh|lvh|dvh|svw|lvw|dvw)?$`)
	leadingDot  = regexp.MustCompile(`(^|[\s(,+-])\.(\d)`)
	spaceComma  = regexp.MustCompile(`\s*,\s*`)
	spaceParen  = regexp.MustCompile(`\(\s+|\s+\)`)
	bangSpacing = regexp.MustCompile(`\s*!\s*important$`)
)

// Declaration is a single CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// ParseStyle splits an inline style attribute into declarations in source order.
// Semicolons and colons inside quotes or parentheses do not split.
func ParseStyle(src string) []Declaration {
	var decls []Declaration
	for _, part := range splitTopLevel(src, ';') {
		idx := indexTopLevel(part, ':')
		if idx < 0 {
			continue
		}
		prop := strings.TrimSpace(part[:idx])
		val := strings.TrimSpace(part[idx+1:])
		if prop == "" || val == "" {
			continue
		}
		decls = append(decls, Declaration{Property: prop, Value: val})
	}
	return decls
}

// NormalizeStyle returns a canonical "prop: value; ..." string: properties sorted,
// aliases resolved, later duplicates winning, and zero lengths written as 0.
func NormalizeStyle(src string) string {
	props := make(map[string]string)
	for _, d := range ParseStyle(src) {
		name := normalizeProperty(d.Property)
		props[name] = normalizeValue(d.Value)
	}
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+props[k])
	}
	return strings.Join(parts, "; ")
}

func normalizeProperty(p string) string {
	if strings.HasPrefix(p, "--") {
		return p
	}
	p = strings.ToLower(p)
	if alias, ok := propertyAliases[p]; ok {
		return alias
	}
	return p
}

func normalizeValue(v string) string {
	v = collapseSpace(v)
	v = bangSpacing.ReplaceAllString(v, " !important")
	v = spaceComma.ReplaceAllString(v, ",")
	v = spaceParen.ReplaceAllStringFunc(v, strings.TrimSpace)
	v = leadingDot.ReplaceAllString(v, "${1}0.$2")

	fields := strings.Fields(v)
	for i, f := range fields {
		if zeroLength.MatchString(strings.ToLower(f)) {
			fields[i] = "0"
		}
	}
	return strings.Join(fields, " ")
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func indexTopLevel(s string, sep byte) int {
	parts := splitTopLevel(s, sep)
	if len(parts) < 2 {
		return -1
	}
	return len(parts[0])
}
