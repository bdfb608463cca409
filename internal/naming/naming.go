// Package naming assigns deterministic, collision-free component names.
package naming

import (
	"strconv"
	"strings"
	"unicode"
)

// MinDeclaredName is the shortest declared name used as-is; shorter (usually
// minified) names fall back to a positional name.
const MinDeclaredName = 3

// Entry is one component to be named, in first-encountered order.
type Entry struct {
	ID   string
	Name string // declared display name, possibly empty or dotted
}

// NamePath locates a generated component: Dir is a slash-separated kebab-case
// directory (empty for the top level) and Name a PascalCase identifier.
type NamePath struct {
	Dir  string `json:"dir"`
	Name string `json:"name"`
}

// Path joins Dir and Name.
func (p NamePath) Path() string {
	if p.Dir == "" {
		return p.Name
	}
	return p.Dir + "/" + p.Name
}

// RawName returns the declared name when it is long enough, otherwise a
// positional fallback built from the tail of the id.
func RawName(e Entry) string {
	name := strings.TrimSpace(e.Name)
	if len(name) >= MinDeclaredName {
		return name
	}
	return "Component" + idSuffix(e.ID)
}

// Split separates a dotted raw name into a kebab-cased directory and a PascalCase
// leaf: "Dialog.CloseButton" -> ("dialog", "CloseButton").
func Split(raw string) NamePath {
	segments := strings.Split(raw, ".")
	var dirs []string
	for _, seg := range segments[:len(segments)-1] {
		if k := KebabCase(seg); k != "" {
			dirs = append(dirs, k)
		}
	}
	return NamePath{Dir: strings.Join(dirs, "/"), Name: PascalCase(segments[len(segments)-1])}
}

// Assign resolves a NamePath for every entry. Entries are bucketed by directory;
// within a bucket a base name used once stays bare, and a base name shared by N
// entries becomes Base, Base2, ... in first-encountered order, skipping any
// suffixed name another entry declares outright: Button2 plus two Button gives
// Button2, Button and Button3. No two entries receive the same (Dir, Name).
func Assign(entries []Entry) map[string]NamePath {
	type member struct {
		id   string
		path NamePath
	}

	var dirOrder []string
	buckets := make(map[string][]member)
	for _, e := range entries {
		p := Split(RawName(e))
		if _, ok := buckets[p.Dir]; !ok {
			dirOrder = append(dirOrder, p.Dir)
		}
		buckets[p.Dir] = append(buckets[p.Dir], member{id: e.ID, path: p})
	}

	out := make(map[string]NamePath, len(entries))
	for _, dir := range dirOrder {
		members := buckets[dir]
		counts := make(map[string]int)
		for _, m := range members {
			counts[m.path.Name]++
		}

		reg := NewRegistry()
		// reserve bare names first so a suffixed name never takes one
		for _, m := range members {
			if counts[m.path.Name] == 1 {
				reg.Reserve(m.path.Name)
				out[m.id] = m.path
			}
		}
		for _, base := range groupOrder(members, func(m member) string { return m.path.Name }) {
			if counts[base] == 1 {
				continue
			}
			for _, m := range members {
				if m.path.Name == base {
					out[m.id] = NamePath{Dir: dir, Name: reg.Claim(base)}
				}
			}
		}
	}
	return out
}

// AssignFlat names a flat set of entries without directory bucketing. A base name
// used once stays bare; a base name shared by N entries is suffixed 1..N on every
// occurrence in first-encountered order.
func AssignFlat(entries []Entry) map[string]string {
	bases := make([]string, len(entries))
	counts := make(map[string]int)
	for i, e := range entries {
		raw := RawName(e)
		if idx := strings.LastIndex(raw, "."); idx >= 0 {
			raw = raw[idx+1:]
		}
		bases[i] = PascalCase(raw)
		counts[bases[i]]++
	}

	reg := NewRegistry()
	// reserve bare names first so a suffixed name never takes one
	for _, b := range bases {
		if counts[b] == 1 {
			reg.Reserve(b)
		}
	}

	out := make(map[string]string, len(entries))
	next := make(map[string]int)
	for i, e := range entries {
		b := bases[i]
		if counts[b] == 1 {
			out[e.ID] = b
			continue
		}
		for {
			next[b]++
			candidate := b + strconv.Itoa(next[b])
			if reg.Reserve(candidate) {
				out[e.ID] = candidate
				break
			}
		}
	}
	return out
}

// groupOrder returns distinct keys in first-encountered order.
func groupOrder[T any](items []T, key func(T) string) []string {
	var order []string
	seen := make(map[string]bool)
	for _, it := range items {
		k := key(it)
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}
	return order
}

// PascalCase converts s to an exported identifier: words split on any
// non-alphanumeric rune, each word's first letter upper-cased. Identifiers never
// start with a digit; an empty result becomes "Component".
func PascalCase(s string) string {
	var sb strings.Builder
	upperNext := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		sb.WriteRune(r)
	}
	out := sb.String()
	if out == "" {
		return "Component"
	}
	if unicode.IsDigit([]rune(out)[0]) {
		return "Component" + out
	}
	return out
}

// KebabCase converts s to lower-case words joined by hyphens:
// "NavMenu" -> "nav-menu", "HTMLParser" -> "html-parser".
func KebabCase(s string) string {
	runes := []rune(s)
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return strings.Join(words, "-")
}

func idSuffix(id string) string {
	var alnum []rune
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum = append(alnum, r)
		}
	}
	if len(alnum) > 6 {
		alnum = alnum[len(alnum)-6:]
	}
	if len(alnum) == 0 {
		return ""
	}
	alnum[0] = unicode.ToUpper(alnum[0])
	return string(alnum)
}
