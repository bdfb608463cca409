// Package namer is the optional naming port used to give unified components
// readable names. Implementations are best-effort: callers fall back to
// deterministic names when a Namer fails or omits a signature.
package namer

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/dejo1307/pagerepl/internal/naming"
)

// Signature identifies one group of unified elements. ID is the normalization
// signature and Sample a short markup excerpt of its first occurrence.
type Signature struct {
	ID     string `json:"id"`
	Sample string `json:"sample"`
}

// Namer resolves a batch of signatures to component names keyed by Signature.ID.
type Namer interface {
	Name(ctx context.Context, sigs []Signature) (map[string]string, error)
}

// Static answers from a fixed table.
type Static map[string]string

func (s Static) Name(_ context.Context, sigs []Signature) (map[string]string, error) {
	out := make(map[string]string, len(sigs))
	for _, sig := range sigs {
		if name, ok := s[sig.ID]; ok {
			out[sig.ID] = name
		}
	}
	return out, nil
}

var reserved = map[string]bool{
	"Object": true, "Array": true, "String": true, "Number": true, "Boolean": true,
	"Symbol": true, "Map": true, "Set": true, "Promise": true, "Date": true,
	"Error": true, "JSON": true, "Math": true, "React": true, "Fragment": true,
}

var identifier = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

// Sanitize turns a model-supplied name into an exported identifier. ok is false
// when nothing usable remains.
func Sanitize(name string) (string, bool) {
	start := strings.IndexFunc(name, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })
	if start < 0 || !unicode.IsLetter([]rune(name[start:])[0]) {
		return "", false
	}
	out := naming.PascalCase(name)
	if len(out) > 48 {
		out = out[:48]
	}
	if !identifier.MatchString(out) || reserved[out] {
		return "", false
	}
	return out, true
}
