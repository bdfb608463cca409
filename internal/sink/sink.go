// Package sink persists generated files. The pipeline only ever calls
// WriteText; where the bytes end up is the implementation's concern.
package sink

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Sink receives generated files addressed by clean, relative, slash-separated
// paths.
type Sink interface {
	WriteText(ctx context.Context, path, content string) error
}

// ValidatePath rejects absolute, unclean or escaping paths.
func ValidatePath(p string) error {
	switch {
	case p == "":
		return fmt.Errorf("empty path")
	case strings.HasPrefix(p, "/") || filepath.IsAbs(p):
		return fmt.Errorf("path %q is absolute", p)
	case strings.Contains(p, `\`):
		return fmt.Errorf("path %q contains a backslash", p)
	case path.Clean(p) != p:
		return fmt.Errorf("path %q is not clean", p)
	case p == ".." || strings.HasPrefix(p, "../"):
		return fmt.Errorf("path %q escapes the output root", p)
	}
	return nil
}

// FS writes files below a directory.
type FS struct {
	Dir string
}

func (s FS) WriteText(ctx context.Context, p, content string) error {
	if err := ValidatePath(p); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(s.Dir, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", p, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	log.Printf("[sink] wrote %s (%d bytes)", full, len(content))
	return nil
}

// Memory keeps files in a map; it is safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	files map[string]string
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{files: make(map[string]string)}
}

func (m *Memory) WriteText(_ context.Context, p, content string) error {
	if err := ValidatePath(p); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = content
	return nil
}

// Get returns the content written at p.
func (m *Memory) Get(p string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.files[p]
	return c, ok
}

// Paths returns every written path, sorted.
func (m *Memory) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
