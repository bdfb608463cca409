package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dejo1307/pagerepl/internal/checks"
	"github.com/dejo1307/pagerepl/internal/config"
	"github.com/dejo1307/pagerepl/internal/jsx"
	"github.com/dejo1307/pagerepl/internal/namer"
	"github.com/dejo1307/pagerepl/internal/renderers"
	"github.com/dejo1307/pagerepl/internal/replica"
	"github.com/dejo1307/pagerepl/internal/rewrite"
	"github.com/dejo1307/pagerepl/internal/sink"
	"github.com/dejo1307/pagerepl/internal/snapshot"
)

// Engine orchestrates the replication pipeline.
type Engine struct {
	cfg       *config.Config
	out       sink.Sink
	namer     namer.Namer
	passes    *rewrite.Registry
	checks    *checks.Registry
	renderers *renderers.Registry

	mu      sync.RWMutex
	replica *replica.Replica
}

// New creates an Engine writing through out. nm may be nil, in which case
// generated elements get tag-derived names. Checks and renderers must be
// registered after creation; the rewrite passes are the built-in ones.
func New(cfg *config.Config, out sink.Sink, nm namer.Namer) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if out == nil {
		return nil, fmt.Errorf("engine needs an output sink")
	}
	return &Engine{
		cfg:       cfg,
		out:       out,
		namer:     nm,
		passes:    rewrite.DefaultRegistry(),
		checks:    checks.NewRegistry(),
		renderers: renderers.NewRegistry(),
	}, nil
}

// RegisterPass adds or shadows a rewrite pass.
func (e *Engine) RegisterPass(p rewrite.Pass) {
	e.passes.Register(p)
}

// RegisterCheck adds a check to the engine.
func (e *Engine) RegisterCheck(c checks.Check) {
	e.checks.Register(c)
}

// RegisterRenderer adds a renderer to the engine.
func (e *Engine) RegisterRenderer(rnd renderers.Renderer) {
	e.renderers.Register(rnd)
}

// Replica returns the last generated replica, or nil.
func (e *Engine) Replica() *replica.Replica {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.replica
}

// Config returns the engine config.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Replicate runs the full pipeline: parse page -> rewrite -> metadata components
// -> checks -> renderers -> write. A write failure is returned after the files
// written so far; the output is not atomic.
func (e *Engine) Replicate(ctx context.Context, snap *snapshot.Snapshot) (*replica.Replica, error) {
	start := time.Now()
	if snap == nil {
		return nil, fmt.Errorf("no snapshot")
	}

	// 1. Parse the captured document
	page, err := parsePage(snap.Page.HTML)
	if err != nil {
		return nil, err
	}
	title := snap.Page.Title
	if title == "" {
		title = page.title
	}
	log.Printf("[engine] parsed %s: %d top-level body nodes", orUnknown(snap.Page.URL), len(page.body))

	// 2. Rewrite into units
	rc := rewrite.NewContext(e.cfg.RewriteOptions(), e.namer)
	rw := rewrite.New(e.passes, e.cfg.Passes)
	if _, err := rw.Rewrite(ctx, rc, jsx.FromHTML(page.body)); err != nil {
		return nil, fmt.Errorf("rewriting page: %w", err)
	}
	units := rc.Units()
	log.Printf("[engine] rewrote page into %d units", len(units))

	rep := &replica.Replica{
		Units:    units,
		HTML:     page.html,
		Findings: []replica.Finding{},
	}
	for _, u := range units {
		rep.Files = append(rep.Files, newFile(u.Path, string(u.Kind), u.Name, u.Source))
	}

	// 3. Components from metadata
	if snap.Metadata != nil {
		comps, files, err := e.components(ctx, snap.Metadata, usedPaths(rep.Files))
		if err != nil {
			return nil, fmt.Errorf("metadata components: %w", err)
		}
		rep.Components = comps
		rep.Files = append(rep.Files, files...)
		log.Printf("[engine] emitted %d components from metadata", len(comps))
	}

	// 4. Checks
	usedChecks := e.runChecks(ctx, rep)
	log.Printf("[engine] %d findings from %d checks", len(rep.Findings), len(usedChecks))

	rep.Meta = replica.Meta{
		URL:            snap.Page.URL,
		Title:          title,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		Duration:       time.Since(start).String(),
		Passes:         e.passOrder(),
		Checks:         usedChecks,
		Renderers:      []string{},
		FileCount:      len(rep.Files),
		ComponentCount: len(rep.Components),
		FindingCount:   len(rep.Findings),
	}

	// 5. Renderers
	rep.Meta.Renderers = e.runRenderers(ctx, rep)
	log.Printf("[engine] produced %d artifacts using %d renderers", len(rep.Artifacts), len(rep.Meta.Renderers))

	e.mu.Lock()
	e.replica = rep
	e.mu.Unlock()

	// 6. Write
	if err := e.write(ctx, rep); err != nil {
		return rep, err
	}
	log.Printf("[engine] replica generated in %s", time.Since(start))
	return rep, nil
}

func (e *Engine) passOrder() []string {
	if len(e.cfg.Passes) == 0 {
		return append([]string(nil), rewrite.DefaultPasses...)
	}
	return e.cfg.Passes
}

// runChecks runs all enabled checks. A failing check is logged and skipped.
func (e *Engine) runChecks(ctx context.Context, rep *replica.Replica) []string {
	var used []string
	for _, c := range e.checks.All() {
		if !e.cfg.IsCheckEnabled(c.Name()) {
			continue
		}
		findings, err := c.Run(ctx, rep)
		if err != nil {
			log.Printf("[engine] check %s error: %v", c.Name(), err)
			continue
		}
		rep.Findings = append(rep.Findings, findings...)
		used = append(used, c.Name())
		log.Printf("[engine] check %s: %d findings", c.Name(), len(findings))
	}
	return used
}

// runRenderers runs all enabled renderers.
func (e *Engine) runRenderers(ctx context.Context, rep *replica.Replica) []string {
	used := []string{}
	for _, rnd := range e.renderers.All() {
		if !e.cfg.IsRendererEnabled(rnd.Name()) {
			continue
		}
		artifacts, err := rnd.Render(ctx, rep)
		if err != nil {
			log.Printf("[engine] renderer %s error: %v", rnd.Name(), err)
			continue
		}
		rep.Artifacts = append(rep.Artifacts, artifacts...)
		used = append(used, rnd.Name())
	}
	return used
}

// write sends every generated file, then every artifact, through the sink.
func (e *Engine) write(ctx context.Context, rep *replica.Replica) error {
	for _, f := range rep.Files {
		if err := e.out.WriteText(ctx, f.Path, f.Content); err != nil {
			return fmt.Errorf("writing %s: %w", f.Path, err)
		}
	}
	for _, a := range rep.Artifacts {
		if err := e.out.WriteText(ctx, a.Name, string(a.Content)); err != nil {
			return fmt.Errorf("writing %s: %w", a.Name, err)
		}
	}
	log.Printf("[engine] wrote %d files and %d artifacts", len(rep.Files), len(rep.Artifacts))
	return nil
}

// GetArtifact returns the content of a named artifact or generated file from the
// last run.
func (e *Engine) GetArtifact(name string) ([]byte, error) {
	rep := e.Replica()
	if rep == nil {
		return nil, fmt.Errorf("no replica generated")
	}
	for _, a := range rep.Artifacts {
		if a.Name == name {
			return a.Content, nil
		}
	}
	if f, ok := rep.File(name); ok {
		return []byte(f.Content), nil
	}
	return nil, fmt.Errorf("artifact %q not found", name)
}

func newFile(path, kind, name, content string) replica.File {
	h := sha256.Sum256([]byte(content))
	return replica.File{
		Path:    path,
		Kind:    kind,
		Name:    name,
		Bytes:   len(content),
		Hash:    hex.EncodeToString(h[:]),
		Content: content,
	}
}

func usedPaths(files []replica.File) map[string]bool {
	out := make(map[string]bool, len(files))
	for _, f := range files {
		out[f.Path] = true
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "<unknown url>"
	}
	return s
}
