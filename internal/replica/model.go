// Package replica holds the result of one replication run.
package replica

import "github.com/dejo1307/pagerepl/internal/rewrite"

// File kinds beyond the rewrite unit kinds.
const (
	KindComponent = "component" // emitted from captured component code
	KindReport    = "report"    // renderer output
)

// File is one generated file.
type File struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Name    string `json:"name,omitempty"`
	Bytes   int    `json:"bytes"`
	Hash    string `json:"hash"` // sha256 of Content
	Content string `json:"-"`
}

// Component describes a component emitted from fiber metadata.
type Component struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Dir  string   `json:"dir,omitempty"`
	Path string   `json:"path"`
	Kind string   `json:"type"`
	Deps []string `json:"deps,omitempty"` // paths of direct code-bearing dependencies
	Stub bool     `json:"stub,omitempty"` // no captured code
}

// Finding is an informational result of a post-generation check.
type Finding struct {
	Check       string     `json:"check"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Evidence    []Evidence `json:"evidence,omitempty"`
}

// Evidence points a finding at a file or a location in the rendered tree.
type Evidence struct {
	File   string `json:"file,omitempty"`
	Path   string `json:"path,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Artifact is a renderer output.
type Artifact struct {
	Name    string `json:"name"` // e.g. "replica.json"
	Content []byte `json:"-"`    // raw content
	Type    string `json:"type"` // MIME type hint
}

// Replica is the complete result of a run.
type Replica struct {
	Meta       Meta            `json:"meta"`
	Files      []File          `json:"files"`
	Components []Component     `json:"components,omitempty"`
	Findings   []Finding       `json:"findings"`
	Artifacts  []Artifact      `json:"artifacts"`
	Units      []*rewrite.Unit `json:"-"`

	// HTML is the captured body markup the page unit must render back to.
	HTML string `json:"-"`
}

// Meta describes a run.
type Meta struct {
	URL            string   `json:"url"`
	Title          string   `json:"title,omitempty"`
	GeneratedAt    string   `json:"generated_at"`
	Duration       string   `json:"duration"`
	Passes         []string `json:"passes"`
	Checks         []string `json:"checks"`
	Renderers      []string `json:"renderers"`
	FileCount      int      `json:"file_count"`
	ComponentCount int      `json:"component_count"`
	FindingCount   int      `json:"finding_count"`
}

// Page returns the page unit, or nil.
func (r *Replica) Page() *rewrite.Unit {
	for _, u := range r.Units {
		if u.Kind == rewrite.KindPage {
			return u
		}
	}
	return nil
}

// File returns the generated file at path.
func (r *Replica) File(path string) (File, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return File{}, false
}
