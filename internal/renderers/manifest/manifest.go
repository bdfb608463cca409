// Package manifest renders the machine-readable description of a replica.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dejo1307/pagerepl/internal/replica"
	"github.com/dejo1307/pagerepl/internal/rewrite"
)

// FileName is the artifact name.
const FileName = "replica.json"

// Renderer writes replica.json: run metadata, every generated file, the units
// the rewriter produced, components from metadata and check findings.
type Renderer struct{}

func (Renderer) Name() string { return "manifest" }

type document struct {
	Meta       replica.Meta        `json:"meta"`
	Files      []replica.File      `json:"files"`
	Units      []*rewrite.Unit     `json:"units"`
	Components []replica.Component `json:"components,omitempty"`
	Findings   []replica.Finding   `json:"findings"`
}

func (Renderer) Render(_ context.Context, r *replica.Replica) ([]replica.Artifact, error) {
	doc := document{
		Meta:       r.Meta,
		Files:      r.Files,
		Units:      r.Units,
		Components: r.Components,
		Findings:   r.Findings,
	}
	if doc.Files == nil {
		doc.Files = []replica.File{}
	}
	if doc.Units == nil {
		doc.Units = []*rewrite.Unit{}
	}
	if doc.Findings == nil {
		doc.Findings = []replica.Finding{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	return []replica.Artifact{{
		Name:    FileName,
		Content: append(data, '\n'),
		Type:    "application/json",
	}}, nil
}
