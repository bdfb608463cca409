package checks

import (
	"context"
	"fmt"

	"github.com/dejo1307/pagerepl/internal/canon"
	"github.com/dejo1307/pagerepl/internal/jsx"
	"github.com/dejo1307/pagerepl/internal/replica"
)

// maxEvidence caps how many individual changes a finding lists.
const maxEvidence = 25

// RenderDiff renders the generated page back to HTML, expanding every generated
// component, and compares it with the captured markup.
type RenderDiff struct{}

func (RenderDiff) Name() string { return "renderdiff" }

func (c RenderDiff) Run(_ context.Context, r *replica.Replica) ([]replica.Finding, error) {
	page := r.Page()
	if page == nil {
		return nil, fmt.Errorf("replica has no page unit")
	}

	modules := make(map[string]*jsx.Element, len(r.Units))
	for _, u := range r.Units {
		if el, ok := u.Root.(*jsx.Element); ok {
			modules[u.Module] = el
		}
	}
	lookup := func(module string) (*jsx.Element, bool) {
		el, ok := modules[module]
		return el, ok
	}

	rendered, err := jsx.RenderHTML(page.Root, lookup)
	if err != nil {
		return []replica.Finding{{
			Check:       c.Name(),
			Title:       "Page could not be rendered",
			Description: err.Error(),
			Evidence:    []replica.Evidence{{File: page.Path}},
		}}, nil
	}

	report, err := canon.Diff(r.HTML, rendered)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, nil
	}

	f := replica.Finding{
		Check:       c.Name(),
		Title:       "Rendered page differs from the captured markup",
		Description: fmt.Sprintf("%d structural changes between the captured page and %s", len(report.Changes), page.Path),
	}
	for i, ch := range report.Changes {
		if i == maxEvidence {
			break
		}
		f.Evidence = append(f.Evidence, replica.Evidence{
			File:   page.Path,
			Path:   ch.Path,
			Detail: fmt.Sprintf("%s: %s", ch.Kind, ch.Detail),
		})
	}
	return []replica.Finding{f}, nil
}
