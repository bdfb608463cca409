package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dejo1307/pagerepl/internal/jsx"
	"github.com/dejo1307/pagerepl/internal/replica"
)

// Syntax parses every generated TSX file.
type Syntax struct{}

func (Syntax) Name() string { return "syntax" }

func (c Syntax) Run(ctx context.Context, r *replica.Replica) ([]replica.Finding, error) {
	var bad []replica.Evidence
	for _, f := range r.Files {
		if !strings.HasSuffix(f.Path, ".tsx") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := jsx.Check(f.Path, f.Content)
		if err == nil {
			continue
		}
		var perr *jsx.ParseError
		if !errors.As(err, &perr) {
			return nil, err
		}
		bad = append(bad, replica.Evidence{
			File:   f.Path,
			Path:   fmt.Sprintf("%d:%d", perr.Row, perr.Column),
			Detail: perr.Snippet,
		})
	}
	if len(bad) == 0 {
		return nil, nil
	}
	return []replica.Finding{{
		Check:       c.Name(),
		Title:       "Generated files do not parse",
		Description: fmt.Sprintf("%d generated files have TSX syntax errors", len(bad)),
		Evidence:    bad,
	}}, nil
}
