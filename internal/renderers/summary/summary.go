// Package summary renders a compact markdown overview of a replica.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/pagerepl/internal/replica"
	"github.com/dejo1307/pagerepl/internal/rewrite"
)

// FileName is the artifact name.
const FileName = "REPLICA.md"

// Renderer produces REPLICA.md within a character budget.
type Renderer struct {
	maxChars int
}

// New creates a summary renderer; a non-positive budget selects 64000 characters.
func New(maxChars int) *Renderer {
	if maxChars <= 0 {
		maxChars = 64000
	}
	return &Renderer{maxChars: maxChars}
}

func (r *Renderer) Name() string {
	return "summary"
}

type section struct {
	name    string
	content string
}

// Render writes sections in priority order. A section that does not fit is cut
// when enough room remains, otherwise it and every later section are listed as
// omitted.
func (r *Renderer) Render(_ context.Context, rep *replica.Replica) ([]replica.Artifact, error) {
	sections := []section{
		{"Overview", renderOverview(rep)},
		{"Findings", renderFindings(rep)},
		{"Shared Components", renderUnits(rep, rewrite.KindElement, "Shared Components")},
		{"Layout", renderUnits(rep, rewrite.KindLandmark, "Layout")},
		{"Icons", renderUnits(rep, rewrite.KindIcon, "Icons")},
		{"Components from Metadata", renderComponents(rep)},
		{"Files", renderFiles(rep)},
		{"Meta", renderMeta(rep)},
	}

	header := "# Replica\n\n"
	remaining := r.maxChars - len(header)

	var sb strings.Builder
	sb.WriteString(header)
	for i, sec := range sections {
		if sec.content == "" {
			continue
		}
		if len(sec.content) <= remaining {
			sb.WriteString(sec.content)
			remaining -= len(sec.content)
			continue
		}
		if remaining > 200 {
			cut := sec.content[:remaining-100]
			if nl := strings.LastIndexByte(cut, '\n'); nl > 0 {
				cut = cut[:nl+1]
			}
			sb.WriteString(cut)
			fmt.Fprintf(&sb, "\n---\n*[Truncated in: %s]*\n", sec.name)
			break
		}
		var omitted []string
		for _, s := range sections[i:] {
			if s.content != "" {
				omitted = append(omitted, s.name)
			}
		}
		fmt.Fprintf(&sb, "\n---\n*[Omitted: %s]*\n", strings.Join(omitted, ", "))
		break
	}

	return []replica.Artifact{{
		Name:    FileName,
		Content: []byte(sb.String()),
		Type:    "text/markdown",
	}}, nil
}

func renderOverview(rep *replica.Replica) string {
	var sb strings.Builder
	sb.WriteString("## Overview\n\n")
	if rep.Meta.URL != "" {
		fmt.Fprintf(&sb, "Source: %s", rep.Meta.URL)
		if rep.Meta.Title != "" {
			fmt.Fprintf(&sb, " (%s)", rep.Meta.Title)
		}
		sb.WriteString("\n\n")
	}

	counts := make(map[rewrite.UnitKind]int)
	for _, u := range rep.Units {
		counts[u.Kind]++
	}
	sb.WriteString("| Kind | Files |\n")
	sb.WriteString("|------|-------|\n")
	for _, k := range []rewrite.UnitKind{rewrite.KindPage, rewrite.KindLandmark, rewrite.KindElement, rewrite.KindIcon} {
		fmt.Fprintf(&sb, "| %s | %d |\n", k, counts[k])
	}
	fmt.Fprintf(&sb, "| component | %d |\n\n", len(rep.Components))
	return sb.String()
}

func renderFindings(rep *replica.Replica) string {
	var sb strings.Builder
	sb.WriteString("## Findings\n\n")
	if len(rep.Findings) == 0 {
		sb.WriteString("_All checks passed._\n\n")
		return sb.String()
	}
	for _, f := range rep.Findings {
		fmt.Fprintf(&sb, "### %s (%s)\n\n%s\n\n", f.Title, f.Check, f.Description)
		for _, ev := range f.Evidence {
			loc := ev.File
			if ev.Path != "" {
				loc += " " + ev.Path
			}
			fmt.Fprintf(&sb, "- `%s` %s\n", loc, ev.Detail)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderUnits(rep *replica.Replica, kind rewrite.UnitKind, title string) string {
	var units []*rewrite.Unit
	for _, u := range rep.Units {
		if u.Kind == kind {
			units = append(units, u)
		}
	}
	if len(units) == 0 {
		return ""
	}
	sort.SliceStable(units, func(i, j int) bool { return units[i].Uses > units[j].Uses })

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", title)
	sb.WriteString("| Name | Uses | File |\n")
	sb.WriteString("|------|------|------|\n")
	for _, u := range units {
		fmt.Fprintf(&sb, "| `%s` | %d | `%s` |\n", u.Name, u.Uses, u.Path)
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderComponents(rep *replica.Replica) string {
	if len(rep.Components) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Components from Metadata\n\nListed in generation order; every component follows its dependencies.\n\n")
	for _, c := range rep.Components {
		stub := ""
		if c.Stub {
			stub = " (stub)"
		}
		fmt.Fprintf(&sb, "- `%s` %s%s", c.Path, c.Kind, stub)
		if len(c.Deps) > 0 {
			fmt.Fprintf(&sb, " -> %d deps", len(c.Deps))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderFiles(rep *replica.Replica) string {
	if len(rep.Files) == 0 {
		return ""
	}
	files := append([]replica.File(nil), rep.Files...)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	var sb strings.Builder
	sb.WriteString("## Files\n\n")
	for _, f := range files {
		fmt.Fprintf(&sb, "- `%s` (%d bytes)\n", f.Path, f.Bytes)
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderMeta(rep *replica.Replica) string {
	m := rep.Meta
	var sb strings.Builder
	sb.WriteString("## Meta\n\n")
	fmt.Fprintf(&sb, "- Generated: %s in %s\n", m.GeneratedAt, m.Duration)
	fmt.Fprintf(&sb, "- Passes: %s\n", strings.Join(m.Passes, ", "))
	fmt.Fprintf(&sb, "- Checks: %s\n", strings.Join(m.Checks, ", "))
	fmt.Fprintf(&sb, "- Files: %d, components: %d, findings: %d\n", m.FileCount, m.ComponentCount, m.FindingCount)
	return sb.String()
}
