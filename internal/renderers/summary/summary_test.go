package summary

import (
	"context"
	"strings"
	"testing"

	"github.com/dejo1307/pagerepl/internal/replica"
	"github.com/dejo1307/pagerepl/internal/rewrite"
)

func sampleReplica() *replica.Replica {
	return &replica.Replica{
		Meta: replica.Meta{URL: "https://example.com", Title: "Example", GeneratedAt: "2024-01-01T00:00:00Z", Duration: "1s", Passes: rewrite.DefaultPasses},
		Units: []*rewrite.Unit{
			{Kind: rewrite.KindPage, Name: "Page", Path: "src/app/page.tsx"},
			{Kind: rewrite.KindElement, Name: "Button", Path: "src/components/ui/Button.tsx", Uses: 2},
			{Kind: rewrite.KindElement, Name: "Link", Path: "src/components/ui/Link.tsx", Uses: 5},
			{Kind: rewrite.KindIcon, Name: "IconABCD1234", Path: "src/components/icons/IconABCD1234.tsx", Uses: 1},
		},
		Components: []replica.Component{{ID: "c1", Name: "Header", Path: "src/components/Header.tsx", Kind: "function", Stub: true}},
		Findings: []replica.Finding{{
			Check: "renderdiff", Title: "Rendered page differs", Description: "1 change",
			Evidence: []replica.Evidence{{File: "src/app/page.tsx", Path: "/div[0]", Detail: "changed: x"}},
		}},
		Files: []replica.File{{Path: "src/app/page.tsx", Bytes: 10}},
	}
}

func TestRender(t *testing.T) {
	arts, err := New(0).Render(context.Background(), sampleReplica())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(arts) != 1 || arts[0].Name != FileName {
		t.Fatalf("unexpected artifacts %+v", arts)
	}
	out := string(arts[0].Content)
	for _, want := range []string{
		"Source: https://example.com (Example)",
		"| element | 2 |",
		"## Findings",
		"`src/app/page.tsx /div[0]` changed: x",
		"`src/components/Header.tsx` function (stub)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// most used first
	if strings.Index(out, "`Link`") > strings.Index(out, "`Button`") {
		t.Error("shared components should be ordered by uses")
	}
}

func TestRender_Budget(t *testing.T) {
	rep := sampleReplica()
	for i := 0; i < 200; i++ {
		rep.Files = append(rep.Files, replica.File{Path: strings.Repeat("x", 40), Bytes: i})
	}

	for _, budget := range []int{300, 1000} {
		arts, err := New(budget).Render(context.Background(), rep)
		if err != nil {
			t.Fatal(err)
		}
		out := string(arts[0].Content)
		if len(out) > budget+120 {
			t.Errorf("budget %d: output is %d chars", budget, len(out))
		}
		if !strings.Contains(out, "*[Truncated in:") && !strings.Contains(out, "*[Omitted:") {
			t.Errorf("budget %d: missing truncation marker", budget)
		}
	}
}

func TestRender_TinyBudgetDoesNotPanic(t *testing.T) {
	if _, err := New(10).Render(context.Background(), sampleReplica()); err != nil {
		t.Fatal(err)
	}
}
