package checks

import (
	"context"
	"testing"

	"github.com/dejo1307/pagerepl/internal/canon"
	"github.com/dejo1307/pagerepl/internal/jsx"
	"github.com/dejo1307/pagerepl/internal/replica"
	"github.com/dejo1307/pagerepl/internal/rewrite"
)

func buildReplica(t *testing.T, src string) *replica.Replica {
	t.Helper()
	nodes, err := canon.ParseFragment(src)
	if err != nil {
		t.Fatal(err)
	}
	rc := rewrite.NewContext(rewrite.DefaultOptions(), nil)
	if _, err := rewrite.New(rewrite.DefaultRegistry(), nil).Rewrite(context.Background(), rc, jsx.FromHTML(nodes)); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	r := &replica.Replica{Units: rc.Units(), HTML: src}
	for _, u := range rc.Units() {
		r.Files = append(r.Files, replica.File{Path: u.Path, Kind: string(u.Kind), Content: u.Source})
	}
	return r
}

const page = `<nav><button class="b">1</button><button class="b">2</button></nav><main><p>hi</p><svg><rect width="1"/></svg></main>`

func TestRenderDiff_Equivalent(t *testing.T) {
	r := buildReplica(t, page)
	findings, err := RenderDiff{}.Run(context.Background(), r)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %+v", findings)
	}
}

func TestRenderDiff_ReportsChanges(t *testing.T) {
	r := buildReplica(t, page)
	r.HTML = `<nav><button class="b">1</button><button class="b">3</button></nav><main><p>hi</p><svg><rect width="1"/></svg></main>`

	findings, err := RenderDiff{}.Run(context.Background(), r)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	f := findings[0]
	if f.Check != "renderdiff" || len(f.Evidence) != 1 || f.Evidence[0].File != "src/app/page.tsx" {
		t.Errorf("unexpected finding %+v", f)
	}
}

func TestRenderDiff_NoPage(t *testing.T) {
	if _, err := (RenderDiff{}).Run(context.Background(), &replica.Replica{}); err == nil {
		t.Error("expected error without page unit")
	}
}

func TestSyntax(t *testing.T) {
	r := buildReplica(t, page)
	findings, err := Syntax{}.Run(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Fatalf("generated files should parse, got %+v", findings)
	}

	r.Files = append(r.Files,
		replica.File{Path: "src/components/Broken.tsx", Content: "export default () => (<div>);\n"},
		replica.File{Path: "replica.json", Content: "{"},
	)
	findings, err = Syntax{}.Run(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 || len(findings[0].Evidence) != 1 || findings[0].Evidence[0].File != "src/components/Broken.tsx" {
		t.Errorf("unexpected findings %+v", findings)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(RenderDiff{})
	reg.Register(Syntax{})
	if reg.Get("syntax") == nil || reg.Get("missing") != nil || len(reg.All()) != 2 {
		t.Error("registry lookup mismatch")
	}
}
