package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dejo1307/pagerepl/internal/checks"
	"github.com/dejo1307/pagerepl/internal/config"
	"github.com/dejo1307/pagerepl/internal/fiber"
	"github.com/dejo1307/pagerepl/internal/jsx"
	"github.com/dejo1307/pagerepl/internal/renderers/manifest"
	"github.com/dejo1307/pagerepl/internal/renderers/summary"
	"github.com/dejo1307/pagerepl/internal/sink"
	"github.com/dejo1307/pagerepl/internal/snapshot"
)

const pageHTML = `<!doctype html><html><head><title>Demo</title></head><body><script>boot()</script><div><button class="btn">A</button><button class="btn">B</button></div><!-- tail --></body></html>`

const metadataJSON = `{
  "components": {
    "r": {"type": "host_root"},
    "app": {"type": "function", "name": "App", "code": "function App() { return <Layout><Button /></Layout>; }"},
    "layout": {"type": "function", "name": "Layout", "code": "({ children }) => <div className=\"layout\">{children}</div>"},
    "card": {"type": "memo", "name": "ui.Button"},
    "t": {"type": "text"}
  },
  "nodes": {
    "n0": {"componentId": "r", "parentId": null},
    "n1": {"componentId": "app", "parentId": "n0"},
    "n2": {"componentId": "layout", "parentId": "n1"},
    "n3": {"componentId": "card", "parentId": "n2"},
    "n4": {"componentId": "t", "parentId": "n3"}
  }
}`

func decodeSnapshot(t *testing.T, metadata string) *snapshot.Snapshot {
	t.Helper()
	doc := `{"page": {"url": "https://example.com/", "html": ` + jsonString(pageHTML) + `}`
	if metadata != "" {
		doc += `, "metadata": ` + metadata
	}
	doc += "}"
	snap, err := snapshot.Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return snap
}

func jsonString(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

func newEngine(t *testing.T, cfg *config.Config, out sink.Sink) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	eng, err := New(cfg, out, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	eng.RegisterCheck(checks.RenderDiff{})
	eng.RegisterCheck(checks.Syntax{})
	eng.RegisterRenderer(manifest.Renderer{})
	eng.RegisterRenderer(summary.New(cfg.Output.MaxSummaryChars))
	return eng
}

func TestReplicate(t *testing.T) {
	mem := sink.NewMemory()
	eng := newEngine(t, nil, mem)

	rep, err := eng.Replicate(context.Background(), decodeSnapshot(t, metadataJSON))
	if err != nil {
		t.Fatalf("Replicate: %v", err)
	}

	wantPaths := []string{
		"REPLICA.md",
		"replica.json",
		"src/app/page.tsx",
		"src/components/App.tsx",
		"src/components/Layout.tsx",
		"src/components/ui/Button.tsx",
		"src/components/ui/Button2.tsx",
	}
	if diff := cmp.Diff(wantPaths, mem.Paths()); diff != "" {
		t.Errorf("written paths (-want +got):\n%s", diff)
	}

	if rep.Meta.Title != "Demo" || rep.Meta.URL != "https://example.com/" {
		t.Errorf("meta = %+v", rep.Meta)
	}
	if len(rep.Findings) != 0 {
		t.Errorf("expected no findings, got %+v", rep.Findings)
	}
	if rep.Meta.FileCount != 5 || rep.Meta.ComponentCount != 3 {
		t.Errorf("counts = %d files, %d components", rep.Meta.FileCount, rep.Meta.ComponentCount)
	}
	if strings.Contains(rep.HTML, "boot()") || strings.Contains(rep.HTML, "tail") {
		t.Errorf("scripts and comments should be stripped: %s", rep.HTML)
	}

	// dependencies first
	var order []string
	for _, c := range rep.Components {
		order = append(order, c.Name)
	}
	if diff := cmp.Diff([]string{"Button2", "Layout", "App"}, order); diff != "" {
		t.Errorf("component order (-want +got):\n%s", diff)
	}

	layout, _ := mem.Get("src/components/Layout.tsx")
	wantLayout := `import Button2 from "@/components/ui/Button2";

const Layout = ({ children }) => <div className="layout">{children}</div>;

export default Layout;
`
	if diff := cmp.Diff(wantLayout, layout); diff != "" {
		t.Errorf("Layout.tsx (-want +got):\n%s", diff)
	}

	stub, _ := mem.Get("src/components/ui/Button2.tsx")
	if !strings.Contains(stub, "export default function Button2({ children })") {
		t.Errorf("expected stub, got:\n%s", stub)
	}

	f, ok := rep.File("src/components/App.tsx")
	if !ok || len(f.Hash) != 64 || f.Bytes != len(f.Content) {
		t.Errorf("App.tsx file = %+v", f)
	}
}

func TestReplicate_WithoutMetadata(t *testing.T) {
	mem := sink.NewMemory()
	eng := newEngine(t, nil, mem)

	rep, err := eng.Replicate(context.Background(), decodeSnapshot(t, ""))
	if err != nil {
		t.Fatalf("Replicate: %v", err)
	}
	if len(rep.Components) != 0 {
		t.Errorf("components = %+v", rep.Components)
	}
	page, ok := mem.Get("src/app/page.tsx")
	if !ok || !strings.Contains(page, `import Button from "@/components/ui/Button";`) {
		t.Errorf("page.tsx:\n%s", page)
	}
	if err := jsx.Check("page.tsx", page); err != nil {
		t.Error(err)
	}
}

func TestReplicate_InlineHandlers(t *testing.T) {
	mem := sink.NewMemory()
	eng := newEngine(t, nil, mem)

	snap := &snapshot.Snapshot{Page: snapshot.Page{
		URL:  "https://example.com/",
		HTML: `<body><div onclick="track()"><a href="#" onClick="go()">x</a><button class="btn" @click="open = true">A</button><button class="btn" onmouseover="hi()">B</button></div></body>`,
	}}
	rep, err := eng.Replicate(context.Background(), snap)
	if err != nil {
		t.Fatalf("Replicate: %v", err)
	}
	if len(rep.Findings) != 0 {
		t.Errorf("expected no findings, got %+v", rep.Findings)
	}
	if strings.Contains(rep.HTML, "track()") || strings.Contains(rep.HTML, "go()") || strings.Contains(rep.HTML, "hi()") {
		t.Errorf("inline handlers should be stripped from the reference: %s", rep.HTML)
	}
	page, _ := mem.Get("src/app/page.tsx")
	if !strings.Contains(page, `{...{"@click": "open = true"}}`) {
		t.Errorf("page.tsx should keep @click:\n%s", page)
	}
}

func TestReplicate_Concurrent(t *testing.T) {
	cfg := config.Default()
	cfg.Concurrency = 4
	mem := sink.NewMemory()

	rep, err := newEngine(t, cfg, mem).Replicate(context.Background(), decodeSnapshot(t, metadataJSON))
	if err != nil {
		t.Fatalf("Replicate: %v", err)
	}
	if len(rep.Components) != 3 || rep.Components[2].Name != "App" {
		t.Errorf("components = %+v", rep.Components)
	}
}

func TestReplicate_Cycle(t *testing.T) {
	meta := `{
  "components": {
    "r": {"type": "host_root"},
    "a": {"type": "function", "name": "Alpha"},
    "b": {"type": "function", "name": "Beta"}
  },
  "nodes": {
    "n0": {"componentId": "r", "parentId": null},
    "n1": {"componentId": "a", "parentId": "n0"},
    "n2": {"componentId": "b", "parentId": "n1"},
    "n3": {"componentId": "a", "parentId": "n2"}
  }
}`
	mem := sink.NewMemory()
	_, err := newEngine(t, nil, mem).Replicate(context.Background(), decodeSnapshot(t, meta))
	var cyc *fiber.CyclicDependencyError
	if !errors.As(err, &cyc) {
		t.Fatalf("expected CyclicDependencyError, got %v", err)
	}
	if len(mem.Paths()) != 0 {
		t.Errorf("nothing should be written on failure, got %v", mem.Paths())
	}
}

func TestReplicate_MalformedCode(t *testing.T) {
	meta := `{
  "components": {
    "r": {"type": "host_root"},
    "a": {"type": "function", "name": "Broken", "code": "function Broken( { return <div; }"}
  },
  "nodes": {
    "n0": {"componentId": "r", "parentId": null},
    "n1": {"componentId": "a", "parentId": "n0"}
  }
}`
	_, err := newEngine(t, nil, sink.NewMemory()).Replicate(context.Background(), decodeSnapshot(t, meta))
	var perr *jsx.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Unit != "src/components/Broken.tsx" {
		t.Errorf("Unit = %q", perr.Unit)
	}
}

type failingSink struct{}

func (failingSink) WriteText(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestReplicate_SinkFailure(t *testing.T) {
	eng := newEngine(t, nil, failingSink{})
	rep, err := eng.Replicate(context.Background(), decodeSnapshot(t, ""))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected sink error, got %v", err)
	}
	if rep == nil || eng.Replica() != rep {
		t.Error("the generated replica should still be returned and kept")
	}
}

func TestGetArtifact(t *testing.T) {
	eng := newEngine(t, nil, sink.NewMemory())
	if _, err := eng.GetArtifact(manifest.FileName); err == nil {
		t.Error("expected error before the first run")
	}
	if _, err := eng.Replicate(context.Background(), decodeSnapshot(t, "")); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{manifest.FileName, summary.FileName, "src/app/page.tsx"} {
		data, err := eng.GetArtifact(name)
		if err != nil || len(data) == 0 {
			t.Errorf("GetArtifact(%s) = %d bytes, %v", name, len(data), err)
		}
	}
	if _, err := eng.GetArtifact("missing.txt"); err == nil {
		t.Error("expected error for unknown artifact")
	}
}

func TestParsePage(t *testing.T) {
	page, err := parsePage(`<p onclick="x()">one</p><noscript><img src="x"></noscript><template><b>t</b></template><p>two<script>x</script></p>`)
	if err != nil {
		t.Fatal(err)
	}
	if page.html != "<p>one</p><p>two</p>" {
		t.Errorf("html = %q", page.html)
	}
	if len(page.body) != 2 {
		t.Errorf("body nodes = %d", len(page.body))
	}
}

func TestOpenSink(t *testing.T) {
	cfg := config.Default()
	if s, err := OpenSink(cfg); err != nil {
		t.Errorf("fs: %v", err)
	} else if fs, ok := s.(sink.FS); !ok || fs.Dir != "out" {
		t.Errorf("fs sink = %#v", s)
	}

	cfg.Output.Sink = "s3"
	if _, err := OpenSink(cfg); err == nil {
		t.Error("s3 without endpoint should fail")
	}

	cfg.Output.Sink = "ftp"
	if _, err := OpenSink(cfg); err == nil {
		t.Error("unknown sink should fail")
	}
}

func TestOpenNamer(t *testing.T) {
	cfg := config.Default()
	nm, err := OpenNamer(context.Background(), cfg)
	if err != nil || nm != nil {
		t.Errorf("none: %v, %v", nm, err)
	}
	cfg.Namer.Provider = "oracle"
	if _, err := OpenNamer(context.Background(), cfg); err == nil {
		t.Error("unknown namer should fail")
	}
}
