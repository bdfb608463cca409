package rewrite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dejo1307/pagerepl/internal/canon"
	"github.com/dejo1307/pagerepl/internal/jsx"
	"github.com/dejo1307/pagerepl/internal/namer"
)

func rewritePage(t *testing.T, src string, nm namer.Namer, passes ...string) (*Context, *Unit) {
	t.Helper()
	nodes, err := canon.ParseFragment(src)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	rc := NewContext(DefaultOptions(), nm)
	page, err := New(DefaultRegistry(), passes).Rewrite(context.Background(), rc, jsx.FromHTML(nodes))
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	return rc, page
}

func unitsOfKind(rc *Context, kind UnitKind) []*Unit {
	var out []*Unit
	for _, u := range rc.Units() {
		if u.Kind == kind {
			out = append(out, u)
		}
	}
	return out
}

func TestRewrite_SharedButton(t *testing.T) {
	rc, page := rewritePage(t, `<div><button class="btn">A</button><button class="btn">B</button></div>`, nil)

	buttons := unitsOfKind(rc, KindElement)
	if len(buttons) != 1 {
		t.Fatalf("got %d element units, want 1", len(buttons))
	}
	btn := buttons[0]
	if btn.Name != "Button" || btn.Path != "src/components/ui/Button.tsx" || btn.Uses != 2 {
		t.Errorf("unexpected unit %+v", btn)
	}

	wantPage := `import Button from "@/components/ui/Button";

export default () => (
  <>
    <div>
      <Button>A</Button>
      <Button>B</Button>
    </div>
  </>
);
`
	if diff := cmp.Diff(wantPage, page.Source); diff != "" {
		t.Errorf("page source (-want +got):\n%s", diff)
	}

	wantButton := `export default ({ children, ...props }) => (
  <button className="btn" {...props}>
    {children}
  </button>
);
`
	if diff := cmp.Diff(wantButton, btn.Source); diff != "" {
		t.Errorf("button source (-want +got):\n%s", diff)
	}
}

func TestRewrite_UnifiesBySortedClassSet(t *testing.T) {
	rc, page := rewritePage(t, `<p>
		<button class="px-2 py-1 bg-blue-500" type="submit">Save</button>
		<button class="bg-blue-500  px-2 py-1 px-2" disabled>Cancel</button>
		<button class="other">Alone</button>
	</p>`, nil)

	buttons := unitsOfKind(rc, KindElement)
	if len(buttons) != 1 {
		t.Fatalf("got %d element units, want 1", len(buttons))
	}
	if buttons[0].Key != "button|bg-blue-500 px-2 py-1" {
		t.Errorf("signature = %q", buttons[0].Key)
	}
	for _, want := range []string{`<Button type="submit">Save</Button>`, `<Button disabled>Cancel</Button>`, `<button className="other">Alone</button>`} {
		if !strings.Contains(page.Source, want) {
			t.Errorf("page source missing %s:\n%s", want, page.Source)
		}
	}
}

func TestRewrite_IconsDeduplicateByContent(t *testing.T) {
	rc, page := rewritePage(t, `<div>
		<svg viewBox="0 0 10 10" fill="none"><path d="M0 0h10"/></svg>
		<span><svg fill="none"   viewBox="0 0 10 10"><path d="M0 0h10"></path><!-- same --></svg></span>
		<svg viewBox="0 0 10 10"><circle r="4"/></svg>
	</div>`, nil)

	icons := unitsOfKind(rc, KindIcon)
	if len(icons) != 2 {
		t.Fatalf("got %d icons, want 2", len(icons))
	}
	if icons[0].Uses != 2 || icons[1].Uses != 1 {
		t.Errorf("uses = %d, %d; want 2, 1", icons[0].Uses, icons[1].Uses)
	}
	if icons[0].Name == icons[1].Name || icons[0].Path == icons[1].Path {
		t.Errorf("distinct icons collide: %s / %s", icons[0].Path, icons[1].Path)
	}
	if !strings.HasPrefix(icons[0].Name, "Icon") || len(icons[0].Name) != len("Icon")+8 {
		t.Errorf("icon name = %s", icons[0].Name)
	}
	if n := strings.Count(page.Source, "<"+icons[0].Name+" />"); n != 2 {
		t.Errorf("page references first icon %d times, want 2", n)
	}
	if strings.Count(page.Source, "import "+icons[0].Name) != 1 {
		t.Errorf("import not deduplicated:\n%s", page.Source)
	}
}

func TestRewrite_LandmarksInnerFirst(t *testing.T) {
	rc, page := rewritePage(t, `<main><section><h1>Hi</h1></section><section><h2>Again</h2></section></main><header>top</header>`, nil)

	var got []string
	for _, u := range unitsOfKind(rc, KindLandmark) {
		got = append(got, u.Path)
	}
	want := []string{
		"src/components/layout/section/Section.tsx",
		"src/components/layout/section/Section2.tsx",
		"src/components/layout/main/Main.tsx",
		"src/components/layout/header/Header.tsx",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("landmark units (-want +got):\n%s", diff)
	}

	main, _ := rc.Unit("@/components/layout/main/Main")
	for _, imp := range []string{`import Section from "@/components/layout/section/Section";`, `import Section2 from "@/components/layout/section/Section2";`} {
		if !strings.Contains(main.Source, imp) {
			t.Errorf("Main missing %s:\n%s", imp, main.Source)
		}
	}
	if strings.Contains(page.Source, "Section") {
		t.Errorf("page should only import top-level landmarks:\n%s", page.Source)
	}
}

// The rewritten tree must render back to markup equivalent to the input.
func TestRewrite_RendersEquivalentMarkup(t *testing.T) {
	src := `<header class="top"><nav><a href="/">Home</a> <button class="btn" type="button">Menu</button></nav></header>
<main>
  <section>
    <h1>Title</h1>
    <p>Some <b>bold</b> text &amp; more</p>
    <button class="btn" type="submit"><svg viewBox="0 0 10 10"><path d="M0 0h10"/></svg>Go</button>
  </section>
  <svg viewBox="0 0 10 10"><path d="M0 0h10"></path></svg>
</main>
<footer style="margin-top: 0px; color: gray"><p>© 2024</p></footer>`

	rc, page := rewritePage(t, src, nil)
	if n := len(unitsOfKind(rc, KindIcon)); n != 1 {
		t.Errorf("icons = %d, want 1", n)
	}
	if n := len(unitsOfKind(rc, KindLandmark)); n != 5 {
		t.Errorf("landmarks = %d, want 5", n)
	}

	out, err := jsx.RenderHTML(page.Root, rc.Lookup)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	report, err := canon.Diff(src, out)
	if err != nil {
		t.Fatal(err)
	}
	if report != nil {
		t.Errorf("rendered page differs:\n%s\n%s", report, out)
	}

	for _, u := range rc.Units() {
		if err := jsx.Check(u.Path, u.Source); err != nil {
			t.Errorf("%s does not parse: %v", u.Path, err)
		}
	}
}

func TestRewrite_NonJSXAttributeNames(t *testing.T) {
	src := `<div><button class="btn" @click="go()">A</button><button class="btn">B</button></div>`
	rc, page := rewritePage(t, src, nil)

	if n := len(unitsOfKind(rc, KindElement)); n != 1 {
		t.Fatalf("element units = %d, want 1", n)
	}
	if !strings.Contains(page.Source, `<Button {...{"@click": "go()"}}>`) {
		t.Errorf("page should pass @click through a spread:\n%s", page.Source)
	}
	for _, u := range rc.Units() {
		if err := jsx.Check(u.Path, u.Source); err != nil {
			t.Errorf("%s does not parse: %v", u.Path, err)
		}
	}

	out, err := jsx.RenderHTML(page.Root, rc.Lookup)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	report, err := canon.Diff(src, out)
	if err != nil {
		t.Fatal(err)
	}
	if report != nil {
		t.Errorf("rendered page differs:\n%s\n%s", report, out)
	}
}

type recordingNamer struct {
	batches [][]namer.Signature
	names   map[string]string
	err     error
}

func (r *recordingNamer) Name(_ context.Context, sigs []namer.Signature) (map[string]string, error) {
	r.batches = append(r.batches, sigs)
	return r.names, r.err
}

func TestRewrite_NamerIsBatched(t *testing.T) {
	nm := &recordingNamer{names: map[string]string{
		"button|btn":   "primary button",
		"a|link":       "!!!",
		"button|ghost": "Card",
	}}
	opts := DefaultOptions()
	opts.UnifyTags = []string{"button", "a"}
	rc := NewContext(opts, nm)
	nodes, _ := canon.ParseFragment(`<button class="btn">1</button><button class="btn">2</button>
		<a class="link" href="/a">a</a><a class="link" href="/b">b</a>
		<button class="ghost">x</button><button class="ghost">y</button>`)
	if _, err := New(DefaultRegistry(), []string{"buttons"}).Rewrite(context.Background(), rc, jsx.FromHTML(nodes)); err != nil {
		t.Fatal(err)
	}

	if len(nm.batches) != 1 || len(nm.batches[0]) != 3 {
		t.Fatalf("namer batches = %v, want one batch of 3", nm.batches)
	}
	var names []string
	for _, u := range unitsOfKind(rc, KindElement) {
		names = append(names, u.Name)
	}
	if diff := cmp.Diff([]string{"PrimaryButton", "A", "Card"}, names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}

func TestRewrite_NamerFailureFallsBack(t *testing.T) {
	nm := &recordingNamer{err: errors.New("unavailable")}
	rc, _ := rewritePage(t, `<button class="a">1</button><button class="a">2</button><button class="b">3</button><button class="b">4</button>`, nm)

	var names []string
	for _, u := range unitsOfKind(rc, KindElement) {
		names = append(names, u.Name)
	}
	if diff := cmp.Diff([]string{"Component1", "Component2"}, names); diff != "" {
		t.Errorf("fallback names (-want +got):\n%s", diff)
	}
}

func TestRewrite_NamesAreUniqueAcrossUnits(t *testing.T) {
	nm := namer.Static{"button|x": "Header"}
	rc, _ := rewritePage(t, `<header>h</header><button class="x">1</button><button class="x">2</button>`, nm)

	seen := make(map[string]bool)
	for _, u := range rc.Units() {
		if seen[u.Name] {
			t.Errorf("identifier %s used twice", u.Name)
		}
		seen[u.Name] = true
	}
}

func TestRewrite_UnknownPass(t *testing.T) {
	rc := NewContext(DefaultOptions(), nil)
	_, err := New(DefaultRegistry(), []string{"icons", "nope"}).Rewrite(context.Background(), rc, nil)
	if err == nil || !strings.Contains(err.Error(), `"nope"`) {
		t.Errorf("err = %v, want unknown pass", err)
	}
}

func TestResolve_Errors(t *testing.T) {
	rc := NewContext(DefaultOptions(), nil)

	u := &Unit{Path: "src/app/page.tsx", Root: &jsx.Element{Tag: "div", Children: []jsx.Node{
		&jsx.Ref{Source: "<Button />", Imports: []jsx.Import{{Module: "@/x", Default: "Button"}}},
	}}}
	var serr *StructuralError
	if err := rc.Resolve(u); !errors.As(err, &serr) {
		t.Errorf("missing module: err = %v, want *StructuralError", err)
	}

	u.Root = &jsx.Element{Tag: "div", Children: []jsx.Node{
		&jsx.Ref{Source: "<Button", Module: "@/x", Imports: []jsx.Import{{Module: "@/x", Default: "Button"}}},
	}}
	var perr *jsx.ParseError
	if err := rc.Resolve(u); !errors.As(err, &perr) {
		t.Errorf("bad source: err = %v, want *jsx.ParseError", err)
	}
}
