package naming

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRawName(t *testing.T) {
	tests := []struct {
		entry Entry
		want  string
	}{
		{Entry{ID: "c1", Name: "Header"}, "Header"},
		{Entry{ID: "c1", Name: "Nav"}, "Nav"},
		{Entry{ID: "c12", Name: "e"}, "ComponentC12"},
		{Entry{ID: "fiber-000123456", Name: ""}, "Component123456"},
		{Entry{ID: "x", Name: "  ab "}, "ComponentX"},
	}
	for _, tt := range tests {
		if got := RawName(tt.entry); got != tt.want {
			t.Errorf("RawName(%+v) = %q, want %q", tt.entry, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		raw  string
		want NamePath
	}{
		{"Header", NamePath{Name: "Header"}},
		{"Dialog.Content", NamePath{Dir: "dialog", Name: "Content"}},
		{"RadixUI.NavMenu.trigger-item", NamePath{Dir: "radix-ui/nav-menu", Name: "TriggerItem"}},
		{"my_button", NamePath{Name: "MyButton"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Split(tt.raw); got != tt.want {
				t.Errorf("Split(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAssign_SuffixesSharedNamesPerDirectory(t *testing.T) {
	entries := []Entry{
		{ID: "a", Name: "Button"},
		{ID: "b", Name: "Card"},
		{ID: "c", Name: "Button"},
		{ID: "d", Name: "Dialog.Button"},
		{ID: "e", Name: "button"},
		{ID: "f", Name: "Dialog.Title"},
	}
	got := Assign(entries)
	want := map[string]NamePath{
		"a": {Name: "Button"},
		"b": {Name: "Card"},
		"c": {Name: "Button2"},
		"d": {Dir: "dialog", Name: "Button"},
		"e": {Name: "Button3"},
		"f": {Dir: "dialog", Name: "Title"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assign mismatch (-want +got):\n%s", diff)
	}
}

func TestAssign_NeverCollides(t *testing.T) {
	entries := []Entry{
		{ID: "1", Name: "Button"},
		{ID: "2", Name: "Button"},
		{ID: "3", Name: "Button2"},
		{ID: "4", Name: "x"},
		{ID: "5", Name: "Item"},
		{ID: "6", Name: "item"},
		{ID: "7", Name: "Item2"},
	}
	got := Assign(entries)
	if len(got) != len(entries) {
		t.Fatalf("got %d names, want %d", len(got), len(entries))
	}
	seen := make(map[NamePath]string)
	for id, p := range got {
		if other, dup := seen[p]; dup {
			t.Errorf("%s and %s both named %s", id, other, p.Path())
		}
		seen[p] = id
	}
	if got["3"].Name != "Button2" {
		t.Errorf("declared Button2 should keep its name, got %s", got["3"].Name)
	}
}

func TestAssign_SkipsDeclaredSuffix(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    map[string]NamePath
	}{
		{
			name:    "declared first",
			entries: []Entry{{ID: "a", Name: "Button2"}, {ID: "b", Name: "Button"}, {ID: "c", Name: "Button"}},
			want:    map[string]NamePath{"a": {Name: "Button2"}, "b": {Name: "Button"}, "c": {Name: "Button3"}},
		},
		{
			name:    "declared last",
			entries: []Entry{{ID: "a", Name: "Button"}, {ID: "b", Name: "Button"}, {ID: "c", Name: "Button2"}},
			want:    map[string]NamePath{"a": {Name: "Button"}, "b": {Name: "Button3"}, "c": {Name: "Button2"}},
		},
		{
			name:    "other directory",
			entries: []Entry{{ID: "a", Name: "Form.Button2"}, {ID: "b", Name: "Button"}, {ID: "c", Name: "Button"}},
			want:    map[string]NamePath{"a": {Dir: "form", Name: "Button2"}, "b": {Name: "Button"}, "c": {Name: "Button2"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Assign(tt.entries)); diff != "" {
				t.Errorf("Assign mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssign_Deterministic(t *testing.T) {
	var entries []Entry
	for i := 0; i < 20; i++ {
		entries = append(entries, Entry{ID: fmt.Sprintf("id%d", i), Name: []string{"Card", "Nav.Link", "List"}[i%3]})
	}
	first := Assign(entries)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, Assign(entries)); diff != "" {
			t.Fatalf("non-deterministic result:\n%s", diff)
		}
	}
}

func TestAssignFlat(t *testing.T) {
	entries := []Entry{
		{ID: "a", Name: "Button"},
		{ID: "b", Name: "Card"},
		{ID: "c", Name: "Button"},
		{ID: "d", Name: "Modal.Button"},
	}
	got := AssignFlat(entries)
	want := map[string]string{
		"a": "Button1",
		"b": "Card",
		"c": "Button2",
		"d": "Button3",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AssignFlat mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignFlat_SkipsDeclaredSuffixes(t *testing.T) {
	got := AssignFlat([]Entry{
		{ID: "a", Name: "Tab"},
		{ID: "b", Name: "Tab1"},
		{ID: "c", Name: "Tab"},
	})
	if got["b"] != "Tab1" {
		t.Errorf("b = %s, want Tab1", got["b"])
	}
	if got["a"] == got["b"] || got["c"] == got["b"] || got["a"] == got["c"] {
		t.Errorf("collision in %v", got)
	}
}

func TestCaseHelpers(t *testing.T) {
	pascal := map[string]string{
		"nav-menu":    "NavMenu",
		"myButton":    "MyButton",
		"":            "Component",
		"123":         "Component123",
		"hello world": "HelloWorld",
	}
	for in, want := range pascal {
		if got := PascalCase(in); got != want {
			t.Errorf("PascalCase(%q) = %q, want %q", in, got, want)
		}
	}

	kebab := map[string]string{
		"NavMenu":    "nav-menu",
		"HTMLParser": "html-parser",
		"nav_menu":   "nav-menu",
		"Tab2Panel":  "tab2-panel",
		"dialog":     "dialog",
	}
	for in, want := range kebab {
		if got := KebabCase(in); got != want {
			t.Errorf("KebabCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegistry_Claim(t *testing.T) {
	r := NewRegistry()
	got := []string{r.Claim("Button"), r.Claim("Button"), r.Claim("Button")}
	if diff := cmp.Diff([]string{"Button", "Button2", "Button3"}, got); diff != "" {
		t.Errorf("Claim mismatch (-want +got):\n%s", diff)
	}
	if !r.Reserve("Icon") || r.Reserve("Icon") {
		t.Error("Reserve should succeed once")
	}
	if r.Claim("Icon") != "Icon2" {
		t.Error("Claim after Reserve should suffix")
	}
}
