package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"src/app/page.tsx", true},
		{"replica.json", true},
		{"", false},
		{"/etc/passwd", false},
		{"../x.tsx", false},
		{"src/../../x", false},
		{"src//a.tsx", false},
		{"./a.tsx", false},
		{`src\a.tsx`, false},
	}
	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if (err == nil) != tt.ok {
			t.Errorf("ValidatePath(%q) = %v, want ok=%v", tt.path, err, tt.ok)
		}
	}
}

func TestFS_WriteText(t *testing.T) {
	dir := t.TempDir()
	s := FS{Dir: dir}
	if err := s.WriteText(context.Background(), "src/components/ui/Button.tsx", "export default 1;\n"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "src", "components", "ui", "Button.tsx"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "export default 1;\n" {
		t.Errorf("content = %q", data)
	}
	if err := s.WriteText(context.Background(), "../escape.tsx", "x"); err == nil {
		t.Error("expected error for escaping path")
	}
}

func TestFS_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (FS{Dir: t.TempDir()}).WriteText(ctx, "a.tsx", "x"); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, p := range []string{"src/b.tsx", "src/a.tsx", "src/b.tsx"} {
		if err := m.WriteText(ctx, p, "// "+p); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]string{"src/a.tsx", "src/b.tsx"}, m.Paths()); diff != "" {
		t.Errorf("Paths (-want +got):\n%s", diff)
	}
	if c, ok := m.Get("src/a.tsx"); !ok || c != "// src/a.tsx" {
		t.Errorf("Get = %q, %v", c, ok)
	}
	if err := m.WriteText(ctx, "/abs", ""); err == nil {
		t.Error("expected error for absolute path")
	}
}

func TestNewS3_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
	}{
		{"no endpoint", S3Config{AccessKey: "a", SecretKey: "b", Bucket: "c"}},
		{"no keys", S3Config{Endpoint: "localhost:9000", Bucket: "c"}},
		{"no bucket", S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewS3(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}

	s, err := NewS3(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "out", Prefix: "/runs/42/"})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if s.prefix != "runs/42" {
		t.Errorf("prefix = %q", s.prefix)
	}
}

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("runs/1", "src/app/page.tsx"); got != "runs/1/src/app/page.tsx" {
		t.Errorf("ObjectKey = %q", got)
	}
	if got := ObjectKey("", "/replica.json"); got != "replica.json" {
		t.Errorf("ObjectKey = %q", got)
	}
}
