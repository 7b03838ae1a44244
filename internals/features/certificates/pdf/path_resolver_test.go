package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveStoredConventions(t *testing.T) {
	base := t.TempDir()
	uploads := filepath.Join(base, "uploads")
	r := Resolver{BaseDir: base, UploadsDir: uploads}

	absolute := filepath.Join(base, "somewhere", "bg.png")
	writeFile(t, absolute)
	writeFile(t, filepath.Join(uploads, "t1.png"))
	writeFile(t, filepath.Join(uploads, "signatures", "sig.png"))

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"absolute unchanged", absolute, absolute},
		{"absolute with query string", absolute + "?v=2", absolute},
		{"app-root relative", "uploads/t1.png", filepath.Join(base, "uploads", "t1.png")},
		{"leading slash", "/uploads/t1.png", filepath.Join(base, "uploads", "t1.png")},
		{"dot slash", "./uploads/t1.png", filepath.Join(base, "uploads", "t1.png")},
		{"bare filename", "t1.png", filepath.Join(uploads, "t1.png")},
		{"uploads subfolder", "signatures/sig.png", filepath.Join(uploads, "signatures", "sig.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.ref)
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	base := t.TempDir()
	r := Resolver{BaseDir: base, UploadsDir: filepath.Join(base, "uploads")}
	p := filepath.Join(base, "bg.png")
	writeFile(t, p)

	once := r.Resolve(p)
	twice := r.Resolve(once)
	if once != p || twice != p {
		t.Errorf("resolution not idempotent: %q -> %q -> %q", p, once, twice)
	}
}

func TestResolveMissingReturnsCandidate(t *testing.T) {
	base := t.TempDir()
	r := Resolver{BaseDir: base, UploadsDir: filepath.Join(base, "uploads")}

	got := r.Resolve("uploads/nope.png")
	want := filepath.Join(base, "uploads", "nope.png")
	if got != want {
		t.Errorf("Resolve = %q, want best-effort candidate %q", got, want)
	}
	if FileExists(got) {
		t.Error("candidate should not exist")
	}
}
