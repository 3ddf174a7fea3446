package discover

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func paths(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = filepath.ToSlash(e.Path)
	}
	return out
}

func TestDiscoverSourceFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "index.ts", "export const a = 1;")
	writeFile(t, dir, "lib/util.js", "export function helper() {}")
	writeFile(t, dir, "lib/view.tsx", "export const View = () => null;")
	// Unsupported file should be ignored
	writeFile(t, dir, "readme.md", "hello")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.ts", "secret")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	want := []string{"index.ts", "lib/util.js", "lib/view.tsx"}
	if got := paths(entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}

	langs := []string{"typescript", "javascript", "tsx"}
	for i, e := range entries {
		if e.Language != langs[i] {
			t.Errorf("entry %q: language = %q, want %q", e.Path, e.Language, langs[i])
		}
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.ts", "")
	writeFile(t, dir, "node_modules/pkg/index.js", "")
	writeFile(t, dir, "dist/main.js", "")
	writeFile(t, dir, ".cache/secret.ts", "")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if got := paths(entries); !reflect.DeepEqual(got, []string{"main.ts"}) {
		t.Errorf("paths = %v, want [main.ts]", got)
	}
}

func TestDiscoverDefaultExcludes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "src/filter.ts", "")
	writeFile(t, dir, "src/__test__/filter.spec.ts", "")
	writeFile(t, dir, "src/form.test.js", "")
	writeFile(t, dir, "src/types.d.ts", "")
	writeFile(t, dir, "src/test/fixtures.ts", "")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if got := paths(entries); !reflect.DeepEqual(got, []string{"src/filter.ts", "src/test/fixtures.ts"}) {
		t.Errorf("paths = %v, want [src/filter.ts src/test/fixtures.ts]", got)
	}

	entries, err = Files(dir, Options{KeepTests: true})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("KeepTests: expected 5 entries, got %v", paths(entries))
	}
}

func TestDiscoverIncludeExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "utils.ts", "")
	writeFile(t, dir, "src/utils/a.ts", "")
	writeFile(t, dir, "src/utils/legacy/b.js", "")
	writeFile(t, dir, "src/app.ts", "")

	entries, err := Files(dir, Options{
		Include: []string{"**/utils/**"},
		Exclude: []string{"**/legacy/**"},
	})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if got := paths(entries); !reflect.DeepEqual(got, []string{"src/utils/a.ts"}) {
		t.Errorf("paths = %v, want [src/utils/a.ts]", got)
	}

	// A leading **/ also matches files at the root.
	entries, err = Files(dir, Options{Include: []string{"**/utils.ts"}})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if got := paths(entries); !reflect.DeepEqual(got, []string{"utils.ts"}) {
		t.Errorf("paths = %v, want [utils.ts]", got)
	}
}

func TestDiscoverBadPattern(t *testing.T) {
	t.Parallel()

	if _, err := Files(t.TempDir(), Options{Include: []string{"src/[a-"}}); err == nil {
		t.Error("expected error for malformed glob")
	}
}

func TestDiscoverLanguageFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.ts", "")
	writeFile(t, dir, "lib.js", "")

	entries, err := Files(dir, Options{Languages: []string{"typescript"}})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if got := paths(entries); !reflect.DeepEqual(got, []string{"main.ts"}) {
		t.Fatalf("paths = %v, want [main.ts]", got)
	}

	entries, err = Files(dir, Options{Languages: []string{"tsx"}})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries for tsx filter, got %d", len(entries))
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, ".gitignore", "generated/\n")
	writeFile(t, dir, "generated/api.ts", "")
	writeFile(t, dir, "main.ts", "")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if got := paths(entries); !reflect.DeepEqual(got, []string{"main.ts"}) {
		t.Errorf("paths = %v, want [main.ts]", got)
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.ts", "")

	// Create symlink
	err := os.Symlink(filepath.Join(dir, "real.ts"), filepath.Join(dir, "link.ts"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry (no symlink), got %d", len(entries))
	}
	if entries[0].Path != "real.ts" {
		t.Errorf("expected real.ts, got %q", entries[0].Path)
	}
}

func TestIsTestFile(t *testing.T) {
	t.Parallel()
	cases := []struct {
		path string
		want bool
	}{
		// Test directory components
		{"src/__test__/filter.spec.ts", true},
		{"src/__tests__/foo.js", true},
		// Plain test/ directories are scanned.
		{"src/test/helpers.ts", false},
		{"tests/setup.ts", false},
		// Filename patterns
		{"foo.test.js", true},
		{"foo.spec.ts", true},
		{"src/utils/index.spec.mjs", true},
		// Production files
		{"src/utils/index.ts", false},
		{"src/testing.ts", false},
		{"src/latest/index.ts", false},
		{"src/spec.ts", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			got := IsTestFile(tc.path)
			if got != tc.want {
				t.Errorf("IsTestFile(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestIsDeclarationFile(t *testing.T) {
	t.Parallel()

	if !IsDeclarationFile("types/index.d.ts") {
		t.Error("index.d.ts should be a declaration file")
	}
	if IsDeclarationFile("src/d.ts") {
		t.Error("d.ts should not be a declaration file")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
