package lang

import (
	"testing"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".js", "javascript"},
		{".mjs", "javascript"},
		{".ts", "typescript"},
		{".TS", "typescript"},
		{".tsx", "tsx"},
		{".py", ""},
		{".go", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestForPath(t *testing.T) {
	t.Parallel()

	if l := ForPath("src/utils/index.ts"); l == nil || l.Name != "typescript" {
		t.Errorf("ForPath(index.ts) = %v, want typescript", l)
	}
	if l := ForPath("lib/view.TSX"); l == nil || l.Name != "tsx" {
		t.Errorf("ForPath(view.TSX) = %v, want tsx", l)
	}
	if l := ForPath("src/v1.2/Makefile"); l != nil {
		t.Errorf("ForPath(v1.2/Makefile) = %v, want nil", l)
	}
	if l := ForPath("Makefile"); l != nil {
		t.Errorf("ForPath(Makefile) = %v, want nil", l)
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"javascript", "typescript", "tsx"} {
		l, ok := Languages[name]
		if !ok {
			t.Fatalf("%s language not registered", name)
		}
		if l.lang == nil {
			t.Errorf("%s grammar is nil", name)
		}
	}
	if got := Names(); len(got) != 3 || got[0] != "javascript" {
		t.Errorf("Names() = %v", got)
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	p := Languages["typescript"].NewParser()
	if p == nil {
		t.Fatal("NewParser returned nil")
	}
}
