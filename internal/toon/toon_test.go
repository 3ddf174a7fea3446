package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/testgen/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/main.ts", "src/main.ts"},
		{"dotted name", "Foo.prototype", "Foo.prototype"},
		{"arrow no special", "(x) => x", "(x) => x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	r := &model.Report{
		RepoName: "myrepo",
		Root:     "myrepo",
		Files: []model.FileResult{
			{
				Path:     "src/date.ts",
				Language: "typescript",
				Candidates: []model.Candidate{
					{
						Name:       "parseDate",
						Path:       "src/date.ts",
						ExportKind: model.Named,
						References: []string{"const FORMAT = 'YYYY'"},
					},
				},
			},
			{
				Path:     "src/run.js",
				Language: "javascript",
				Candidates: []model.Candidate{
					{
						Name:       "run",
						Path:       "src/run.js",
						ExportKind: model.Default,
						References: []string{},
					},
				},
			},
		},
	}

	got := Encode(r)

	lines := strings.Split(got, "\n")
	want := []string{
		"repo: myrepo",
		"root: myrepo",
		"files[2]{path,language,candidates}:",
		"  src/date.ts,typescript,1",
		"  src/run.js,javascript,1",
		"candidates[2]{file,name,export,references}:",
		"  src/date.ts,parseDate,named,1",
		"  src/run.js,run,default,0",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	r := &model.Report{
		RepoName: "empty",
		Root:     "empty",
	}

	got := Encode(r)
	if !strings.Contains(got, "files[0]{path,language,candidates}:") {
		t.Errorf("expected empty files section, got:\n%s", got)
	}
	if !strings.Contains(got, "candidates[0]{file,name,export,references}:") {
		t.Errorf("expected empty candidates section, got:\n%s", got)
	}
}

func TestEncodeCandidate(t *testing.T) {
	t.Parallel()

	c := &model.Candidate{
		Name:       "helper",
		Code:       "export function helper(x) {\n  return x + LIMIT;\n}",
		Path:       "lib/util.js",
		ExportKind: model.Named,
		References: []string{"const LIMIT = 10"},
	}

	got := EncodeCandidate(c)
	want := strings.Join([]string{
		"name: helper",
		"file: lib/util.js",
		"export: named",
		`code: "export function helper(x) {\n  return x + LIMIT;\n}"`,
		"references[1]:",
		"  const LIMIT = 10",
	}, "\n")
	if got != want {
		t.Errorf("EncodeCandidate:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeCandidateNoReferences(t *testing.T) {
	t.Parallel()

	got := EncodeCandidate(&model.Candidate{Name: "a", Path: "a.js", ExportKind: model.Default})
	if !strings.HasSuffix(got, "references[0]:") {
		t.Errorf("expected empty references list, got:\n%s", got)
	}
}
