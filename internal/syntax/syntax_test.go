package syntax

import (
	"context"
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/testgen/internal/lang"
)

func parse(t *testing.T, source string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), lang.Languages["typescript"], []byte(source))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	t.Cleanup(tree.Close)
	return tree
}

func TestParseText(t *testing.T) {
	t.Parallel()
	tree := parse(t, "const a = 1;\nfunction b() {}\n")

	root := tree.Root()
	if root.Type() != "program" {
		t.Fatalf("root type = %q, want program", root.Type())
	}
	if got := tree.Text(root.NamedChild(1)); got != "function b() {}" {
		t.Errorf("Text = %q", got)
	}
	if got := tree.Slice(0, 5); got != "const" {
		t.Errorf("Slice = %q", got)
	}
}

func TestParseSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := Parse(context.Background(), lang.Languages["typescript"], []byte("function (( {"))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("err = %v, want ErrSyntax", err)
	}
}

func TestLeadingComments(t *testing.T) {
	t.Parallel()
	source := `const x = 1; // trailing
/** doc */
// second
export function f() {}
`
	tree := parse(t, source)
	root := tree.Root()
	var exp = root.NamedChild(int(root.NamedChildCount()) - 1)
	if exp.Type() != "export_statement" {
		t.Fatalf("last child = %q", exp.Type())
	}

	comments := tree.LeadingComments(exp)
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if got := tree.Text(comments[0]); got != "/** doc */" {
		t.Errorf("comment 0 = %q", got)
	}
	if got := tree.Text(comments[1]); got != "// second" {
		t.Errorf("comment 1 = %q", got)
	}
	if got := tree.Slice(tree.TriviaStart(exp), exp.EndByte()); got != "/** doc */\n// second\nexport function f() {}" {
		t.Errorf("trivia slice = %q", got)
	}
}

func TestLeadingCommentsAfterComma(t *testing.T) {
	t.Parallel()
	tree := parse(t, "const o = {\n  a, // trails a\n  b, /* leads c */ c,\n};\n")

	obj := tree.Root().NamedChild(0).NamedChild(0).ChildByFieldName("value")
	if obj == nil || obj.Type() != "object" {
		t.Fatalf("expected object literal")
	}
	var b, c *sitter.Node
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		child := obj.NamedChild(i)
		switch tree.Text(child) {
		case "b":
			b = child
		case "c":
			c = child
		}
	}
	if b == nil || c == nil {
		t.Fatal("members b and c not found")
	}

	if got := tree.LeadingComments(b); len(got) != 0 {
		t.Errorf("comment trailing a should not lead b, got %q", tree.Text(got[0]))
	}
	got := tree.LeadingComments(c)
	if len(got) != 1 || tree.Text(got[0]) != "/* leads c */" {
		t.Errorf("expected inline block comment to lead c, got %d comments", len(got))
	}
}

func TestLeadingCommentsNone(t *testing.T) {
	t.Parallel()
	tree := parse(t, "function f() {}\n")

	fn := tree.Root().NamedChild(0)
	if got := tree.LeadingComments(fn); len(got) != 0 {
		t.Errorf("expected no comments, got %d", len(got))
	}
	if tree.TriviaStart(fn) != fn.StartByte() {
		t.Error("TriviaStart should equal node start")
	}
}
