// Package syntax wraps a tree-sitter parse tree together with the source it
// was built from, exposing offset-based text extraction and comment trivia.
package syntax

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/testgen/internal/lang"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("source contains syntax errors")

// Tree is a parsed source file. It must be closed after use.
type Tree struct {
	Source []byte
	tree   *sitter.Tree
}

// Parse parses source with the grammar of l. A tree with error nodes is
// rejected with ErrSyntax; the engine only works on clean trees.
func Parse(ctx context.Context, l *lang.Language, source []byte) (*Tree, error) {
	parser := l.NewParser()
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, errors.New("tree-sitter returned nil root node")
	}
	if root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("%w (%s)", ErrSyntax, firstErrorPosition(root))
	}
	return &Tree{Source: source, tree: tree}, nil
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// Root returns the root (program) node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Text returns the source text of node.
func (t *Tree) Text(node *sitter.Node) string {
	return string(t.Source[node.StartByte():node.EndByte()])
}

// Slice returns the source text between two byte offsets.
func (t *Tree) Slice(start, end uint32) string {
	return string(t.Source[start:end])
}

// LeadingComments returns the comments directly attached before node, in
// source order. A comment that starts on the line where the preceding
// token ends, and does not share a line with what follows it, trails that
// token and stops the scan.
func (t *Tree) LeadingComments(node *sitter.Node) []*sitter.Node {
	var comments []*sitter.Node
	cur := node
	for {
		prev := cur.PrevSibling()
		if prev == nil || prev.Type() != "comment" {
			break
		}
		if trailing(prev, cur) {
			break
		}
		comments = append(comments, prev)
		cur = prev
	}
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}
	return comments
}

// trailing reports whether comment belongs to the token before it rather
// than to next.
func trailing(comment, next *sitter.Node) bool {
	before := comment.PrevSibling()
	for before != nil && before.Type() == "comment" {
		before = before.PrevSibling()
	}
	if before == nil || before.EndPoint().Row != comment.StartPoint().Row {
		return false
	}
	return comment.EndPoint().Row != next.StartPoint().Row
}

// TriviaStart returns the offset where node's leading comments begin, or
// node's own start when it has none.
func (t *Tree) TriviaStart(node *sitter.Node) uint32 {
	if comments := t.LeadingComments(node); len(comments) > 0 {
		return comments[0].StartByte()
	}
	return node.StartByte()
}

func firstErrorPosition(node *sitter.Node) string {
	if node.Type() == "ERROR" || node.IsMissing() {
		p := node.StartPoint()
		return fmt.Sprintf("line %d, column %d", p.Row+1, p.Column+1)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() {
			return firstErrorPosition(child)
		}
	}
	p := node.StartPoint()
	return fmt.Sprintf("line %d, column %d", p.Row+1, p.Column+1)
}
