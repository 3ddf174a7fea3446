// Package extract discovers the declarations of a JavaScript or TypeScript
// module that are eligible for example generation, together with the source
// of the module-level declarations each one uses directly.
//
// Discovery is a single forward walk over the module's top-level statements.
// A default export can only resolve names declared before it in the file.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/testgen/internal/lang"
	"github.com/phobologic/testgen/internal/model"
	"github.com/phobologic/testgen/internal/syntax"
)

// DefaultSkipMarker is the comment marker that opts a declaration out.
const DefaultSkipMarker = "testgen-skip"

// Options configures a single extraction.
type Options struct {
	// SkipMarker suppresses a candidate whose leading comments contain it.
	// Empty means DefaultSkipMarker.
	SkipMarker string
	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// state is the per-invocation context threaded through the walk. Nothing in
// it outlives one call to Candidates.
type state struct {
	tree    *syntax.Tree
	path    string
	absPath string
	marker  string
	log     *slog.Logger
	emit    func(model.Candidate)

	decls   map[string]declaration // declaration index, first writer wins
	vars    map[string]string      // variable text index
	emitted map[string]struct{}
}

// Candidates walks tree and calls emit once per surviving candidate, in
// source order. path is reported as given; absPath is the resolved path.
func Candidates(tree *syntax.Tree, path, absPath string, opts Options, emit func(model.Candidate)) {
	s := &state{
		tree:    tree,
		path:    path,
		absPath: absPath,
		marker:  opts.SkipMarker,
		log:     opts.Logger,
		emit:    emit,
		decls:   make(map[string]declaration),
		vars:    make(map[string]string),
		emitted: make(map[string]struct{}),
	}
	if s.marker == "" {
		s.marker = DefaultSkipMarker
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With(slog.String("file", path))

	root := tree.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		s.statement(root.NamedChild(i))
	}
}

// Source parses source with l and runs Candidates over it. Parse failures
// fail the whole file.
func Source(ctx context.Context, l *lang.Language, source []byte, path, absPath string, opts Options, emit func(model.Candidate)) error {
	tree, err := syntax.Parse(ctx, l, source)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	Candidates(tree, path, absPath, opts, emit)
	return nil
}

// Collect is Source returning the candidates as a slice.
func Collect(ctx context.Context, l *lang.Language, source []byte, path, absPath string, opts Options) ([]model.Candidate, error) {
	var out []model.Candidate
	err := Source(ctx, l, source, path, absPath, opts, func(c model.Candidate) {
		out = append(out, c)
	})
	return out, err
}

func (s *state) statement(node *sitter.Node) {
	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		s.register(declaration{kind: formFunction, node: node, anchor: node})
	case "class_declaration", "abstract_class_declaration":
		s.register(declaration{kind: formClass, node: node, anchor: node})
	case "lexical_declaration", "variable_declaration":
		s.variableStatement(node, node, false)
	case "export_statement":
		s.exportStatement(node)
	case "import_statement":
		if src := node.ChildByFieldName("source"); src != nil {
			s.log.Debug("import not followed", slog.String("module", strings.Trim(s.tree.Text(src), "'\"`")))
		}
	}
}

// register adds d to the declaration index unless its name is taken.
func (s *state) register(d declaration) {
	name, status := nameOf(d, s.tree.Source)
	if status != nameOK {
		return
	}
	if _, ok := s.decls[name]; ok {
		return
	}
	s.decls[name] = d
	s.log.Debug("declaration indexed", slog.String("name", name), slog.String("form", d.kind.String()))
}

func (s *state) exportStatement(node *sitter.Node) {
	isDefault := false
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			isDefault = true
			break
		}
	}
	kind := model.Named
	if isDefault {
		kind = model.Default
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		switch decl.Type() {
		case "function_declaration", "generator_function_declaration":
			s.emitDeclaration(declaration{kind: formFunction, node: decl, anchor: node}, kind, nil)
		case "class_declaration", "abstract_class_declaration":
			s.emitDeclaration(declaration{kind: formClass, node: decl, anchor: node}, kind, nil)
		case "lexical_declaration", "variable_declaration":
			s.variableStatement(decl, node, true)
		default:
			s.log.Debug("export is not a candidate", slog.String("kind", decl.Type()))
		}
		return
	}

	if isDefault {
		if value := node.ChildByFieldName("value"); value != nil {
			s.defaultExport(value, node)
		}
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "export_clause" {
			continue
		}
		if node.ChildByFieldName("source") != nil {
			s.log.Debug("re-export from another module not followed", slog.String("code", s.snippet(node)))
			return
		}
		s.exportClause(child)
	}
}

// variableStatement indexes every declarator of a const/let/var statement.
// anchor is the statement itself or the export statement wrapping it.
func (s *state) variableStatement(decl, anchor *sitter.Node, exported bool) {
	qualifier := s.tree.Text(decl.Child(0))

	var declarators []*sitter.Node
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		if child := decl.NamedChild(i); child.Type() == "variable_declarator" {
			declarators = append(declarators, child)
		}
	}

	hasMethod := false
	for _, dec := range declarators {
		name, status := identifierName(dec.ChildByFieldName("name"), s.tree.Source)
		if status != nameOK {
			s.log.Debug("destructuring declaration not indexed", slog.String("code", s.snippet(dec)))
			continue
		}
		if _, ok := s.vars[name]; !ok {
			s.vars[name] = qualifier + " " + s.tree.Text(dec)
		}

		value := unwrapExpression(dec.ChildByFieldName("value"))
		switch {
		case isFunctionLike(value):
			d := declaration{
				kind:      formVarFunction,
				node:      dec,
				anchor:    anchor,
				qualifier: qualifier,
				single:    len(declarators) == 1,
			}
			s.register(d)
			if exported {
				s.emitDeclaration(d, model.Named, nil)
			}
		case value != nil && value.Type() == "object":
			if s.indexObject(value) {
				hasMethod = true
			}
		}
	}

	if !hasMethod {
		return
	}
	d := declaration{kind: formVarObject, node: decl, anchor: anchor, qualifier: qualifier}
	s.register(d)
	if exported {
		s.emitDeclaration(d, model.Named, nil)
	}
}

// indexObject registers the function- and class-valued members of an object
// literal and reports whether it contains a method definition.
func (s *state) indexObject(obj *sitter.Node) bool {
	hasMethod := false
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		prop := obj.NamedChild(i)
		switch prop.Type() {
		case "pair":
			value := unwrapExpression(prop.ChildByFieldName("value"))
			if isFunctionLike(value) || isClassLike(value) {
				s.register(declaration{kind: formProperty, node: prop, anchor: prop})
			}
		case "method_definition":
			hasMethod = true
			s.register(declaration{kind: formProperty, node: prop, anchor: prop})
		case "shorthand_property_identifier":
			name := s.tree.Text(prop)
			if d, ok := s.decls[name]; ok {
				s.log.Debug("shorthand property refers to declaration",
					slog.String("name", name), slog.String("form", d.kind.String()))
			}
		}
	}
	return hasMethod
}

func (s *state) defaultExport(value, stmt *sitter.Node) {
	value = unwrapExpression(value)
	switch {
	case value.Type() == "identifier":
		s.resolveDefault(s.tree.Text(value), nil)
	case value.Type() == "object":
		s.defaultObject(value)
	case isFunctionLike(value):
		s.emitDeclaration(declaration{kind: formFunction, node: value, anchor: stmt}, model.Default, nil)
	case isClassLike(value):
		s.emitDeclaration(declaration{kind: formClass, node: value, anchor: stmt}, model.Default, nil)
	default:
		s.log.Warn("cannot determine name of default export", slog.String("code", s.snippet(value)))
	}
}

// defaultObject handles `export default { ... }`. Each member is resolved on
// its own; an unsupported member only skips itself.
func (s *state) defaultObject(obj *sitter.Node) {
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		prop := obj.NamedChild(i)
		switch prop.Type() {
		case "comment":
		case "pair":
			value := unwrapExpression(prop.ChildByFieldName("value"))
			switch {
			case value != nil && value.Type() == "identifier":
				s.resolveDefault(s.tree.Text(value), prop)
			case isFunctionLike(value) || isClassLike(value):
				s.emitDeclaration(declaration{kind: formProperty, node: prop, anchor: prop}, model.Default, nil)
			default:
				s.log.Warn("unhandled property in default export", slog.String("code", s.snippet(prop)))
			}
		case "shorthand_property_identifier":
			s.resolveDefault(s.tree.Text(prop), prop)
		case "method_definition":
			s.emitDeclaration(declaration{kind: formProperty, node: prop, anchor: prop}, model.Default, nil)
		default:
			s.log.Warn("unhandled property in default export", slog.String("code", s.snippet(prop)))
		}
	}
}

// resolveDefault emits the indexed declaration called name as a default
// export. site is the object member that named it, if any.
func (s *state) resolveDefault(name string, site *sitter.Node) {
	d, ok := s.decls[name]
	if !ok {
		s.log.Warn("default export not resolved", slog.String("name", name))
		return
	}
	s.emitDeclaration(d, model.Default, site)
}

// exportClause handles local `export { a, b as c }` lists.
func (s *state) exportClause(clause *sitter.Node) {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := s.tree.Text(nameNode)
		kind := model.Named
		alias := ""
		if a := spec.ChildByFieldName("alias"); a != nil {
			alias = s.tree.Text(a)
		}
		if alias == "default" {
			kind, alias = model.Default, ""
		}

		d, ok := s.decls[name]
		if !ok {
			if _, isVar := s.vars[name]; isVar {
				s.log.Debug("exported variable is not a candidate", slog.String("name", name))
			} else {
				s.log.Warn("export not resolved", slog.String("name", name))
			}
			continue
		}
		if alias != name {
			d.exportedAs = alias
		}
		s.emitDeclaration(d, kind, spec)
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// snippet returns a short single-line rendering of node for log messages.
func (s *state) snippet(node *sitter.Node) string {
	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(s.tree.Text(node), " "))
	if r := []rune(text); len(r) > 80 {
		text = string(r[:77]) + "..."
	}
	return text
}
