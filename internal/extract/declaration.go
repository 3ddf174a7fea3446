package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// formKind enumerates the syntactic shapes a candidate declaration can take.
type formKind int

const (
	// formFunction is a function declaration or a named function expression.
	formFunction formKind = iota
	// formClass is a class declaration or a named class expression.
	formClass
	// formVarFunction is a variable declarator whose initializer is a function.
	formVarFunction
	// formVarObject is a whole variable statement whose object literal
	// initializer bundles methods (aggregate candidate).
	formVarObject
	// formProperty is an object-literal member holding a function or class:
	// a method definition or a pair with a function/class value.
	formProperty
)

func (k formKind) String() string {
	switch k {
	case formFunction:
		return "function"
	case formClass:
		return "class"
	case formVarFunction:
		return "variable-function"
	case formVarObject:
		return "variable-object"
	case formProperty:
		return "property"
	}
	return "unknown"
}

// declaration is an entry of the declaration index.
type declaration struct {
	kind formKind
	// node is the defining node: the function or class node, the variable
	// declarator, the variable statement, or the pair/method_definition.
	node *sitter.Node
	// anchor owns the leading comments: the outermost statement, or the
	// object member itself.
	anchor *sitter.Node
	// qualifier is const, let or var for the variable forms.
	qualifier string
	// single reports whether the variable statement holds only this declarator.
	single bool
	// exportedAs overrides the display name for `export { a as b }`.
	exportedAs string
}

type nameStatus int

const (
	nameOK nameStatus = iota
	nameAnonymous
	nameUnknown
)

// nameOf derives the display name of d from its form.
func nameOf(d declaration, source []byte) (string, nameStatus) {
	if d.exportedAs != "" {
		return d.exportedAs, nameOK
	}
	switch d.kind {
	case formFunction, formClass:
		name := d.node.ChildByFieldName("name")
		if name == nil {
			return "", nameAnonymous
		}
		return identifierName(name, source)
	case formVarFunction:
		return identifierName(d.node.ChildByFieldName("name"), source)
	case formVarObject:
		for i := 0; i < int(d.node.NamedChildCount()); i++ {
			child := d.node.NamedChild(i)
			if child.Type() == "variable_declarator" {
				return identifierName(child.ChildByFieldName("name"), source)
			}
		}
		return "", nameUnknown
	case formProperty:
		if d.node.Type() == "pair" {
			return propertyName(d.node.ChildByFieldName("key"), source)
		}
		return propertyName(d.node.ChildByFieldName("name"), source)
	}
	return "", nameUnknown
}

func identifierName(node *sitter.Node, source []byte) (string, nameStatus) {
	if node == nil {
		return "", nameUnknown
	}
	switch node.Type() {
	case "identifier", "type_identifier":
		return node.Content(source), nameOK
	}
	return "", nameUnknown
}

func propertyName(node *sitter.Node, source []byte) (string, nameStatus) {
	if node == nil {
		return "", nameUnknown
	}
	switch node.Type() {
	case "property_identifier", "identifier":
		return node.Content(source), nameOK
	case "string":
		name := strings.Trim(node.Content(source), "'\"")
		if isIdentifier(name) {
			return name, nameOK
		}
	}
	return "", nameUnknown
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func isFunctionLike(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "function_expression", "function", "arrow_function", "generator_function":
		return true
	}
	return false
}

func isClassLike(node *sitter.Node) bool {
	return node != nil && node.Type() == "class"
}

// unwrapExpression strips parentheses and TypeScript type assertions.
func unwrapExpression(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Type() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			if node.NamedChildCount() == 0 {
				return node
			}
			node = node.NamedChild(0)
		default:
			return node
		}
	}
	return node
}
