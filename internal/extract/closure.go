package extract

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// references returns the source of the module-level declarations that the
// subtree rooted at root names directly, in first-use order. Names bound
// inside the subtree (parameters, nested declarators, nested function and
// class names) shadow module-level ones from the point they are seen.
// Only one level is resolved: references of references are not followed.
func (s *state) references(root *sitter.Node, self string) []string {
	locals := make(map[string]struct{})
	seen := make(map[string]struct{})
	var names []string

	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		s.bindLocals(node, self, locals)

		switch node.Type() {
		case "identifier", "shorthand_property_identifier", "type_identifier":
			name := s.tree.Text(node)
			if name == self {
				break
			}
			if _, local := locals[name]; local {
				break
			}
			if _, dup := seen[name]; dup {
				break
			}
			if s.known(name) {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}

		for i := 0; i < int(node.NamedChildCount()); i++ {
			visit(node.NamedChild(i))
		}
	}
	visit(root)

	refs := make([]string, 0, len(names))
	for _, name := range names {
		if text, ok := s.vars[name]; ok {
			refs = append(refs, text)
			continue
		}
		refs = append(refs, s.tree.Text(s.decls[name].node))
	}
	return refs
}

func (s *state) known(name string) bool {
	if _, ok := s.vars[name]; ok {
		return true
	}
	_, ok := s.decls[name]
	return ok
}

// bindLocals records the names node introduces into the local scope.
func (s *state) bindLocals(node *sitter.Node, self string, locals map[string]struct{}) {
	switch node.Type() {
	case "variable_declarator":
		s.bindPattern(node.ChildByFieldName("name"), locals)
	case "formal_parameters":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			s.bindPattern(node.NamedChild(i), locals)
		}
	case "arrow_function":
		s.bindPattern(node.ChildByFieldName("parameter"), locals)
	case "catch_clause":
		s.bindPattern(node.ChildByFieldName("parameter"), locals)
	case "for_in_statement":
		s.bindPattern(node.ChildByFieldName("left"), locals)
	case "function_declaration", "generator_function_declaration", "function_expression", "function",
		"generator_function", "class_declaration", "abstract_class_declaration", "class":
		if name := node.ChildByFieldName("name"); name != nil {
			if text := s.tree.Text(name); text != self {
				locals[text] = struct{}{}
			}
		}
	}
}

// bindPattern adds every identifier bound by a parameter or destructuring
// pattern. Default-value expressions are left for the reference scan.
func (s *state) bindPattern(node *sitter.Node, locals map[string]struct{}) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		locals[s.tree.Text(node)] = struct{}{}
	case "required_parameter", "optional_parameter":
		s.bindPattern(node.ChildByFieldName("pattern"), locals)
	case "assignment_pattern", "object_assignment_pattern":
		s.bindPattern(node.ChildByFieldName("left"), locals)
	case "pair_pattern":
		s.bindPattern(node.ChildByFieldName("value"), locals)
	case "object_pattern", "array_pattern", "rest_pattern":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			s.bindPattern(node.NamedChild(i), locals)
		}
	}
}
