package extract

import (
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/testgen/internal/model"
)

// emitDeclaration finalizes d as a candidate: derives its name, drops
// duplicates and comment-marked declarations, computes the reference closure
// and hands the record to the callback. site is the export-site node whose
// comments may also carry the skip marker.
func (s *state) emitDeclaration(d declaration, kind model.ExportKind, site *sitter.Node) {
	name, status := nameOf(d, s.tree.Source)
	switch status {
	case nameAnonymous:
		return
	case nameUnknown:
		s.log.Warn("cannot determine candidate name", slog.String("code", s.snippet(d.node)))
		return
	}

	if _, dup := s.emitted[name]; dup {
		s.log.Debug("candidate already emitted", slog.String("name", name))
		return
	}

	if s.skipped(d.anchor) || (site != nil && s.skipped(site)) {
		s.log.Info("skipping candidate marked by comment",
			slog.String("name", name), slog.String("marker", s.marker))
		return
	}

	refs := []string{}
	if d.kind != formVarObject {
		refs = s.references(d.node, name)
	}

	s.emitted[name] = struct{}{}
	s.emit(model.Candidate{
		Name:         name,
		Code:         s.codeOf(d),
		Path:         s.path,
		AbsolutePath: s.absPath,
		ExportKind:   kind,
		References:   refs,
	})
}

// skipped reports whether a leading comment of node contains the marker.
func (s *state) skipped(node *sitter.Node) bool {
	for _, c := range s.tree.LeadingComments(node) {
		if strings.Contains(s.tree.Text(c), s.marker) {
			return true
		}
	}
	return false
}

// codeOf returns the candidate source, including leading comments.
func (s *state) codeOf(d declaration) string {
	start := s.tree.TriviaStart(d.anchor)
	switch d.kind {
	case formVarFunction:
		if !d.single {
			return d.qualifier + " " + s.tree.Text(d.node)
		}
		return s.tree.Slice(start, d.anchor.EndByte())
	case formVarObject:
		return s.tree.Slice(start, d.anchor.EndByte())
	}
	end := d.node.EndByte()
	if d.anchor.EndByte() > end && d.anchor.Type() == "export_statement" {
		end = d.anchor.EndByte()
	}
	return s.tree.Slice(start, end)
}
