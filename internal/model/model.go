// Package model defines core data structures for testgen.
package model

// ExportKind indicates how a candidate is reachable from the module boundary.
type ExportKind string

const (
	Named   ExportKind = "named"
	Default ExportKind = "default"
)

// Candidate is a declaration eligible for example/test generation.
type Candidate struct {
	Name         string
	Code         string // source slice including leading comments
	Path         string // as supplied by the caller
	AbsolutePath string
	ExportKind   ExportKind
	// References holds the source text of other module-level declarations
	// the candidate uses directly. Ordered, unique, possibly empty.
	References []string
}

// FileResult holds the candidates discovered in a single source file.
type FileResult struct {
	Path       string
	Language   string
	Candidates []Candidate
}

// Report is the complete scan result, ready for serialization.
type Report struct {
	RepoName string
	Root     string
	Files    []FileResult
}

// Candidates returns all candidates of the report in file order.
func (r *Report) Candidates() []Candidate {
	var out []Candidate
	for i := range r.Files {
		out = append(out, r.Files[i].Candidates...)
	}
	return out
}
