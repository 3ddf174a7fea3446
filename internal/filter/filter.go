// Package filter narrows a report to a subset of its candidates.
package filter

import (
	"strings"

	"github.com/phobologic/testgen/internal/model"
)

// Limit returns a new Report keeping only the first n candidates across
// files, in file order. Files left without candidates are dropped.
// If n is <= 0 or covers every candidate, the original report is returned.
func Limit(r *model.Report, n int) *model.Report {
	if n <= 0 || n >= len(r.Candidates()) {
		return r
	}

	remaining := n
	var files []model.FileResult
	for i := range r.Files {
		if remaining == 0 {
			break
		}
		fr := r.Files[i]
		if len(fr.Candidates) == 0 {
			continue
		}
		if len(fr.Candidates) > remaining {
			fr.Candidates = fr.Candidates[:remaining]
		}
		remaining -= len(fr.Candidates)
		files = append(files, fr)
	}

	return &model.Report{
		RepoName: r.RepoName,
		Root:     r.Root,
		Files:    files,
	}
}

// ByName returns a new Report containing only candidates whose name
// contains substr (case-insensitive), and the files that hold them.
func ByName(r *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)

	var files []model.FileResult
	for i := range r.Files {
		fr := r.Files[i]
		var matched []model.Candidate
		for j := range fr.Candidates {
			if strings.Contains(strings.ToLower(fr.Candidates[j].Name), lower) {
				matched = append(matched, fr.Candidates[j])
			}
		}
		if len(matched) == 0 {
			continue
		}
		fr.Candidates = matched
		files = append(files, fr)
	}

	return &model.Report{
		RepoName: r.RepoName,
		Root:     r.Root,
		Files:    files,
	}
}

// ByFile returns a new Report containing only files whose path contains
// substr (case-insensitive).
func ByFile(r *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)

	var files []model.FileResult
	for i := range r.Files {
		if strings.Contains(strings.ToLower(r.Files[i].Path), lower) {
			files = append(files, r.Files[i])
		}
	}

	return &model.Report{
		RepoName: r.RepoName,
		Root:     r.Root,
		Files:    files,
	}
}
