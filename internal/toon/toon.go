// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/testgen/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a Report into TOON format.
func Encode(r *model.Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("repo: %s", encodeValue(r.RepoName)))
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))

	var fileRows [][]string
	for i := range r.Files {
		fr := &r.Files[i]
		fileRows = append(fileRows, []string{
			fr.Path,
			fr.Language,
			strconv.Itoa(len(fr.Candidates)),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "language", "candidates"}, fileRows))

	var candidateRows [][]string
	for i := range r.Files {
		fr := &r.Files[i]
		for j := range fr.Candidates {
			c := &fr.Candidates[j]
			candidateRows = append(candidateRows, []string{
				fr.Path,
				c.Name,
				string(c.ExportKind),
				strconv.Itoa(len(c.References)),
			})
		}
	}
	parts = append(parts, formatTabular("candidates", []string{"file", "name", "export", "references"}, candidateRows))

	return strings.Join(parts, "\n")
}

// EncodeCandidate renders a single candidate with its code and the source
// of every declaration it references.
func EncodeCandidate(c *model.Candidate) string {
	parts := []string{
		fmt.Sprintf("name: %s", encodeValue(c.Name)),
		fmt.Sprintf("file: %s", encodeValue(c.Path)),
		fmt.Sprintf("export: %s", encodeValue(string(c.ExportKind))),
		fmt.Sprintf("code: %s", encodeValue(c.Code)),
		formatList("references", c.References),
	}
	return strings.Join(parts, "\n")
}

func formatList(name string, items []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]:", name, len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "\n  %s", encodeValue(item))
	}
	return b.String()
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
