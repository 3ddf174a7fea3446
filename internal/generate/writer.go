package generate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/phobologic/testgen/internal/config"
	"github.com/phobologic/testgen/internal/model"
)

var (
	written = color.New(color.FgGreen).SprintFunc()
	skipped = color.New(color.FgRed).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
)

// Writer persists generated tests next to their sources.
type Writer struct {
	// Mode is config.WriteFunction or config.WriteFile.
	Mode string
	// Force overwrites existing spec files.
	Force bool
	// Out receives progress lines. Nil discards them.
	Out io.Writer
}

// Write stores the results and returns the paths actually written.
func (w *Writer) Write(results []Result) ([]string, error) {
	if w.Mode == config.WriteFile {
		return w.writeFiles(results)
	}

	var paths []string
	for _, r := range results {
		info := PathInfoFor(r.Candidate.AbsolutePath)
		path := filepath.Join(info.SpecDir(), r.Candidate.Name+".spec.ts")
		body := importLine(info, []model.Candidate{r.Candidate}) + "\n" + r.Test + "\n"
		ok, err := w.writeSpec(path, body)
		if err != nil {
			return paths, err
		}
		if ok {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (w *Writer) writeFiles(results []Result) ([]string, error) {
	var order []string
	bySource := make(map[string][]Result)
	for _, r := range results {
		key := r.Candidate.AbsolutePath
		if _, ok := bySource[key]; !ok {
			order = append(order, key)
		}
		bySource[key] = append(bySource[key], r)
	}

	var paths []string
	for _, key := range order {
		group := bySource[key]
		info := PathInfoFor(key)
		path := filepath.Join(info.SpecDir(), info.FileName+".spec.ts")

		cands := make([]model.Candidate, len(group))
		tests := make([]string, len(group))
		for i, r := range group {
			cands[i] = r.Candidate
			tests[i] = r.Test
		}
		body := importLine(info, cands) + "\n" + strings.Join(tests, "\n\n") + "\n"

		ok, err := w.writeSpec(path, body)
		if err != nil {
			return paths, err
		}
		if ok {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// importLine renders the import of the file under test. Default-exported
// candidates are reached through the module's default binding.
func importLine(info PathInfo, cands []model.Candidate) string {
	var named, defaults []string
	for _, c := range cands {
		if c.ExportKind == model.Default {
			defaults = append(defaults, c.Name)
		} else {
			named = append(named, c.Name)
		}
	}

	var bindings []string
	if len(defaults) > 0 {
		bindings = append(bindings, info.ModuleIdent())
	}
	if len(named) > 0 {
		bindings = append(bindings, "{"+strings.Join(named, ", ")+"}")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "import %s from '%s';\n", strings.Join(bindings, ", "), info.RelativeImport)
	if len(defaults) > 0 {
		fmt.Fprintf(&b, "\nconst {%s} = %s;\n", strings.Join(defaults, ", "), info.ModuleIdent())
	}
	return b.String()
}

func (w *Writer) writeSpec(path, body string) (bool, error) {
	if !w.Force {
		_, err := os.Stat(path)
		if err == nil {
			w.printf("%s %s %s\n", skipped("exists, not overwritten:"), path, faint("(use --force)"))
			return false, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("checking %s: %w", path, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	w.printf("%s %s\n", faint("wrote"), written(path))
	return true, nil
}

func (w *Writer) printf(format string, args ...any) {
	if w.Out != nil {
		fmt.Fprintf(w.Out, format, args...)
	}
}
