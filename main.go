// testgen finds the exported JavaScript and TypeScript functions of a project
// and generates Jest unit tests for them.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/testgen/internal/config"
	"github.com/phobologic/testgen/internal/discover"
	"github.com/phobologic/testgen/internal/extract"
	"github.com/phobologic/testgen/internal/filter"
	"github.com/phobologic/testgen/internal/lang"
	"github.com/phobologic/testgen/internal/model"
	"github.com/phobologic/testgen/internal/toon"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

// scanFlags are shared by every command that scans a project.
type scanFlags struct {
	configPath    string
	include       []string
	exclude       []string
	langs         []string
	skipComment   string
	maxFileSize   int
	maxCandidates int
	name          string
	file          string
	verbose       bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		sf        scanFlags
		cachePath string
	)

	cmd := &cobra.Command{
		Use:   "testgen [root]",
		Short: "List the exported functions of a JS/TS project that tests can be generated for",
		Long: `testgen scans a JavaScript or TypeScript project, finds the exported functions,
classes and object methods of every module, and prints them as TOON tables.
Use "testgen generate" to write Jest spec files for them.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newScan(cmd, &sf, args)
			if err != nil {
				return err
			}

			// The cache only serves the full listing built from the config file
			// alone; filters and setting overrides change the output.
			useCache := cachePath != "" && sf.maxCandidates <= 0 && sf.name == "" && sf.file == "" &&
				!anyChanged(cmd, scanSettingFlags...)
			if useCache && cacheIsFresh(cachePath, sc.root, sc.files, sc.cfgPath) {
				data, err := os.ReadFile(cachePath)
				if err == nil {
					_, _ = stdout.Write(data)
					return nil
				}
			}

			report, err := sc.report(cmd.Context())
			if err != nil {
				return err
			}
			report = sf.apply(report)

			output := toon.Encode(report)
			if useCache {
				if err := os.WriteFile(cachePath, []byte(output+"\n"), 0o644); err != nil {
					sc.log.Warn("writing cache", "path", cachePath, "err", err)
				}
			}

			_, _ = fmt.Fprintln(stdout, output)
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("testgen {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&sf.configPath, "config", "", "config file (default: .testgen.yaml/.yml/.jsonc/.json in root)")
	pf.StringSliceVar(&sf.include, "include", nil, "glob of files to scan, relative to root (repeatable)")
	pf.StringSliceVar(&sf.exclude, "exclude", nil, "glob of files to skip, relative to root (repeatable)")
	pf.StringSliceVar(&sf.langs, "lang", nil, "languages to scan: "+strings.Join(lang.Names(), ", ")+" (repeatable)")
	pf.StringVar(&sf.skipComment, "skip-comment", "", "comment marker that excludes a declaration (default \""+extract.DefaultSkipMarker+"\")")
	pf.IntVar(&sf.maxFileSize, "max-file-size", 0, "skip files larger than this many bytes (default from config)")
	pf.IntVarP(&sf.maxCandidates, "max", "n", 0, "maximum number of candidates")
	pf.StringVar(&sf.name, "name", "", "only candidates whose name contains this (case-insensitive)")
	pf.StringVar(&sf.file, "file", "", "only files whose path contains this (case-insensitive)")
	pf.BoolVarP(&sf.verbose, "verbose", "v", false, "log debug diagnostics to stderr")

	cmd.Flags().StringVar(&cachePath, "cache", "", "cache file path")
	cmd.Flags().BoolP("version", "V", false, "show version and exit")

	cmd.AddCommand(newGenerateCmd(&sf, stdout, stderr))
	cmd.AddCommand(newInitCmd(stdout, stderr))
	return cmd
}

// scanSettingFlags change which files are scanned or how candidates are
// extracted.
var scanSettingFlags = []string{"config", "include", "exclude", "lang", "skip-comment", "max-file-size"}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// apply narrows the report by the candidate filters.
func (sf *scanFlags) apply(report *model.Report) *model.Report {
	if sf.file != "" {
		report = filter.ByFile(report, sf.file)
	}
	if sf.name != "" {
		report = filter.ByName(report, sf.name)
	}
	if sf.maxCandidates > 0 {
		report = filter.Limit(report, sf.maxCandidates)
	}
	return report
}

// scan is a resolved project scan: settings merged and files discovered.
type scan struct {
	root    string
	cfg     config.Config
	cfgPath string // empty when no config file was found
	files   []discover.FileEntry
	log     *slog.Logger
}

// newScan resolves the root, merges flags over the config file, and
// discovers the files to extract from.
func newScan(cmd *cobra.Command, sf *scanFlags, args []string) (*scan, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	level := slog.LevelWarn
	if sf.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, cfgPath, err := config.Load(root, sf.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfgPath != "" {
		log.Debug("loaded config", "path", cfgPath)
	}

	flags := cmd.Flags()
	if flags.Changed("include") {
		cfg.Include = sf.include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = sf.exclude
	}
	if flags.Changed("skip-comment") {
		cfg.SkipComment = sf.skipComment
	}
	if flags.Changed("max-file-size") {
		cfg.MaxFileSize = sf.maxFileSize
	}

	for _, name := range sf.langs {
		if _, ok := lang.Languages[name]; !ok {
			return nil, fmt.Errorf("unsupported language %q (supported: %s)", name, strings.Join(lang.Names(), ", "))
		}
	}

	files, err := discover.Files(root, discover.Options{
		Languages: sf.langs,
		Include:   cfg.Include,
		Exclude:   cfg.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no parseable files found")
	}

	if cfg.MaxFileSize > 0 {
		files = filterBySize(root, files, cfg.MaxFileSize, log)
		if len(files) == 0 {
			return nil, fmt.Errorf("no parseable files found (all exceeded size limit)")
		}
	}

	return &scan{root: root, cfg: cfg, cfgPath: cfgPath, files: files, log: log}, nil
}

// report extracts candidates from every discovered file.
func (sc *scan) report(ctx context.Context) (*model.Report, error) {
	results, err := extractFilesConcurrent(ctx, sc.root, sc.files, extract.Options{
		SkipMarker: sc.cfg.SkipComment,
		Logger:     sc.log,
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no files could be parsed")
	}
	return &model.Report{
		RepoName: filepath.Base(sc.root),
		Root:     filepath.Base(sc.root),
		Files:    results,
	}, nil
}

// cacheIsFresh reports whether the cache is newer than every scanned file
// and the config file, if any.
func cacheIsFresh(cachePath, root string, files []discover.FileEntry, cfgPath string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	if cfgPath != "" {
		fi, err := os.Stat(cfgPath)
		if err != nil || !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

func filterBySize(root string, files []discover.FileEntry, maxSize int, log *slog.Logger) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			log.Warn("file skipped, too large", "file", f.Path, "size", fi.Size(), "limit", maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// extractFilesConcurrent runs extraction over files with one parse per
// goroutine. Files that cannot be read or parsed are logged and left out;
// the remaining results keep discovery order.
func extractFilesConcurrent(ctx context.Context, root string, files []discover.FileEntry, opts extract.Options) ([]model.FileResult, error) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	indexed := make([]model.FileResult, len(files))
	valid := make([]bool, len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(numWorkers, 1))

	for i := range files {
		f := files[i]
		eg.Go(func() error {
			l := lang.ForPath(f.Path)
			if l == nil {
				opts.Logger.Warn("no grammar for language", "file", f.Path, "language", f.Language)
				return nil
			}

			absPath := filepath.Join(root, f.Path)
			source, err := os.ReadFile(absPath)
			if err != nil {
				opts.Logger.Warn("failed to read file", "file", f.Path, "err", err)
				return nil
			}

			relPath := filepath.ToSlash(f.Path)
			candidates, err := extract.Collect(ctx, l, source, relPath, absPath, opts)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				opts.Logger.Warn("failed to parse file", "file", f.Path, "err", err)
				return nil
			}

			indexed[i] = model.FileResult{
				Path:       relPath,
				Language:   f.Language,
				Candidates: candidates,
			}
			valid[i] = true
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var results []model.FileResult
	for i, v := range valid {
		if v {
			results = append(results, indexed[i])
		}
	}
	return results, nil
}
