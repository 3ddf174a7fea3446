package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/phobologic/testgen/internal/config"
	"github.com/phobologic/testgen/internal/generate"
	"github.com/phobologic/testgen/internal/toon"
)

func newGenerateCmd(sf *scanFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		concurrency   int
		force         bool
		writeFileType string
		modelName     string
		maxTokens     int
		rps           float64
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "generate [root]",
		Short: "Generate Jest spec files for the candidates of a project",
		Long: `generate asks a language model for a Jest test of every candidate and writes
it to a __test__ directory next to the source file. Existing spec files are
kept unless --force is given.

The API key is read from OPENAI_API_KEY, or API_KEY when that is unset.
OPENAI_BASE_URL selects a compatible endpoint.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newScan(cmd, sf, args)
			if err != nil {
				return err
			}

			cfg := sc.cfg
			flags := cmd.Flags()
			if flags.Changed("concurrency") {
				cfg.Concurrency = concurrency
			}
			if flags.Changed("force") {
				cfg.ForceWriteFile = force
			}
			if flags.Changed("write-file-type") {
				cfg.WriteFileType = writeFileType
			}
			if flags.Changed("model") {
				cfg.Model = modelName
			}
			if flags.Changed("max-tokens") {
				cfg.MaxTokens = maxTokens
			}
			if flags.Changed("rps") {
				cfg.RequestsPerSecond = rps
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			report, err := sc.report(cmd.Context())
			if err != nil {
				return err
			}
			candidates := sf.apply(report).Candidates()
			if len(candidates) == 0 {
				_, _ = fmt.Fprintln(stderr, "no candidates found")
				return nil
			}

			if dryRun {
				for i := range candidates {
					_, _ = fmt.Fprintf(stdout, "%s\n---\n%s\n", toon.EncodeCandidate(&candidates[i]), generate.Prompt(candidates[i]))
				}
				return nil
			}

			llm, err := newModel(cfg)
			if err != nil {
				return err
			}

			g := &generate.Generator{
				Model:       llm,
				ModelName:   cfg.Model,
				MaxTokens:   cfg.MaxTokens,
				Concurrency: cfg.Concurrency,
				Logger:      sc.log,
				Out:         stderr,
			}
			if cfg.RequestsPerSecond > 0 {
				g.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
			}

			_, _ = fmt.Fprintf(stderr, "generating tests for %d candidates:\n", len(candidates))
			for _, c := range candidates {
				_, _ = fmt.Fprintf(stderr, "  %s (%s)\n", c.Name, c.Path)
			}
			results, err := g.Run(cmd.Context(), candidates)
			if err != nil {
				return err
			}

			w := &generate.Writer{Mode: cfg.WriteFileType, Force: cfg.ForceWriteFile, Out: stderr}
			paths, err := w.Write(results)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "wrote %d spec files\n", len(paths))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&concurrency, "concurrency", 0, "maximum in-flight completion requests (default from config)")
	f.BoolVar(&force, "force", false, "overwrite existing spec files")
	f.StringVar(&writeFileType, "write-file-type", "", "\"function\" writes one spec per candidate, \"file\" one per source file")
	f.StringVar(&modelName, "model", "", "completion model name (default from config)")
	f.IntVar(&maxTokens, "max-tokens", 0, "maximum tokens per completion (default from config)")
	f.Float64Var(&rps, "rps", 0, "maximum completion requests per second (0 = unlimited)")
	f.BoolVar(&dryRun, "dry-run", false, "print the prompts instead of calling the model")
	return cmd
}

// newModel builds the OpenAI client from the environment.
func newModel(cfg config.Config) (llms.Model, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		key = os.Getenv("API_KEY")
	}
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY (or API_KEY) must be set; use --dry-run to preview prompts")
	}

	opts := []openai.Option{
		openai.WithToken(key),
		openai.WithModel(cfg.Model),
	}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		opts = append(opts, openai.WithBaseURL(base))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}
	return llm, nil
}
