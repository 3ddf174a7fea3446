// Package generate turns candidates into Jest spec files through a
// language model.
package generate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/phobologic/testgen/internal/model"
)

// Result pairs a candidate with the test code produced for it.
type Result struct {
	Candidate model.Candidate
	Prompt    string
	Test      string
}

// Generator requests test code for candidates from a language model.
type Generator struct {
	Model     llms.Model
	ModelName string // passed as a call option when set
	MaxTokens int
	// Concurrency bounds in-flight completion calls. Values below 1 mean 1.
	Concurrency int
	// Limiter throttles completion calls. Nil means unlimited.
	Limiter *rate.Limiter
	Logger  *slog.Logger
	// Out receives one progress line per completed candidate. Nil discards them.
	Out io.Writer
}

// Run generates tests for every candidate. Results are returned in input
// order. The first failed completion cancels the remaining calls.
func (g *Generator) Run(ctx context.Context, candidates []model.Candidate) ([]Result, error) {
	log := g.Logger
	if log == nil {
		log = slog.Default()
	}
	limit := g.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(candidates))
	var (
		mu   sync.Mutex
		done int
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i := range candidates {
		c := candidates[i]
		eg.Go(func() error {
			if g.Limiter != nil {
				if err := g.Limiter.Wait(ctx); err != nil {
					return fmt.Errorf("%s: %w", c.Name, err)
				}
			}
			prompt := Prompt(c)
			log.Debug("requesting completion", "name", c.Name, "file", c.Path)
			text, err := llms.GenerateFromSinglePrompt(ctx, g.Model, prompt, g.callOptions()...)
			if err != nil {
				return fmt.Errorf("generating test for %s (%s): %w", c.Name, c.Path, err)
			}
			results[i] = Result{
				Candidate: c,
				Prompt:    prompt,
				Test:      strings.TrimSpace(text),
			}
			if g.Out != nil {
				mu.Lock()
				done++
				fmt.Fprintf(g.Out, "%s %d/%d %s\n", faint("fetched"), done, len(candidates), c.Name)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (g *Generator) callOptions() []llms.CallOption {
	var opts []llms.CallOption
	if g.ModelName != "" {
		opts = append(opts, llms.WithModel(g.ModelName))
	}
	if g.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.MaxTokens))
	}
	return opts
}
