package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	sentinelStart = "<!-- testgen:start -->"
	sentinelEnd   = "<!-- testgen:end -->"
)

func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path-to-CLAUDE.md]",
		Short: "Write a testgen usage section to a CLAUDE.md file",
		Long: `Write a testgen usage section to a CLAUDE.md file. The section is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args, dryRun, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

// runInit writes (or updates) the testgen usage section in a CLAUDE.md file.
func runInit(args []string, dryRun bool, stdout, stderr io.Writer) error {
	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := "CLAUDE.md"
	if len(args) > 0 {
		path = args[0]
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote testgen section to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped testgen documentation block.
func generateSection() string {
	body := `## testgen: Jest test generation

Run ` + "`testgen`" + ` via the Bash tool before writing unit tests for a JavaScript or
TypeScript module. It lists every exported function, class and object method
that a test can target, with the module-level declarations each one uses.

**Availability:** Check with ` + "`testgen --version`" + ` first; skip gracefully if
not found.

**Run it:**
` + "```" + `bash
testgen                                      # current directory
testgen /path/to/repo                        # explicit path
testgen --include 'src/**' --exclude '**/legacy/**'
testgen --name parse                         # candidates whose name contains "parse"
testgen -n 20                                # first 20 candidates (large repos)
testgen --cache .testgen-cache               # cache output (fast on repeat runs)
testgen generate --dry-run --name parse      # print the prompts that would be sent
` + "```" + `

**Caching:** Use ` + "`--cache <file>`" + ` to avoid re-parsing on every call. Add the
cache file to ` + "`.gitignore`" + `. A conventional path is ` + "`.testgen-cache`" + `.

**All flags:** ` + "`testgen --help`" + `

**How to use the output:**

1. **Test what is listed.** The ` + "`candidates`" + ` table holds the exported
   declarations of each file. ` + "`export`" + ` tells you whether to use a named or a
   default import.

2. **Read the references.** ` + "`testgen generate --dry-run --name <fn>`" + ` prints
   the code of a candidate together with the declarations it uses, which is
   the context a test needs.

3. **Respect opt-outs.** Declarations preceded by a ` + "`testgen-skip`" + ` comment are
   deliberately left out; do not write tests for them.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
