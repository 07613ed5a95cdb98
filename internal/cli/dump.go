package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/vburojevic/agenttail/internal/domain"
	"github.com/vburojevic/agenttail/internal/filter"
	"github.com/vburojevic/agenttail/internal/logs"
	"github.com/vburojevic/agenttail/internal/output"
)

// DumpCmd parses one conversation log and prints it once
type DumpCmd struct {
	Path   string   `arg:"" type:"existingfile" help:"Path to a .jsonl conversation log"`
	Format string   `enum:"auto,text,ndjson" default:"auto" help:"Output format (auto picks text on a terminal, ndjson otherwise)"`
	Grep   string   `short:"g" help:"Only print entries matching this regex"`
	Kind   []string `short:"k" enum:"user,assistant,thinking,tool_call,tool_result,hook,agent_spawn" help:"Only print entries of these kinds"`
}

// Run executes the dump command
func (c *DumpCmd) Run(globals *Globals) error {
	result, err := logs.ParseFrom(c.Path, logs.Cursor{})
	if err != nil {
		return fmt.Errorf("parsing %s: %w", c.Path, err)
	}

	chain := filter.NewChain(filter.NewKindFilter(c.Kind))
	if c.Grep != "" {
		rf, err := filter.NewRegexFilter(c.Grep)
		if err != nil {
			return fmt.Errorf("invalid --grep pattern: %w", err)
		}
		chain.Add(rf)
	}

	format := c.Format
	if format == "auto" {
		format = "ndjson"
		if f, ok := globals.Stdout.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			format = "text"
		}
	}

	var write func(domain.DisplayEntry) error
	var warn func(int) error
	switch format {
	case "ndjson":
		w := output.NewNDJSONWriter(globals.Stdout)
		write = w.WriteEntry
		warn = func(skipped int) error {
			return w.WriteWarning("undecodable lines skipped", skipped)
		}
	default:
		w := output.NewTextWriter(globals.Stdout)
		write = w.WriteEntry
		warn = func(skipped int) error {
			_, err := fmt.Fprintf(globals.Stderr, "warning: %d undecodable lines skipped\n", skipped)
			return err
		}
	}

	for i := range result.Entries {
		if !chain.Match(&result.Entries[i]) {
			continue
		}
		if err := write(result.Entries[i]); err != nil {
			return err
		}
	}
	if result.Skipped > 0 {
		return warn(result.Skipped)
	}
	return nil
}
