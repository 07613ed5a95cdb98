package cli

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/vburojevic/agenttail/internal/config"
)

// CLI is the root command structure for agenttail
type CLI struct {
	// Global flags
	Root     string `short:"r" help:"Log root directory (default: ~/.claude/projects)"`
	LogFile  string `help:"Write internal diagnostics to this file (off by default)"`
	LogLevel string `default:"info" enum:"debug,info,warn,error" help:"Diagnostics log level"`
	Verbose  bool   `short:"v" help:"Show debug output on stderr for non-TUI commands"`

	Version VersionCmd `cmd:"" help:"Show version information"`

	// Commands
	UI       UICmd       `cmd:"" default:"1" help:"Interactive conversation viewer (default)"`
	Projects ProjectsCmd `cmd:"" help:"List discovered projects"`
	Sessions SessionsCmd `cmd:"" help:"List sessions of a project"`
	Dump     DumpCmd     `cmd:"" help:"Parse one conversation log and print it"`
}

// Globals holds shared state for all commands
type Globals struct {
	Root    string
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
	Logger  *zap.Logger
}

// NewGlobals creates a new Globals instance with config fallbacks applied
func NewGlobals(cli *CLI, cfg *config.Config, logger *zap.Logger) *Globals {
	root := cli.Root
	if root == "" && cfg != nil {
		root = cfg.Root
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Globals{
		Root:    root,
		Verbose: cli.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
		Logger:  logger,
	}
}

// Debug prints a debug message if verbose mode is enabled
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.Verbose {
		fmt.Fprintf(g.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	_, err := fmt.Fprintf(globals.Stdout, "agenttail version %s (%s)\n", Version, Commit)
	return err
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
