package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/vburojevic/agenttail/internal/cli"
	"github.com/vburojevic/agenttail/internal/config"
	"github.com/vburojevic/agenttail/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	ctx := kong.Parse(&c,
		kong.Name("agenttail"),
		kong.Description("Live viewer for agent conversation logs\n\nRun with no arguments to open the interactive UI over ~/.claude/projects"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)

	logFile := c.LogFile
	if logFile == "" {
		logFile = cfg.LogFile
	}
	logLevel := c.LogLevel
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger, err := logging.New(logFile, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open log file: %v\n", err)
		logger, _ = logging.New("", logLevel)
	}
	defer logger.Sync() //nolint:errcheck

	globals := cli.NewGlobals(&c, cfg, logger)
	if err := ctx.Run(globals); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
