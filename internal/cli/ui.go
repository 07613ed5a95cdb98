package cli

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vburojevic/agenttail/internal/ingest"
	"github.com/vburojevic/agenttail/internal/logs"
	"github.com/vburojevic/agenttail/internal/tui"
	"github.com/vburojevic/agenttail/internal/watch"
)

// UICmd launches the interactive conversation viewer
type UICmd struct {
	FollowActive bool `short:"F" help:"Automatically follow the most recently active project/session/agent"`
	ShowThinking bool `short:"t" help:"Show thinking blocks from the start"`
}

// Run executes the ui command
func (c *UICmd) Run(globals *Globals) error {
	cfg := globals.Config

	disc := logs.NewDiscoverer(globals.Root, cfg.Tuning.WalkConcurrency, globals.Logger)
	if err := disc.CheckRoot(); err != nil {
		return fmt.Errorf("nothing to watch: %w", err)
	}

	clk := clock.New()
	watcher, err := watch.New(globals.Root, cfg.DebounceWindow(), clk, globals.Logger)
	if err != nil {
		return fmt.Errorf("starting filesystem watch: %w", err)
	}
	defer watcher.Close()

	orch := ingest.New(disc, ingest.NewState(), globals.Logger)
	follower := ingest.NewFollower(clk, cfg.FollowGrace(), c.FollowActive || cfg.FollowActive)

	model := tui.New(tui.Options{
		Orchestrator:    orch,
		Requests:        watcher.Requests(),
		Follower:        follower,
		Root:            globals.Root,
		RefreshInterval: cfg.RefreshInterval(),
		ShowThinking:    c.ShowThinking || cfg.ShowThinking,
		ExpandTools:     cfg.ExpandTools,
		Logger:          globals.Logger,
	})

	// Kick off the initial discovery before the program owns the update
	// loop; its result arrives as the first background message.
	orch.RequestDiscovery(context.Background())

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
