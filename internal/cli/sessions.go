package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/vburojevic/agenttail/internal/domain"
	"github.com/vburojevic/agenttail/internal/logs"
)

// SessionsCmd lists the sessions of one project
type SessionsCmd struct {
	Project string `arg:"" help:"Project name or encoded directory name"`
	Format  string `enum:"table,ndjson" default:"table" help:"Output format"`
}

// sessionRow is the NDJSON shape of one session listing line
type sessionRow struct {
	ID           string `json:"id"`
	Summary      string `json:"summary,omitempty"`
	Agents       int    `json:"agents"`
	LogPath      string `json:"log_path"`
	LastActivity string `json:"last_activity,omitempty"`
}

// Run executes the sessions command
func (c *SessionsCmd) Run(globals *Globals) error {
	disc := logs.NewDiscoverer(globals.Root, globals.Config.Tuning.WalkConcurrency, globals.Logger)
	if err := disc.CheckRoot(); err != nil {
		return err
	}

	projects, err := disc.Discover(context.Background())
	if err != nil {
		return err
	}

	var project *domain.Project
	for i := range projects {
		if projects[i].Name == c.Project || projects[i].EncodedName == c.Project {
			project = &projects[i]
			break
		}
	}
	if project == nil {
		return fmt.Errorf("no project named %q under %s", c.Project, globals.Root)
	}

	if c.Format == "ndjson" {
		enc := json.NewEncoder(globals.Stdout)
		for _, s := range project.Sessions {
			row := sessionRow{
				ID:      s.ID,
				Summary: s.Summary,
				Agents:  len(s.Agents),
				LogPath: s.LogPath,
			}
			if ts, ok := activityString(s.LastActivity); ok {
				row.LastActivity = ts
			}
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	}

	table := tablewriter.NewTable(globals.Stdout)
	table.Header("SESSION", "SUMMARY", "AGENTS", "LAST ACTIVITY")
	for _, s := range project.Sessions {
		if err := table.Append(s.ShortID(), s.Summary, fmt.Sprintf("%d", len(s.Agents)), formatActivity(s.LastActivity)); err != nil {
			return err
		}
	}
	return table.Render()
}
