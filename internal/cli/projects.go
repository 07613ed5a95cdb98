package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/vburojevic/agenttail/internal/logs"
)

// ProjectsCmd lists discovered projects with their activity
type ProjectsCmd struct {
	Format string `enum:"table,ndjson" default:"table" help:"Output format"`
}

// projectRow is the NDJSON shape of one project listing line
type projectRow struct {
	Name          string `json:"name"`
	WorkspacePath string `json:"workspace_path"`
	EncodedName   string `json:"encoded_name"`
	Sessions      int    `json:"sessions"`
	LastActivity  string `json:"last_activity,omitempty"`
}

// Run executes the projects command
func (c *ProjectsCmd) Run(globals *Globals) error {
	disc := logs.NewDiscoverer(globals.Root, globals.Config.Tuning.WalkConcurrency, globals.Logger)
	if err := disc.CheckRoot(); err != nil {
		return err
	}

	projects, err := disc.Discover(context.Background())
	if err != nil {
		return err
	}

	if c.Format == "ndjson" {
		enc := json.NewEncoder(globals.Stdout)
		for _, p := range projects {
			row := projectRow{
				Name:          p.Name,
				WorkspacePath: p.WorkspacePath,
				EncodedName:   p.EncodedName,
				Sessions:      len(p.Sessions),
			}
			if ts, ok := activityString(p.LastActivity); ok {
				row.LastActivity = ts
			}
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	}

	if len(projects) == 0 {
		fmt.Fprintln(globals.Stdout, "no projects found under", globals.Root)
		return nil
	}

	table := tablewriter.NewTable(globals.Stdout)
	table.Header("PROJECT", "SESSIONS", "LAST ACTIVITY", "PATH")
	for _, p := range projects {
		if err := table.Append(p.Name, fmt.Sprintf("%d", len(p.Sessions)), formatActivity(p.LastActivity), p.AbbreviatedPath()); err != nil {
			return err
		}
	}
	return table.Render()
}

// formatActivity renders an activity instant for table output. The epoch
// sentinel means nothing readable was ever found.
func formatActivity(t time.Time) string {
	if ts, ok := activityString(t); ok {
		return ts
	}
	return "-"
}

func activityString(t time.Time) (string, bool) {
	if t.IsZero() || t.Unix() == 0 {
		return "", false
	}
	return t.Local().Format("2006-01-02 15:04:05"), true
}
