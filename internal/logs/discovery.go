package logs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vburojevic/agenttail/internal/domain"
)

// subagentsDirName is the per-session directory holding sub-agent logs
const subagentsDirName = "subagents"

// agentFilePrefix prefixes sub-agent log filenames: agent-<id>.jsonl
const agentFilePrefix = "agent-"

// ErrRootUnavailable reports a missing or unreadable log root at startup.
// Everything past startup degrades instead of failing.
type ErrRootUnavailable struct {
	Root string
	Err  error
}

func (e *ErrRootUnavailable) Error() string {
	return fmt.Sprintf("log root %s unavailable: %v", e.Root, e.Err)
}

func (e *ErrRootUnavailable) Unwrap() error { return e.Err }

// Discoverer walks the on-disk project/session/agent hierarchy and produces
// full snapshots with content-derived activity attached. It only reads the
// filesystem; it never mutates it.
type Discoverer struct {
	root   string
	limit  int
	logger *zap.Logger
}

// NewDiscoverer creates a Discoverer over the given log root. limit bounds
// how many project directories are walked concurrently; values below 1 fall
// back to 4.
func NewDiscoverer(root string, limit int, logger *zap.Logger) *Discoverer {
	if limit < 1 {
		limit = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{root: root, limit: limit, logger: logger}
}

// Root returns the log root directory being walked
func (d *Discoverer) Root() string { return d.root }

// CheckRoot verifies the log root exists and is a directory. This is the one
// fatal condition of the pipeline; it is checked once at startup.
func (d *Discoverer) CheckRoot() error {
	info, err := os.Stat(d.root)
	if err != nil {
		return &ErrRootUnavailable{Root: d.root, Err: err}
	}
	if !info.IsDir() {
		return &ErrRootUnavailable{Root: d.root, Err: fmt.Errorf("not a directory")}
	}
	return nil
}

// Discover produces the full current project tree, sorted by activity. A
// project directory that cannot be read yields an empty project rather than
// failing the pass; only an unreadable root returns an error.
func (d *Discoverer) Discover(ctx context.Context) ([]domain.Project, error) {
	dirs, err := os.ReadDir(d.root)
	if err != nil {
		return nil, &ErrRootUnavailable{Root: d.root, Err: err}
	}

	var mu sync.Mutex
	projects := make([]domain.Project, 0, len(dirs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		encoded := dir.Name()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			project := d.discoverProject(encoded)
			mu.Lock()
			projects = append(projects, project)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortProjects(projects)
	return projects, nil
}

func (d *Discoverer) discoverProject(encoded string) domain.Project {
	name, workspace := domain.DecodeProjectDir(encoded)
	project := domain.Project{
		Name:          name,
		Dir:           filepath.Join(d.root, encoded),
		EncodedName:   encoded,
		WorkspacePath: workspace,
	}

	sessions, err := d.DiscoverSessions(project.Dir)
	if err != nil {
		// Deleted or unreadable mid-scan: zero activity, not a failure.
		d.logger.Debug("project walk degraded", zap.String("dir", project.Dir), zap.Error(err))
		return project
	}
	project.Sessions = sessions
	project.LastActivity = maxSessionActivity(sessions)
	return project
}

// DiscoverSessions enumerates the sessions of one project directory, each
// with its agents attached and activity resolved bottom-up. The result is
// sorted by activity descending with ties broken by session ID.
func (d *Discoverer) DiscoverSessions(projectDir string) ([]domain.Session, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, err
	}

	summaries := loadSessionSummaries(filepath.Join(projectDir, "sessions-index.json"))

	// A session is named by its main log file, but the session directory can
	// appear first when the producer flushes sub-agent logs before the main
	// one. Collect IDs from both shapes.
	ids := make(map[string]struct{})
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case !entry.IsDir() && strings.HasSuffix(name, ".jsonl"):
			ids[strings.TrimSuffix(name, ".jsonl")] = struct{}{}
		case entry.IsDir():
			if _, err := os.Stat(filepath.Join(projectDir, name, subagentsDirName)); err == nil {
				ids[name] = struct{}{}
			}
		}
	}

	sessions := make([]domain.Session, 0, len(ids))
	for id := range ids {
		session := domain.Session{
			ID:      id,
			Dir:     projectDir,
			LogPath: filepath.Join(projectDir, id+".jsonl"),
			Summary: summaries[id],
		}
		session.Agents = d.discoverAgents(session)
		session.LastActivity = maxAgentActivity(session.Agents)
		sessions = append(sessions, session)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].LastActivity.Equal(sessions[j].LastActivity) {
			return sessions[i].LastActivity.After(sessions[j].LastActivity)
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions, nil
}

// discoverAgents lists the main agent plus any sub-agents of a session. The
// main log may not exist yet; it still appears with sentinel activity so the
// session shape stays stable while the producer catches up.
func (d *Discoverer) discoverAgents(session domain.Session) []domain.Agent {
	agents := []domain.Agent{{
		ID:           domain.MainAgentID,
		Name:         "Main",
		LogPath:      session.LogPath,
		LastActivity: LastActivity(session.LogPath),
		IsMain:       true,
	}}

	subDir := filepath.Join(session.Dir, session.ID, subagentsDirName)
	entries, err := os.ReadDir(subDir)
	if err != nil {
		return agents
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, agentFilePrefix) || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, agentFilePrefix), ".jsonl")
		path := filepath.Join(subDir, name)
		agents = append(agents, domain.Agent{
			ID:           id,
			Name:         id,
			LogPath:      path,
			LastActivity: LastActivity(path),
		})
	}

	sort.SliceStable(agents, func(i, j int) bool {
		if !agents[i].LastActivity.Equal(agents[j].LastActivity) {
			return agents[i].LastActivity.After(agents[j].LastActivity)
		}
		return agents[i].ID < agents[j].ID
	})
	return agents
}

// SortProjects orders projects by activity descending, ties broken by the
// encoded directory name so repeated passes are stable.
func SortProjects(projects []domain.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if !projects[i].LastActivity.Equal(projects[j].LastActivity) {
			return projects[i].LastActivity.After(projects[j].LastActivity)
		}
		return projects[i].EncodedName < projects[j].EncodedName
	})
}

func maxSessionActivity(sessions []domain.Session) time.Time {
	var max time.Time
	for _, s := range sessions {
		if s.LastActivity.After(max) {
			max = s.LastActivity
		}
	}
	return max
}

func maxAgentActivity(agents []domain.Agent) time.Time {
	var max time.Time
	for _, a := range agents {
		if a.LastActivity.After(max) {
			max = a.LastActivity
		}
	}
	return max
}

type sessionsIndex struct {
	Sessions map[string]struct {
		Summary string `json:"summary"`
	} `json:"sessions"`
}

func loadSessionSummaries(path string) map[string]string {
	summaries := make(map[string]string)
	data, err := os.ReadFile(path)
	if err != nil {
		return summaries
	}
	var index sessionsIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return summaries
	}
	for id, entry := range index.Sessions {
		summaries[id] = entry.Summary
	}
	return summaries
}
