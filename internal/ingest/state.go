package ingest

import (
	"time"

	"github.com/vburojevic/agenttail/internal/domain"
	"github.com/vburojevic/agenttail/internal/logs"
)

// State is the normalized model: the sorted project tree plus per-agent entry
// sequences, parse cursors, and skipped-line counts keyed by log path. It is
// mutated only by Orchestrator.Apply on the control loop, so it carries no
// locks; background jobs never touch it.
type State struct {
	projects []domain.Project
	entries  map[string][]domain.DisplayEntry
	cursors  map[string]logs.Cursor
	skipped  map[string]int
}

// NewState creates an empty State.
func NewState() *State {
	return &State{
		entries: make(map[string][]domain.DisplayEntry),
		cursors: make(map[string]logs.Cursor),
		skipped: make(map[string]int),
	}
}

// Projects returns the current sorted tree snapshot.
func (s *State) Projects() []domain.Project { return s.projects }

// Entries returns the entry sequence held for an agent log path.
func (s *State) Entries(path string) []domain.DisplayEntry { return s.entries[path] }

// Cursor returns the parse cursor held for an agent log path.
func (s *State) Cursor(path string) logs.Cursor { return s.cursors[path] }

// Skipped returns how many undecodable lines the last refresh of path
// dropped.
func (s *State) Skipped(path string) int { return s.skipped[path] }

// Forget drops the entries and cursor for a log path, forcing the next parse
// to start from scratch. Called when an agent leaves the tree.
func (s *State) Forget(path string) {
	delete(s.entries, path)
	delete(s.cursors, path)
	delete(s.skipped, path)
}

func (s *State) applyTree(projects []domain.Project) {
	s.projects = projects
	s.pruneDeparted()
}

// applySessions splices a narrow per-project discovery result into the tree
// and restores the project-level ordering invariant.
func (s *State) applySessions(projectDir string, sessions []domain.Session) {
	for i := range s.projects {
		if s.projects[i].Dir != projectDir {
			continue
		}
		s.projects[i].Sessions = sessions
		s.projects[i].LastActivity = maxSessionActivity(sessions)
		logs.SortProjects(s.projects)
		s.pruneDeparted()
		return
	}
	// Unknown project: the tree snapshot predates it. The next full
	// discovery pass will pick it up.
}

// pruneDeparted forgets parse state for any log path no longer present in
// the tree, so deleted sessions and agents do not pin entry sequences
// forever.
func (s *State) pruneDeparted() {
	live := make(map[string]struct{})
	for _, project := range s.projects {
		for _, session := range project.Sessions {
			for _, agent := range session.Agents {
				live[agent.LogPath] = struct{}{}
			}
		}
	}
	for path := range s.entries {
		if _, ok := live[path]; !ok {
			s.Forget(path)
		}
	}
	for path := range s.cursors {
		if _, ok := live[path]; !ok {
			s.Forget(path)
		}
	}
}

// applyParse folds an accepted parse result into the entry sequence for path.
// A rotation result replaces the sequence outright so no pre-rotation pending
// state leaks; an incremental result appends and then settles cross-batch
// tool-result merges.
func (s *State) applyParse(path string, res *logs.ParseResult) {
	if res.Replace {
		s.entries[path] = res.Entries
	} else if len(res.Entries) > 0 {
		s.entries[path] = append(s.entries[path], res.Entries...)
	}

	seq := s.entries[path]
	for _, r := range res.Resolutions {
		if r.Index < 0 || r.Index >= len(seq) {
			continue
		}
		if tool := seq[r.Index].Tool; tool != nil && tool.Result == nil {
			outcome := r.Outcome
			tool.Result = &outcome
		}
	}

	s.cursors[path] = res.Cursor
	s.skipped[path] = res.Skipped
}

func maxSessionActivity(sessions []domain.Session) time.Time {
	var max time.Time
	for _, session := range sessions {
		if session.LastActivity.After(max) {
			max = session.LastActivity
		}
	}
	return max
}
