package ingest

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vburojevic/agenttail/internal/domain"
)

// Selection addresses one agent in the sorted tree by index triple.
type Selection struct {
	Project int
	Session int
	Agent   int
}

// Follower computes the auto-follow selection: the path through the freshly
// sorted tree with the most recent activity. It defers to the user: a
// proposal is suppressed while a manual navigation is within the grace
// period, so the selector never fights input.
type Follower struct {
	clk     clock.Clock
	grace   time.Duration
	enabled bool

	lastManual time.Time
}

// NewFollower creates a Follower. A disabled Follower never proposes.
func NewFollower(clk clock.Clock, grace time.Duration, enabled bool) *Follower {
	return &Follower{clk: clk, grace: grace, enabled: enabled}
}

// Enabled reports whether auto-follow is active.
func (f *Follower) Enabled() bool { return f.enabled }

// Toggle flips auto-follow on or off and reports the new state.
func (f *Follower) Toggle() bool {
	f.enabled = !f.enabled
	return f.enabled
}

// NoteManual records that the user just navigated by hand.
func (f *Follower) NoteManual() {
	f.lastManual = f.clk.Now()
}

// Propose returns the most-active selection for a sorted tree. The tree is
// sorted descending at every level, so the most recent project and session
// sit at index 0; the agent index prefers the most recently active sub-agent
// and falls back to the main agent when none is newer. ok is false when
// auto-follow is off, the grace period is running, or the tree is empty.
func (f *Follower) Propose(projects []domain.Project) (Selection, bool) {
	if !f.enabled {
		return Selection{}, false
	}
	if !f.lastManual.IsZero() && f.clk.Now().Sub(f.lastManual) < f.grace {
		return Selection{}, false
	}
	if len(projects) == 0 || len(projects[0].Sessions) == 0 {
		return Selection{}, false
	}

	// Agents are sorted descending too, so index 0 is the most recently
	// active sub-agent, or the main agent when no sub-agent is newer.
	return Selection{}, true
}
