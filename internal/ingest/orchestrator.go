package ingest

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vburojevic/agenttail/internal/domain"
	"github.com/vburojevic/agenttail/internal/logs"
)

// TargetKind names the three classes of background work
type TargetKind int

const (
	// TargetTree is a full-tree discovery pass
	TargetTree TargetKind = iota
	// TargetSessions is a narrow per-project session rediscovery
	TargetSessions
	// TargetParse is an incremental parse of one agent log
	TargetParse
)

// Target identifies one logical refresh owner. Each distinct Target carries
// its own generation counter.
type Target struct {
	Kind       TargetKind
	ProjectDir string // TargetSessions
	Path       string // TargetParse: agent log path
}

// Result is the immutable payload a background job delivers back to the
// control loop. Exactly one of Tree, Sessions, Parse is set on success.
type Result struct {
	Target   Target
	Gen      uint64
	Tree     []domain.Project
	Sessions []domain.Session
	Parse    *logs.ParseResult
	Err      error
}

// Orchestrator turns refresh requests into background jobs and reconciles
// their results against per-target generation counters. Requests and Apply
// must be called from the control loop only; that single-threading, plus the
// generation check, is the whole concurrency story. Jobs read the
// filesystem, produce a Result, and never touch shared state.
type Orchestrator struct {
	disc    *logs.Discoverer
	state   *State
	logger  *zap.Logger
	gens    map[Target]uint64
	results chan Result
	wg      sync.WaitGroup
}

// New creates an Orchestrator over a Discoverer and the State it feeds.
func New(disc *logs.Discoverer, state *State, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		disc:    disc,
		state:   state,
		logger:  logger,
		gens:    make(map[Target]uint64),
		results: make(chan Result, 16),
	}
}

// Results returns the single-consumer channel the control loop must drain.
func (o *Orchestrator) Results() <-chan Result {
	return o.results
}

// State returns the normalized model the orchestrator maintains.
func (o *Orchestrator) State() *State {
	return o.state
}

// Wait blocks until every dispatched job has delivered its result. The
// results channel must be drained concurrently or jobs cannot finish.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// RequestDiscovery schedules a full-tree discovery pass.
func (o *Orchestrator) RequestDiscovery(ctx context.Context) {
	target := Target{Kind: TargetTree}
	gen := o.bump(target)
	o.dispatch(func() Result {
		tree, err := o.disc.Discover(ctx)
		return Result{Target: target, Gen: gen, Tree: tree, Err: err}
	})
}

// RequestSessions schedules a session rediscovery for one project directory.
func (o *Orchestrator) RequestSessions(projectDir string) {
	target := Target{Kind: TargetSessions, ProjectDir: projectDir}
	gen := o.bump(target)
	o.dispatch(func() Result {
		sessions, err := o.disc.DiscoverSessions(projectDir)
		return Result{Target: target, Gen: gen, Sessions: sessions, Err: err}
	})
}

// RequestParse schedules an incremental parse of one agent log, threading the
// cursor held for it so repeated changes reparse only the appended tail.
func (o *Orchestrator) RequestParse(path string) {
	target := Target{Kind: TargetParse, Path: path}
	gen := o.bump(target)
	cursor := o.state.Cursor(path)
	o.dispatch(func() Result {
		res, err := logs.ParseFrom(path, cursor)
		if err != nil {
			return Result{Target: target, Gen: gen, Err: err}
		}
		return Result{Target: target, Gen: gen, Parse: &res}
	})
}

// Apply folds a completed job into the State. A result whose generation was
// superseded between dispatch and completion is dropped with no visible
// effect; Apply reports whether the result was accepted.
func (o *Orchestrator) Apply(res Result) bool {
	if o.gens[res.Target] != res.Gen {
		o.logger.Debug("stale result dropped",
			zap.Int("kind", int(res.Target.Kind)),
			zap.Uint64("gen", res.Gen),
			zap.Uint64("current", o.gens[res.Target]))
		return false
	}
	if res.Err != nil {
		// Degraded, not fatal: keep showing the previous snapshot.
		o.logger.Warn("refresh failed", zap.Int("kind", int(res.Target.Kind)), zap.Error(res.Err))
		return false
	}

	switch res.Target.Kind {
	case TargetTree:
		o.state.applyTree(res.Tree)
	case TargetSessions:
		o.state.applySessions(res.Target.ProjectDir, res.Sessions)
	case TargetParse:
		o.state.applyParse(res.Target.Path, res.Parse)
	}
	return true
}

func (o *Orchestrator) bump(target Target) uint64 {
	o.gens[target]++
	return o.gens[target]
}

// dispatch runs job off the control loop and delivers its result. There is
// no cancellation: a superseded job runs to completion and its result is
// discarded by the generation check on arrival.
func (o *Orchestrator) dispatch(job func() Result) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.results <- job()
	}()
}
