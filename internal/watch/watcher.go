package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/vburojevic/agenttail/internal/domain"
)

// RequestKind classifies which slice of the hierarchy a change touched
type RequestKind int

const (
	// ProjectsChanged means the set of project directories changed
	ProjectsChanged RequestKind = iota
	// SessionsChanged means a project's session set or metadata changed
	SessionsChanged
	// AgentChanged means one agent's log file grew, shrank, or appeared
	AgentChanged
)

// Request is one debounced, classified refresh request. It is the debounce
// key, so two raw events collapse exactly when every field matches.
type Request struct {
	Kind    RequestKind
	Project string // project directory basename
	Session string // session ID
	Agent   string // agent ID, domain.MainAgentID for the session log
	Path    string // absolute log path for AgentChanged
}

// Watcher subscribes to filesystem notifications under the log root and
// turns raw event bursts into classified refresh requests. fsnotify does not
// recurse, so project, session and subagent directories are added as they
// are seen; newly created directories are picked up from create events.
type Watcher struct {
	root   string
	fs     *fsnotify.Watcher
	deb    *Debouncer
	logger *zap.Logger
	done   chan struct{}
	wg     sync.WaitGroup
}

// New starts a Watcher over root with the given debounce window.
func New(root string, window time.Duration, clk clock.Clock, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:   root,
		fs:     fs,
		deb:    NewDebouncer(clk, window),
		logger: logger,
		done:   make(chan struct{}),
	}

	if err := fs.Add(root); err != nil {
		fs.Close()
		w.deb.Close()
		return nil, err
	}
	w.addExistingDirs()

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Requests returns the channel of debounced refresh requests.
func (w *Watcher) Requests() <-chan Request {
	return w.deb.Requests()
}

// Close stops the filesystem subscription and the debouncer.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	w.deb.Close()
	return err
}

// addExistingDirs registers the directory levels that already exist. Watch
// registration failures are degraded to log lines; the periodic discovery
// timer covers anything missed.
func (w *Watcher) addExistingDirs() {
	projects, err := os.ReadDir(w.root)
	if err != nil {
		return
	}
	for _, project := range projects {
		if !project.IsDir() {
			continue
		}
		projectDir := filepath.Join(w.root, project.Name())
		w.addDir(projectDir)

		sessions, err := os.ReadDir(projectDir)
		if err != nil {
			continue
		}
		for _, session := range sessions {
			if !session.IsDir() {
				continue
			}
			// The session dir itself must be watched too: a subagents dir
			// created later inside it is not a direct child of the project
			// dir and would otherwise produce no event.
			sessionDir := filepath.Join(projectDir, session.Name())
			w.addDir(sessionDir)
			sub := filepath.Join(sessionDir, subagentsDir)
			if _, err := os.Stat(sub); err == nil {
				w.addDir(sub)
			}
		}
	}
}

func (w *Watcher) addDir(dir string) {
	if err := w.fs.Add(dir); err != nil {
		w.logger.Debug("watch add failed", zap.String("dir", dir), zap.Error(err))
	}
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.addDir(ev.Name)
			// A fresh session dir may already hold a subagents dir.
			sub := filepath.Join(ev.Name, subagentsDir)
			if _, err := os.Stat(sub); err == nil {
				w.addDir(sub)
			}
		}
	}

	if r, ok := w.classify(ev.Name); ok {
		w.deb.Note(r)
	}
}

const subagentsDir = "subagents"

// classify maps an event path to the narrowest hierarchy entity it affects.
// Path shapes under the root:
//
//	<project>                          project set changed
//	<project>/<session>.jsonl          main agent log
//	<project>/<anything else>          session metadata
//	<project>/<session>/subagents/agent-<id>.jsonl
func (w *Watcher) classify(path string) (Request, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return Request{}, false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	switch len(parts) {
	case 1:
		return Request{Kind: ProjectsChanged}, true
	case 2:
		project, name := parts[0], parts[1]
		if strings.HasSuffix(name, ".jsonl") {
			return Request{
				Kind:    AgentChanged,
				Project: project,
				Session: strings.TrimSuffix(name, ".jsonl"),
				Agent:   domain.MainAgentID,
				Path:    path,
			}, true
		}
		return Request{Kind: SessionsChanged, Project: project}, true
	case 4:
		project, session, dir, name := parts[0], parts[1], parts[2], parts[3]
		if dir == subagentsDir && strings.HasPrefix(name, "agent-") && strings.HasSuffix(name, ".jsonl") {
			return Request{
				Kind:    AgentChanged,
				Project: project,
				Session: session,
				Agent:   strings.TrimSuffix(strings.TrimPrefix(name, "agent-"), ".jsonl"),
				Path:    path,
			}, true
		}
	}
	return Request{Kind: SessionsChanged, Project: parts[0]}, true
}
