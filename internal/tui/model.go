package tui

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/vburojevic/agenttail/internal/domain"
	"github.com/vburojevic/agenttail/internal/ingest"
	"github.com/vburojevic/agenttail/internal/watch"
)

// Pane identifies which panel has keyboard focus
type Pane int

const (
	PaneProjects Pane = iota
	PaneSessions
	PaneAgents
	PaneConversation
)

// Options configures the TUI model
type Options struct {
	Orchestrator    *ingest.Orchestrator
	Requests        <-chan watch.Request
	Follower        *ingest.Follower
	Root            string
	RefreshInterval time.Duration
	ShowThinking    bool
	ExpandTools     bool
	Logger          *zap.Logger
}

// Model is the bubbletea model for the log viewer. All mutation of the
// normalized state happens here, on the program's single update goroutine;
// background work arrives as resultMsg values and goes through the
// orchestrator's generation check before it becomes visible.
type Model struct {
	orch     *ingest.Orchestrator
	requests <-chan watch.Request
	follower *ingest.Follower
	logger   *zap.Logger

	root            string
	refreshInterval time.Duration

	focus Pane

	// Selection is tracked by identity, not index: discovery re-sorts the
	// tree under us and indexes would silently drift.
	selProject string // project dir
	selSession string // session ID
	selAgent   string // agent ID
	selPath    string // selected agent's log path

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	showThinking bool
	expandTools  bool
	stickBottom  bool
	showHelp     bool
	errMsg       string
}

// resultMsg delivers one background-job completion
type resultMsg ingest.Result

// requestMsg delivers one debounced filesystem refresh request
type requestMsg watch.Request

// refreshTickMsg fires the periodic full-discovery safety net
type refreshTickMsg time.Time

// New creates a TUI model. The caller is expected to have dispatched an
// initial discovery before the program starts.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		orch:            opts.Orchestrator,
		requests:        opts.Requests,
		follower:        opts.Follower,
		logger:          logger,
		root:            opts.Root,
		refreshInterval: opts.RefreshInterval,
		focus:           PaneSessions,
		showThinking:    opts.ShowThinking,
		expandTools:     opts.ExpandTools,
		stickBottom:     true,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForResult(m.orch.Results()),
		waitForRequest(m.requests),
		refreshTick(m.refreshInterval),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultMsg:
		cmds := []tea.Cmd{waitForResult(m.orch.Results())}
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		} else {
			m.errMsg = ""
		}
		if m.orch.Apply(ingest.Result(msg)) {
			switch msg.Target.Kind {
			case ingest.TargetTree, ingest.TargetSessions:
				if cmd := m.afterTreeChange(); cmd != nil {
					cmds = append(cmds, cmd)
				}
			case ingest.TargetParse:
				if msg.Target.Path == m.selPath {
					m.refreshConversation()
				}
			}
		}
		return m, tea.Batch(cmds...)

	case requestMsg:
		cmds := []tea.Cmd{waitForRequest(m.requests)}
		m.dispatchForRequest(watch.Request(msg))
		return m, tea.Batch(cmds...)

	case refreshTickMsg:
		m.orch.RequestDiscovery(context.Background())
		return m, refreshTick(m.refreshInterval)
	}

	return m, nil
}

// dispatchForRequest turns a classified filesystem change into the narrowest
// background refresh that covers it.
func (m *Model) dispatchForRequest(r watch.Request) {
	switch r.Kind {
	case watch.ProjectsChanged:
		m.orch.RequestDiscovery(context.Background())
	case watch.SessionsChanged:
		m.orch.RequestSessions(filepath.Join(m.root, r.Project))
	case watch.AgentChanged:
		// Activity moved: the session list recency needs recomputing even
		// when the file is not on screen.
		m.orch.RequestSessions(filepath.Join(m.root, r.Project))
		if r.Path == m.selPath {
			m.orch.RequestParse(r.Path)
		}
	}
}

// afterTreeChange re-resolves the selection against the freshly sorted tree
// and lets auto-follow propose a move. Returns a command when a new parse
// was dispatched for a selection change.
func (m *Model) afterTreeChange() tea.Cmd {
	m.reanchorSelection()

	if sel, ok := m.follower.Propose(m.orch.State().Projects()); ok {
		m.applySelection(sel, false)
	}
	return nil
}

// reanchorSelection maps the identity-based selection back onto the new
// tree, falling back level by level to the most recent entry when the old
// target disappeared.
func (m *Model) reanchorSelection() {
	projects := m.orch.State().Projects()
	if len(projects) == 0 {
		m.selProject, m.selSession, m.selAgent, m.selPath = "", "", "", ""
		return
	}

	project := findProject(projects, m.selProject)
	if project == nil {
		project = &projects[0]
		m.selSession = ""
	}
	m.selProject = project.Dir

	if len(project.Sessions) == 0 {
		m.selSession, m.selAgent, m.selPath = "", "", ""
		return
	}
	session := findSession(project.Sessions, m.selSession)
	if session == nil {
		session = &project.Sessions[0]
		m.selAgent = ""
	}
	m.selSession = session.ID

	if len(session.Agents) == 0 {
		m.selAgent, m.selPath = "", ""
		return
	}
	agent := findAgent(session.Agents, m.selAgent)
	if agent == nil {
		agent = &session.Agents[0]
	}
	m.selAgent = agent.ID
	if agent.LogPath != m.selPath {
		m.selectAgentPath(agent.LogPath)
	}
}

// applySelection moves the selection to an index triple in the sorted tree.
// Auto-follow proposals and manual navigation both land here so they share
// the same downstream parse path; manual marks the grace period.
func (m *Model) applySelection(sel ingest.Selection, manual bool) {
	projects := m.orch.State().Projects()
	if sel.Project >= len(projects) {
		return
	}
	project := projects[sel.Project]
	if sel.Session >= len(project.Sessions) {
		return
	}
	session := project.Sessions[sel.Session]
	if sel.Agent >= len(session.Agents) {
		return
	}
	agent := session.Agents[sel.Agent]

	if manual {
		m.follower.NoteManual()
	}
	changed := m.selPath != agent.LogPath
	m.selProject = project.Dir
	m.selSession = session.ID
	m.selAgent = agent.ID
	if changed {
		m.selectAgentPath(agent.LogPath)
	}
}

// selectAgentPath points the conversation at a new log file and kicks off
// its (incremental or initial) parse.
func (m *Model) selectAgentPath(path string) {
	m.selPath = path
	m.stickBottom = true
	m.refreshConversation()
	m.orch.RequestParse(path)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vpWidth := width - sidebarWidth - 1
	vpHeight := height - 3 // header + status bar
	if vpWidth < 10 {
		vpWidth = 10
	}
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.refreshConversation()
}

// refreshConversation re-renders the selected agent's entries into the
// viewport, keeping the bottom pinned while following.
func (m *Model) refreshConversation() {
	if !m.ready {
		return
	}
	entries := m.orch.State().Entries(m.selPath)
	m.viewport.SetContent(m.renderConversation(entries))
	if m.stickBottom {
		m.viewport.GotoBottom()
	}
}

func waitForResult(ch <-chan ingest.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return resultMsg(res)
	}
}

func waitForRequest(ch <-chan watch.Request) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return requestMsg(r)
	}
}

func refreshTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func findProject(projects []domain.Project, dir string) *domain.Project {
	for i := range projects {
		if projects[i].Dir == dir {
			return &projects[i]
		}
	}
	return nil
}

func findSession(sessions []domain.Session, id string) *domain.Session {
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i]
		}
	}
	return nil
}

func findAgent(agents []domain.Agent, id string) *domain.Agent {
	for i := range agents {
		if agents[i].ID == id {
			return &agents[i]
		}
	}
	return nil
}
