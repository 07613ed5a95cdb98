package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vburojevic/agenttail/internal/ingest"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.focus = (m.focus + 1) % 4
	case "shift+tab":
		m.focus = (m.focus + 3) % 4

	case "?":
		m.showHelp = true

	case "t":
		m.showThinking = !m.showThinking
		m.refreshConversation()
	case "e":
		m.expandTools = !m.expandTools
		m.refreshConversation()
	case "f":
		m.stickBottom = !m.stickBottom
		if m.stickBottom {
			m.viewport.GotoBottom()
		}
	case "F":
		m.follower.Toggle()

	case "j", "down":
		return m.move(1)
	case "k", "up":
		return m.move(-1)
	case "g":
		if m.focus == PaneConversation {
			m.viewport.GotoTop()
			m.stickBottom = false
		}
	case "G":
		if m.focus == PaneConversation {
			m.viewport.GotoBottom()
			m.stickBottom = true
		}
	case "ctrl+d":
		if m.focus == PaneConversation {
			m.viewport.HalfViewDown()
		}
	case "ctrl+u":
		if m.focus == PaneConversation {
			m.viewport.HalfViewUp()
			m.stickBottom = false
		}

	case "enter":
		if m.focus < PaneConversation {
			m.focus++
		}
	}

	return m, nil
}

// move shifts the selection within the focused pane, or scrolls the
// conversation when it owns focus. List moves count as manual navigation
// for the auto-follow grace period.
func (m Model) move(delta int) (tea.Model, tea.Cmd) {
	if m.focus == PaneConversation {
		if delta > 0 {
			m.viewport.LineDown(1)
		} else {
			m.viewport.LineUp(1)
			m.stickBottom = false
		}
		return m, nil
	}

	sel, ok := m.currentIndexes()
	if !ok {
		return m, nil
	}
	switch m.focus {
	case PaneProjects:
		sel.Project += delta
		sel.Session, sel.Agent = 0, 0
	case PaneSessions:
		sel.Session += delta
		sel.Agent = 0
	case PaneAgents:
		sel.Agent += delta
	}
	if m.clampSelection(&sel) {
		m.applySelection(sel, true)
	}
	return m, nil
}

// currentIndexes resolves the identity-based selection to index form.
func (m Model) currentIndexes() (ingest.Selection, bool) {
	projects := m.orch.State().Projects()
	project := findProject(projects, m.selProject)
	if project == nil {
		return ingest.Selection{}, len(projects) > 0
	}
	sel := ingest.Selection{}
	for i := range projects {
		if projects[i].Dir == m.selProject {
			sel.Project = i
			break
		}
	}
	for i := range project.Sessions {
		if project.Sessions[i].ID == m.selSession {
			sel.Session = i
			break
		}
	}
	if session := findSession(project.Sessions, m.selSession); session != nil {
		for i := range session.Agents {
			if session.Agents[i].ID == m.selAgent {
				sel.Agent = i
				break
			}
		}
	}
	return sel, true
}

// clampSelection bounds an index triple against the current tree; false
// means there is nothing to select at all.
func (m Model) clampSelection(sel *ingest.Selection) bool {
	projects := m.orch.State().Projects()
	if len(projects) == 0 {
		return false
	}
	sel.Project = clamp(sel.Project, len(projects))
	sessions := projects[sel.Project].Sessions
	if len(sessions) == 0 {
		return false
	}
	sel.Session = clamp(sel.Session, len(sessions))
	agents := sessions[sel.Session].Agents
	if len(agents) == 0 {
		return false
	}
	sel.Agent = clamp(sel.Agent, len(agents))
	return true
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
