package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vburojevic/agenttail/internal/domain"
)

const sidebarWidth = 34

// View renders the full screen
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	conversation := m.viewport.View()

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		sidebar,
		borderStyle.Render(strings.Repeat("│\n", max(m.viewport.Height, 1))),
		conversation,
	)

	return header + "\n" + body + "\n" + m.renderStatusBar()
}

func (m Model) renderHeader() string {
	parts := []string{titleStyle.Render(" agenttail ")}

	projects := m.orch.State().Projects()
	if project := findProject(projects, m.selProject); project != nil {
		parts = append(parts, dimStyle.Render(project.AbbreviatedPath()))
		if session := findSession(project.Sessions, m.selSession); session != nil {
			parts = append(parts, dimStyle.Render(">"), assistantStyle.Render(session.Label()))
			if agent := findAgent(session.Agents, m.selAgent); agent != nil && !agent.IsMain {
				parts = append(parts, dimStyle.Render(">"), toolNameStyle.Render(agent.Name))
			}
		}
	}

	return strings.Join(parts, " ")
}

// renderSidebar stacks the three entity lists into a fixed-width column.
func (m Model) renderSidebar() string {
	height := m.viewport.Height
	listHeight := height / 3
	if listHeight < 2 {
		listHeight = 2
	}

	projects := m.orch.State().Projects()
	project := findProject(projects, m.selProject)

	var sessions []domain.Session
	var agents []domain.Agent
	if project != nil {
		sessions = project.Sessions
		if session := findSession(sessions, m.selSession); session != nil {
			agents = session.Agents
		}
	}

	projectLines := make([]string, 0, len(projects))
	for _, p := range projects {
		projectLines = append(projectLines, listLine(p.Name, p.Dir == m.selProject))
	}
	sessionLines := make([]string, 0, len(sessions))
	for _, s := range sessions {
		sessionLines = append(sessionLines, listLine(s.Label(), s.ID == m.selSession))
	}
	agentLines := make([]string, 0, len(agents))
	for _, a := range agents {
		agentLines = append(agentLines, listLine(a.DisplayName(), a.ID == m.selAgent))
	}

	var b strings.Builder
	b.WriteString(m.renderList("Projects", PaneProjects, projectLines, listHeight))
	b.WriteString("\n")
	b.WriteString(m.renderList("Sessions", PaneSessions, sessionLines, listHeight))
	b.WriteString("\n")
	b.WriteString(m.renderList("Agents", PaneAgents, agentLines, height-2*listHeight-2))
	return lipgloss.NewStyle().Width(sidebarWidth).Render(b.String())
}

func (m Model) renderList(title string, pane Pane, lines []string, height int) string {
	style := paneTitleStyle
	if m.focus == pane {
		style = paneFocusedStyle
	}

	var b strings.Builder
	b.WriteString(style.Render(title))
	shown := 0
	for _, line := range lines {
		if shown >= height-1 {
			b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("  +%d more", len(lines)-shown)))
			break
		}
		b.WriteString("\n" + line)
		shown++
	}
	for shown < height-1 {
		b.WriteString("\n")
		shown++
	}
	return b.String()
}

func listLine(label string, selected bool) string {
	label = truncate(label, sidebarWidth-2)
	if selected {
		return selectedStyle.Render("▸ " + label)
	}
	return "  " + label
}

// renderConversation formats the entry sequence for the viewport.
func (m Model) renderConversation(entries []domain.DisplayEntry) string {
	width := m.viewport.Width
	var b strings.Builder
	for _, entry := range entries {
		if entry.Kind == domain.EntryThinking && !m.showThinking {
			continue
		}
		line := m.renderEntry(entry, width)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(line)
	}

	if skipped := m.orch.State().Skipped(m.selPath); skipped > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(warningStyle.Render(fmt.Sprintf("! %d undecodable lines skipped", skipped)))
	}
	return b.String()
}

func (m Model) renderEntry(entry domain.DisplayEntry, width int) string {
	ts := ""
	if !entry.Timestamp.IsZero() {
		ts = timestampStyle.Render(entry.Timestamp.Local().Format("15:04:05")) + " "
	}

	switch entry.Kind {
	case domain.EntryUser:
		return ts + userStyle.Render("user") + "\n" + wrap(entry.Text, width)
	case domain.EntryAssistant:
		return ts + assistantStyle.Render(wrap(entry.Text, width))
	case domain.EntryThinking:
		return ts + thinkingStyle.Render(wrap(entry.Text, width))
	case domain.EntryToolCall:
		return ts + m.renderToolCall(entry, width)
	case domain.EntryToolResult:
		style := dimStyle
		if entry.IsError {
			style = toolErrorStyle
		}
		return ts + style.Render("⇒ "+wrap(entry.Text, width))
	case domain.EntryHook:
		label := entry.HookEvent
		if entry.HookName != "" {
			label += " " + entry.HookName
		}
		return ts + hookStyle.Render("⚑ "+label)
	case domain.EntryAgentSpawn:
		return ts + spawnStyle.Render("⇄ "+entry.AgentType+" "+entry.Text)
	}
	return ""
}

func (m Model) renderToolCall(entry domain.DisplayEntry, width int) string {
	tool := entry.Tool
	if tool == nil {
		return ""
	}

	head := toolNameStyle.Render("⚙ " + tool.Name)
	switch {
	case tool.Result == nil:
		head += " " + toolPendingStyle.Render("(running…)")
	case tool.Result.IsError:
		head += " " + toolErrorStyle.Render("(failed)")
	}

	var b strings.Builder
	b.WriteString(head)
	if m.expandTools && tool.Input != "" {
		b.WriteString("\n" + toolInputStyle.Render(indent(truncateLines(tool.Input, 8), "  ")))
	}
	if tool.Result != nil && tool.Result.Content != "" {
		style := dimStyle
		if tool.Result.IsError {
			style = toolErrorStyle
		}
		content := tool.Result.Content
		if !m.expandTools {
			content = truncateLines(content, 3)
		}
		b.WriteString("\n" + style.Render(indent(wrap(content, width-2), "  ")))
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	follow := "[f]ollow off"
	if m.stickBottom {
		follow = followOnStyle.Render("[F]ollow ON")
	}
	thinking := "[t]hinking off"
	if m.showThinking {
		thinking = "[T]hinking ON"
	}
	expand := "[e]xpand off"
	if m.expandTools {
		expand = "[E]xpand ON"
	}
	active := ""
	if m.follower.Enabled() {
		active = "  auto-follow"
	}

	status := fmt.Sprintf(" [q]uit [tab] pane [j/k] nav [g/G] top/bottom  %s  %s  %s%s  [?] help ",
		follow, thinking, expand, active)

	if m.errMsg != "" {
		return errorStatusStyle.Render(" "+m.errMsg+" ") + statusStyle.Render(status)
	}
	return statusStyle.Render(status)
}

func (m Model) renderHelp() string {
	help := `
  Navigation
  ──────────
  tab / shift+tab   Cycle panes
  j / k             Move down / up
  g / G             Top / bottom
  enter             Focus next pane

  Display
  ───────
  t                 Toggle thinking blocks
  e                 Toggle tool expansion
  f                 Toggle follow (stick to bottom)
  F                 Toggle auto-follow most active

  q / ctrl+c        Quit

  press any key to close
`
	return help
}

// truncate shortens s to at most n runes. Rune-based so multibyte text is
// never cut mid-character.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func truncateLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + dimStyle.Render(fmt.Sprintf("\n… %d more lines", len(lines)-n))
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// wrap hard-wraps long lines to the viewport width, splitting on rune
// boundaries; lipgloss styling is applied by callers after wrapping so widths
// stay honest.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		r := []rune(line)
		for len(r) > width {
			out = append(out, string(r[:width]))
			r = r[width:]
		}
		out = append(out, string(r))
	}
	return strings.Join(out, "\n")
}
