package domain

import "time"

// EntryKind identifies the renderer-facing shape of a DisplayEntry
type EntryKind string

const (
	EntryUser       EntryKind = "user"
	EntryAssistant  EntryKind = "assistant"
	EntryThinking   EntryKind = "thinking"
	EntryToolCall   EntryKind = "tool_call"
	EntryToolResult EntryKind = "tool_result"
	EntryHook       EntryKind = "hook"
	EntryAgentSpawn EntryKind = "agent_spawn"
)

// DisplayEntry is the normalized unit handed to the rendering layer. Most
// records map to one entry; a tool invocation and its later result merge
// into a single EntryToolCall carrying both halves.
type DisplayEntry struct {
	Kind      EntryKind
	Text      string
	Timestamp time.Time // zero when the record carried no timestamp

	// EntryToolCall
	Tool *ToolCall

	// EntryToolResult (a result that never found its invocation)
	ToolUseID string
	IsError   bool

	// EntryHook
	HookEvent string
	HookName  string
	Command   string

	// EntryAgentSpawn
	AgentType string
}

// ToolCall is the invocation half of a tool exchange. Result stays nil while
// the call is in flight.
type ToolCall struct {
	ID     string
	Name   string
	Input  string
	Result *ToolOutcome
}

// ToolOutcome is the result half merged into a ToolCall
type ToolOutcome struct {
	Content string
	IsError bool
}

// Pending reports whether the entry is a tool call still waiting for its
// result.
func (e DisplayEntry) Pending() bool {
	return e.Kind == EntryToolCall && e.Tool != nil && e.Tool.Result == nil
}
