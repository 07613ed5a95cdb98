package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vburojevic/agenttail/internal/domain"
)

// NDJSONWriter writes display entries as NDJSON
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep conversation text unescaped
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// OutputEntry is the flattened NDJSON output format
type OutputEntry struct {
	Type          string `json:"type"` // Always "entry"
	SchemaVersion int    `json:"schemaVersion"`
	Kind          string `json:"kind"`
	Timestamp     string `json:"timestamp,omitempty"`
	Text          string `json:"text,omitempty"`
	ToolName      string `json:"tool_name,omitempty"`
	ToolID        string `json:"tool_id,omitempty"`
	ToolInput     string `json:"tool_input,omitempty"`
	ToolResult    string `json:"tool_result,omitempty"`
	ToolPending   bool   `json:"tool_pending,omitempty"`
	IsError       bool   `json:"is_error,omitempty"`
	HookEvent     string `json:"hook_event,omitempty"`
	HookName      string `json:"hook_name,omitempty"`
	AgentType     string `json:"agent_type,omitempty"`
}

// Warning is a soft-failure signal, e.g. undecodable lines skipped during a
// parse pass
type Warning struct {
	Type          string `json:"type"` // Always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
	Skipped       int    `json:"skipped,omitempty"`
}

// WriteEntry writes a display entry as one NDJSON line
func (n *NDJSONWriter) WriteEntry(entry domain.DisplayEntry) error {
	out := OutputEntry{
		Type:          "entry",
		SchemaVersion: 1,
		Kind:          string(entry.Kind),
		Text:          entry.Text,
		IsError:       entry.IsError,
		HookEvent:     entry.HookEvent,
		HookName:      entry.HookName,
		AgentType:     entry.AgentType,
	}
	if !entry.Timestamp.IsZero() {
		out.Timestamp = entry.Timestamp.UTC().Format(time.RFC3339)
	}
	if entry.Tool != nil {
		out.ToolName = entry.Tool.Name
		out.ToolID = entry.Tool.ID
		out.ToolInput = entry.Tool.Input
		if entry.Tool.Result != nil {
			out.ToolResult = entry.Tool.Result.Content
			out.IsError = entry.Tool.Result.IsError
		} else {
			out.ToolPending = true
		}
	}
	return n.encoder.Encode(out)
}

// WriteWarning writes a soft warning as one NDJSON line
func (n *NDJSONWriter) WriteWarning(message string, skipped int) error {
	return n.encoder.Encode(Warning{
		Type:          "warning",
		SchemaVersion: 1,
		Message:       message,
		Skipped:       skipped,
	})
}

// TextWriter renders display entries as plain lines for piping
type TextWriter struct {
	w io.Writer
}

// NewTextWriter creates a new text writer
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WriteEntry writes one display entry as readable text
func (t *TextWriter) WriteEntry(entry domain.DisplayEntry) error {
	prefix := ""
	if !entry.Timestamp.IsZero() {
		prefix = entry.Timestamp.Local().Format("15:04:05") + " "
	}

	var err error
	switch entry.Kind {
	case domain.EntryUser:
		_, err = fmt.Fprintf(t.w, "%s> %s\n", prefix, entry.Text)
	case domain.EntryAssistant:
		_, err = fmt.Fprintf(t.w, "%s%s\n", prefix, entry.Text)
	case domain.EntryThinking:
		_, err = fmt.Fprintf(t.w, "%s[thinking] %s\n", prefix, entry.Text)
	case domain.EntryToolCall:
		err = t.writeToolCall(prefix, entry)
	case domain.EntryToolResult:
		marker := "result"
		if entry.IsError {
			marker = "error"
		}
		_, err = fmt.Fprintf(t.w, "%s[%s %s] %s\n", prefix, marker, entry.ToolUseID, entry.Text)
	case domain.EntryHook:
		_, err = fmt.Fprintf(t.w, "%s[hook %s] %s\n", prefix, entry.HookEvent, entry.HookName)
	case domain.EntryAgentSpawn:
		_, err = fmt.Fprintf(t.w, "%s[agent %s] %s\n", prefix, entry.AgentType, entry.Text)
	default:
		_, err = fmt.Fprintf(t.w, "%s%s\n", prefix, entry.Text)
	}
	return err
}

func (t *TextWriter) writeToolCall(prefix string, entry domain.DisplayEntry) error {
	tool := entry.Tool
	if tool == nil {
		return nil
	}
	status := "running"
	if tool.Result != nil {
		status = "done"
		if tool.Result.IsError {
			status = "failed"
		}
	}
	if _, err := fmt.Fprintf(t.w, "%s[tool %s: %s]\n", prefix, tool.Name, status); err != nil {
		return err
	}
	if tool.Result != nil && tool.Result.Content != "" {
		if _, err := fmt.Fprintf(t.w, "  %s\n", tool.Result.Content); err != nil {
			return err
		}
	}
	return nil
}
