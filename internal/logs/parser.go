package logs

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/vburojevic/agenttail/internal/domain"
)

// Cursor is the per-file incremental parse state: the byte offset of the next
// unread line, the number of entries emitted so far, and the invocations
// still waiting for a result (tool-call ID to absolute entry index).
type Cursor struct {
	Offset  int64
	Emitted int
	Pending map[string]int
}

// Resolution merges a tool result into an entry emitted by an earlier parse
// call. Index addresses the owner's full entry sequence for the file.
type Resolution struct {
	Index   int
	Outcome domain.ToolOutcome
}

// ParseResult is one incremental decode pass over a log file. When Replace is
// set the file rotated under the cursor and Entries is a full re-parse the
// caller must substitute for whatever it held before.
type ParseResult struct {
	Entries     []domain.DisplayEntry
	Resolutions []Resolution
	Cursor      Cursor
	Replace     bool
	Skipped     int
}

// ParseFrom decodes the complete lines appended to path since cursor. A
// trailing line without a terminator is left unconsumed for the next call.
// A line that fails to decode is skipped and counted, never fatal. A file
// shorter than the cursor offset is treated as rotated: state is discarded
// and the file re-parsed from the start.
func ParseFrom(path string, cursor Cursor) (ParseResult, error) {
	result := ParseResult{Cursor: cursor}

	f, err := os.Open(path)
	if err != nil {
		return result, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return result, err
	}

	if info.Size() < cursor.Offset {
		// Rotation or truncation. Recoverable: start over and tell the
		// caller to replace, not append.
		cursor = Cursor{}
		result = ParseResult{Cursor: cursor, Replace: true}
	}

	if _, err := f.Seek(cursor.Offset, io.SeekStart); err != nil {
		return result, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return result, err
	}

	// Only complete lines are consumed; the producer may be mid-write on the
	// final one.
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return result, nil
	}
	data = data[:end+1]

	p := parsePass{
		base:    cursor.Emitted,
		pending: clonePending(cursor.Pending),
	}
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var rec domain.RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			p.skipped++
			continue
		}
		p.convert(rec)
	}

	result.Entries = p.entries
	result.Resolutions = p.resolutions
	result.Skipped = p.skipped
	result.Cursor = Cursor{
		Offset:  cursor.Offset + int64(end+1),
		Emitted: cursor.Emitted + len(p.entries),
		Pending: p.pending,
	}
	return result, nil
}

// parsePass accumulates output for one ParseFrom call. base is the absolute
// index of the first entry this pass emits.
type parsePass struct {
	base        int
	entries     []domain.DisplayEntry
	resolutions []Resolution
	pending     map[string]int
	skipped     int
}

func clonePending(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (p *parsePass) convert(rec domain.RawRecord) {
	ts := recordTimestamp(rec.Timestamp)

	switch rec.Type {
	case domain.RecordUser:
		if rec.Message != nil {
			p.convertMessage(*rec.Message, ts)
		}
	case domain.RecordAssistant:
		if rec.Message != nil {
			p.convertMessage(*rec.Message, ts)
		}
	case domain.RecordProgress:
		p.convertProgress(rec.Data, ts)
	}
}

// convertMessage emits entries for one user or assistant message. Adjacent
// text blocks of a user message collapse into a single entry.
func (p *parsePass) convertMessage(msg domain.RecordMessage, ts time.Time) {
	text, blocks, ok := domain.DecodeContent(msg.Content)
	if !ok {
		return
	}

	if blocks == nil {
		if text == "" {
			return
		}
		kind := domain.EntryAssistant
		if msg.Role == "user" {
			kind = domain.EntryUser
		}
		p.emit(domain.DisplayEntry{Kind: kind, Text: text, Timestamp: ts})
		return
	}

	var userText []string
	flushUser := func() {
		if len(userText) > 0 {
			p.emit(domain.DisplayEntry{
				Kind:      domain.EntryUser,
				Text:      joinLines(userText),
				Timestamp: ts,
			})
			userText = nil
		}
	}

	for _, block := range blocks {
		switch block.Type {
		case domain.BlockText:
			if msg.Role == "user" {
				userText = append(userText, block.Text)
				continue
			}
			if block.Text != "" {
				p.emit(domain.DisplayEntry{Kind: domain.EntryAssistant, Text: block.Text, Timestamp: ts})
			}
		case domain.BlockThinking:
			if block.Thinking != "" {
				p.emit(domain.DisplayEntry{Kind: domain.EntryThinking, Text: block.Thinking, Timestamp: ts})
			}
		case domain.BlockToolUse:
			p.emitToolCall(block, ts)
		case domain.BlockToolResult:
			flushUser()
			p.emitToolResult(block.ToolUseID, toolResultText(block.Content), block.IsError, ts)
		}
	}
	flushUser()
}

// convertProgress handles the loose progress payload: nested messages from
// the running turn, hook events, and sub-agent spawns.
func (p *parsePass) convertProgress(data json.RawMessage, ts time.Time) {
	if len(data) == 0 {
		return
	}

	if msg := gjson.GetBytes(data, "message"); msg.Exists() {
		var nested domain.RecordMessage
		if err := json.Unmarshal([]byte(msg.Raw), &nested); err == nil {
			p.convertMessage(nested, ts)
		}
	}

	if event := gjson.GetBytes(data, "hookEvent"); event.Exists() {
		p.emit(domain.DisplayEntry{
			Kind:      domain.EntryHook,
			Timestamp: ts,
			HookEvent: event.String(),
			HookName:  gjson.GetBytes(data, "hookName").String(),
			Command:   gjson.GetBytes(data, "command").String(),
		})
	}

	if agentType := gjson.GetBytes(data, "agentType"); agentType.Exists() {
		p.emit(domain.DisplayEntry{
			Kind:      domain.EntryAgentSpawn,
			Timestamp: ts,
			AgentType: agentType.String(),
			Text:      gjson.GetBytes(data, "description").String(),
		})
	}
}

func (p *parsePass) emit(entry domain.DisplayEntry) {
	p.entries = append(p.entries, entry)
}

func (p *parsePass) emitToolCall(block domain.ContentBlock, ts time.Time) {
	name := block.Name
	if name == "" {
		name = "unknown"
	}
	p.emit(domain.DisplayEntry{
		Kind:      domain.EntryToolCall,
		Timestamp: ts,
		Tool: &domain.ToolCall{
			ID:    block.ID,
			Name:  name,
			Input: prettyJSON(block.Input),
		},
	})
	if block.ID != "" {
		p.pending[block.ID] = p.base + len(p.entries) - 1
	}
}

// emitToolResult merges a result into its pending invocation when one exists:
// in place when the invocation came from this pass, via a Resolution when it
// was emitted by an earlier one. An unmatched result stays a standalone entry.
func (p *parsePass) emitToolResult(toolUseID, content string, isError bool, ts time.Time) {
	idx, ok := p.pending[toolUseID]
	if !ok || toolUseID == "" {
		p.emit(domain.DisplayEntry{
			Kind:      domain.EntryToolResult,
			Text:      content,
			Timestamp: ts,
			ToolUseID: toolUseID,
			IsError:   isError,
		})
		return
	}
	delete(p.pending, toolUseID)

	outcome := domain.ToolOutcome{Content: content, IsError: isError}
	if idx >= p.base {
		local := &p.entries[idx-p.base]
		if local.Tool != nil {
			local.Tool.Result = &outcome
		}
		return
	}
	p.resolutions = append(p.resolutions, Resolution{Index: idx, Outcome: outcome})
}

func recordTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// toolResultText flattens a tool result payload: either a bare string or an
// array of text blocks.
func toolResultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	parsed := gjson.ParseBytes(raw)
	switch {
	case parsed.Type == gjson.String:
		return parsed.String()
	case parsed.IsArray():
		var parts []string
		parsed.ForEach(func(_, value gjson.Result) bool {
			if value.Get("type").String() == domain.BlockText {
				parts = append(parts, value.Get("text").String())
			}
			return true
		})
		return joinLines(parts)
	}
	return ""
}

// prettyJSON indents a tool input object for display, falling back to the
// raw bytes when it will not re-encode.
func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func joinLines(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	out := parts[0]
	for _, part := range parts[1:] {
		out += "\n" + part
	}
	return out
}
