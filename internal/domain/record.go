package domain

import (
	"bytes"
	"encoding/json"
)

// Record kinds as written by the producer
const (
	RecordUser      = "user"
	RecordAssistant = "assistant"
	RecordProgress  = "progress"
	RecordSummary   = "summary"
)

// RawRecord mirrors one decoded line of a conversation log file. Fields the
// viewer does not render are left out; unknown fields are ignored.
type RawRecord struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp,omitempty"`
	Message   *RecordMessage  `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

// RecordMessage is the message body of a user or assistant record. Content is
// either a bare string or an array of content blocks.
type RecordMessage struct {
	Role    string          `json:"role,omitempty"`
	Model   string          `json:"model,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// Content block kinds inside a message
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
	BlockThinking   = "thinking"
)

// ContentBlock is one element of a message content array. The same shape
// covers all block kinds; which fields are set depends on Type.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// DecodeContent splits a message content payload into its two possible
// shapes: a plain string or a list of blocks. Returns ok=false when the
// payload is neither.
func DecodeContent(raw json.RawMessage) (text string, blocks []ContentBlock, ok bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil, false
	}
	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", nil, false
		}
		return text, nil, true
	case '[':
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return "", nil, false
		}
		return "", blocks, true
	}
	return "", nil, false
}
