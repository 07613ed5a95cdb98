package logs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/agenttail/internal/domain"
)

const (
	userLine = `{"type":"user","timestamp":"2026-08-25T10:00:00Z","message":{"role":"user","content":"run the tests"}}` + "\n"
	toolLine = `{"type":"assistant","timestamp":"2026-08-25T10:00:01Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"tu_1","name":"Bash","input":{"command":"go test"}}]}}` + "\n"
	// Results arrive as user records carrying tool_result blocks.
	resultLine = `{"type":"user","timestamp":"2026-08-25T10:00:02Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu_1","content":"ok"}]}}` + "\n"
)

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestParseFromBasic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	appendFile(t, path, userLine+toolLine+resultLine)

	result, err := ParseFrom(path, Cursor{})
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.Equal(t, domain.EntryUser, result.Entries[0].Kind)
	assert.Equal(t, "run the tests", result.Entries[0].Text)

	// In-batch merge: invocation and result collapse into one entry.
	tool := result.Entries[1]
	assert.Equal(t, domain.EntryToolCall, tool.Kind)
	require.NotNil(t, tool.Tool)
	assert.Equal(t, "Bash", tool.Tool.Name)
	require.NotNil(t, tool.Tool.Result)
	assert.Equal(t, "ok", tool.Tool.Result.Content)
	assert.False(t, tool.Tool.Result.IsError)

	assert.Empty(t, result.Resolutions)
	assert.Empty(t, result.Cursor.Pending)
	assert.Equal(t, 2, result.Cursor.Emitted)
	assert.Zero(t, result.Skipped)
}

func TestParseFromCrossBatchMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	appendFile(t, path, userLine+toolLine)

	first, err := ParseFrom(path, Cursor{})
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	assert.True(t, first.Entries[1].Pending())
	assert.Equal(t, map[string]int{"tu_1": 1}, first.Cursor.Pending)

	appendFile(t, path, resultLine)
	second, err := ParseFrom(path, first.Cursor)
	require.NoError(t, err)

	// The result resolves an entry from the previous pass, so it surfaces as
	// a Resolution instead of a new entry.
	assert.Empty(t, second.Entries)
	require.Len(t, second.Resolutions, 1)
	assert.Equal(t, 1, second.Resolutions[0].Index)
	assert.Equal(t, "ok", second.Resolutions[0].Outcome.Content)
	assert.Empty(t, second.Cursor.Pending)
}

func TestParseFromIncrementalMatchesFull(t *testing.T) {
	full := userLine + toolLine + resultLine
	dir := t.TempDir()

	onePass := filepath.Join(dir, "one.jsonl")
	appendFile(t, onePass, full)
	wholeResult, err := ParseFrom(onePass, Cursor{})
	require.NoError(t, err)

	split := filepath.Join(dir, "split.jsonl")
	var entries []domain.DisplayEntry
	cursor := Cursor{}
	for _, chunk := range []string{userLine, toolLine, resultLine} {
		appendFile(t, split, chunk)
		result, err := ParseFrom(split, cursor)
		require.NoError(t, err)
		entries = append(entries, result.Entries...)
		for _, res := range result.Resolutions {
			outcome := res.Outcome
			entries[res.Index].Tool.Result = &outcome
		}
		cursor = result.Cursor
	}

	assert.Equal(t, wholeResult.Entries, entries)
	assert.Equal(t, wholeResult.Cursor.Emitted, cursor.Emitted)
	assert.Equal(t, wholeResult.Cursor.Offset, cursor.Offset)
}

func TestParseFromUnterminatedLineUnconsumed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	partial := `{"type":"assistant","timestamp":"2026-08-2`
	appendFile(t, path, userLine+partial)

	first, err := ParseFrom(path, Cursor{})
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)
	assert.Equal(t, int64(len(userLine)), first.Cursor.Offset)
	assert.Zero(t, first.Skipped)

	// Finishing the line later produces the record intact.
	rest := `5T10:01:00Z","message":{"role":"assistant","content":"done"}}` + "\n"
	appendFile(t, path, rest)
	second, err := ParseFrom(path, first.Cursor)
	require.NoError(t, err)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, domain.EntryAssistant, second.Entries[0].Kind)
	assert.Equal(t, "done", second.Entries[0].Text)
}

func TestParseFromRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	appendFile(t, path, userLine+toolLine)

	first, err := ParseFrom(path, Cursor{})
	require.NoError(t, err)
	require.NotEmpty(t, first.Cursor.Pending)

	// Truncate below the cursor offset: the file was replaced.
	require.NoError(t, os.WriteFile(path, []byte(userLine), 0o644))

	second, err := ParseFrom(path, first.Cursor)
	require.NoError(t, err)
	assert.True(t, second.Replace)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, domain.EntryUser, second.Entries[0].Kind)

	// No pending state leaks across the rotation.
	assert.Empty(t, second.Cursor.Pending)
	assert.Equal(t, 1, second.Cursor.Emitted)
}

func TestParseFromSkipsUndecodableLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	appendFile(t, path, userLine+"not json at all\n"+toolLine)

	result, err := ParseFrom(path, Cursor{})
	require.NoError(t, err)
	assert.Len(t, result.Entries, 2)
	assert.Equal(t, 1, result.Skipped)
}

func TestParseFromUnmatchedResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	appendFile(t, path, resultLine)

	result, err := ParseFrom(path, Cursor{})
	require.NoError(t, err)

	// No pending invocation: the result stays a standalone entry.
	require.Len(t, result.Entries, 1)
	assert.Equal(t, domain.EntryToolResult, result.Entries[0].Kind)
	assert.Equal(t, "tu_1", result.Entries[0].ToolUseID)
	assert.Equal(t, "ok", result.Entries[0].Text)
	assert.Empty(t, result.Resolutions)
}

func TestParseFromThinkingAndText(t *testing.T) {
	line := `{"type":"assistant","timestamp":"2026-08-25T10:00:00Z","message":{"role":"assistant","content":[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"answer"}]}}` + "\n"
	path := filepath.Join(t.TempDir(), "s.jsonl")
	appendFile(t, path, line)

	result, err := ParseFrom(path, Cursor{})
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, domain.EntryThinking, result.Entries[0].Kind)
	assert.Equal(t, "hmm", result.Entries[0].Text)
	assert.Equal(t, domain.EntryAssistant, result.Entries[1].Kind)
	assert.Equal(t, "answer", result.Entries[1].Text)
}

func TestParseFromProgressRecords(t *testing.T) {
	hook := `{"type":"progress","timestamp":"2026-08-25T10:00:00Z","data":{"hookEvent":"PreToolUse","hookName":"lint","command":"golangci-lint run"}}` + "\n"
	spawn := `{"type":"progress","timestamp":"2026-08-25T10:00:01Z","data":{"agentType":"researcher","description":"dig through the docs"}}` + "\n"
	path := filepath.Join(t.TempDir(), "s.jsonl")
	appendFile(t, path, hook+spawn)

	result, err := ParseFrom(path, Cursor{})
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)

	assert.Equal(t, domain.EntryHook, result.Entries[0].Kind)
	assert.Equal(t, "PreToolUse", result.Entries[0].HookEvent)
	assert.Equal(t, "lint", result.Entries[0].HookName)
	assert.Equal(t, "golangci-lint run", result.Entries[0].Command)

	assert.Equal(t, domain.EntryAgentSpawn, result.Entries[1].Kind)
	assert.Equal(t, "researcher", result.Entries[1].AgentType)
	assert.Equal(t, "dig through the docs", result.Entries[1].Text)
}

func TestParseFromToolResultBlockArray(t *testing.T) {
	line := `{"type":"user","timestamp":"2026-08-25T10:00:00Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu_9","content":[{"type":"text","text":"line one"},{"type":"text","text":"line two"}],"is_error":true}]}}` + "\n"
	path := filepath.Join(t.TempDir(), "s.jsonl")
	appendFile(t, path, line)

	result, err := ParseFrom(path, Cursor{})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "line one\nline two", result.Entries[0].Text)
	assert.True(t, result.Entries[0].IsError)
}

func TestParseFromMissingFile(t *testing.T) {
	_, err := ParseFrom(filepath.Join(t.TempDir(), "absent.jsonl"), Cursor{})
	assert.Error(t, err)
}
