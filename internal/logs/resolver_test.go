package logs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLastActivity(t *testing.T) {
	t.Run("trailing record timestamp wins", func(t *testing.T) {
		path := writeLog(t, t.TempDir(), "session.jsonl",
			`{"type":"user","timestamp":"2026-08-25T10:00:00Z","message":{"role":"user","content":"hi"}}`+"\n"+
				`{"type":"assistant","timestamp":"2026-08-25T10:05:00Z","message":{"role":"assistant","content":"hello"}}`+"\n")

		got := LastActivity(path)
		assert.Equal(t, time.Date(2026, 8, 25, 10, 5, 0, 0, time.UTC), got.UTC())
	})

	t.Run("partial trailing line yields previous record", func(t *testing.T) {
		path := writeLog(t, t.TempDir(), "session.jsonl",
			`{"type":"user","timestamp":"2026-08-25T10:00:00Z","message":{"role":"user","content":"hi"}}`+"\n"+
				`{"type":"assistant","timestamp":"2026-08-25T1`) // cut mid-write

		got := LastActivity(path)
		assert.Equal(t, time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC), got.UTC())
	})

	t.Run("record without timestamp falls back to mtime", func(t *testing.T) {
		path := writeLog(t, t.TempDir(), "session.jsonl",
			`{"type":"user","timestamp":"2026-08-25T10:00:00Z","message":{"role":"user","content":"hi"}}`+"\n"+
				`{"type":"progress","data":{"hookEvent":"PreToolUse"}}`+"\n")

		mtime := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(path, mtime, mtime))

		got := LastActivity(path)
		assert.True(t, got.Equal(mtime), "want mtime, got %v", got)
	})

	t.Run("empty file falls back to mtime", func(t *testing.T) {
		path := writeLog(t, t.TempDir(), "session.jsonl", "")
		mtime := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(path, mtime, mtime))

		got := LastActivity(path)
		assert.True(t, got.Equal(mtime), "want mtime, got %v", got)
	})

	t.Run("missing file yields epoch sentinel", func(t *testing.T) {
		got := LastActivity(filepath.Join(t.TempDir(), "nope.jsonl"))
		assert.Equal(t, time.Unix(0, 0).UTC(), got)
	})

	t.Run("unparsable timestamp falls back to mtime", func(t *testing.T) {
		path := writeLog(t, t.TempDir(), "session.jsonl",
			`{"type":"user","timestamp":"yesterday","message":{"role":"user","content":"hi"}}`+"\n")
		mtime := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(path, mtime, mtime))

		got := LastActivity(path)
		assert.True(t, got.Equal(mtime), "want mtime, got %v", got)
	})
}
