package logs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/agenttail/internal/domain"
)

func record(ts string) string {
	return `{"type":"user","timestamp":"` + ts + `","message":{"role":"user","content":"hi"}}` + "\n"
}

// buildTree writes one project directory with the given session logs under a
// fresh root and returns the root.
func buildTree(t *testing.T, project string, sessions map[string]string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, project)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for id, content := range sessions {
		require.NoError(t, os.WriteFile(filepath.Join(dir, id+".jsonl"), []byte(content), 0o644))
	}
	return root
}

func TestCheckRoot(t *testing.T) {
	t.Run("existing directory passes", func(t *testing.T) {
		d := NewDiscoverer(t.TempDir(), 2, nil)
		assert.NoError(t, d.CheckRoot())
	})

	t.Run("missing root fails", func(t *testing.T) {
		d := NewDiscoverer(filepath.Join(t.TempDir(), "absent"), 2, nil)
		err := d.CheckRoot()
		require.Error(t, err)
		var rootErr *ErrRootUnavailable
		assert.ErrorAs(t, err, &rootErr)
	})

	t.Run("file instead of directory fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "root")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		d := NewDiscoverer(path, 2, nil)
		assert.Error(t, d.CheckRoot())
	})
}

func TestDiscoverSorting(t *testing.T) {
	root := t.TempDir()
	for project, sessions := range map[string]map[string]string{
		"-Users-me-src-older": {"s1": record("2026-08-25T10:00:00Z")},
		"-Users-me-src-newer": {"s1": record("2026-08-25T10:05:00Z")},
	} {
		dir := filepath.Join(root, project)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for id, content := range sessions {
			require.NoError(t, os.WriteFile(filepath.Join(dir, id+".jsonl"), []byte(content), 0o644))
		}
	}

	d := NewDiscoverer(root, 2, nil)
	projects, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)

	assert.Equal(t, "newer", projects[0].Name)
	assert.Equal(t, "older", projects[1].Name)
	assert.Equal(t, "/Users/me/src/newer", projects[0].WorkspacePath)
}

func TestDiscoverTieBreak(t *testing.T) {
	ts := record("2026-08-25T10:00:00Z")
	root := t.TempDir()
	for _, project := range []string{"-b-proj", "-a-proj"} {
		dir := filepath.Join(root, project)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "s1.jsonl"), []byte(ts), 0o644))
	}

	d := NewDiscoverer(root, 2, nil)
	projects, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)

	// Equal activity: encoded name decides, deterministically.
	assert.Equal(t, "-a-proj", projects[0].EncodedName)
	assert.Equal(t, "-b-proj", projects[1].EncodedName)
}

func TestDiscoverSessionsActivityRollup(t *testing.T) {
	root := buildTree(t, "-p", map[string]string{
		"s-old": record("2026-08-25T10:00:00Z"),
		"s-new": record("2026-08-25T10:05:00Z"),
	})

	d := NewDiscoverer(root, 2, nil)
	sessions, err := d.DiscoverSessions(filepath.Join(root, "-p"))
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "s-new", sessions[0].ID)
	assert.Equal(t, "s-old", sessions[1].ID)

	// The session activity equals the max over its agents.
	want := time.Date(2026, 8, 25, 10, 5, 0, 0, time.UTC)
	assert.Equal(t, want, sessions[0].LastActivity.UTC())
}

func TestDiscoverSubagents(t *testing.T) {
	root := buildTree(t, "-p", map[string]string{
		"s1": record("2026-08-25T10:00:00Z"),
	})
	subDir := filepath.Join(root, "-p", "s1", "subagents")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "agent-abc.jsonl"),
		[]byte(record("2026-08-25T10:05:00Z")), 0o644))

	d := NewDiscoverer(root, 2, nil)
	sessions, err := d.DiscoverSessions(filepath.Join(root, "-p"))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Agents, 2)

	// More recent sub-agent sorts ahead of the main agent.
	assert.Equal(t, "abc", sessions[0].Agents[0].ID)
	assert.False(t, sessions[0].Agents[0].IsMain)
	assert.Equal(t, domain.MainAgentID, sessions[0].Agents[1].ID)

	// Session activity reflects the sub-agent, not just the main log.
	want := time.Date(2026, 8, 25, 10, 5, 0, 0, time.UTC)
	assert.Equal(t, want, sessions[0].LastActivity.UTC())
}

func TestDiscoverSessionDirWithoutMainLog(t *testing.T) {
	root := t.TempDir()
	subDir := filepath.Join(root, "-p", "s1", "subagents")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "agent-x.jsonl"),
		[]byte(record("2026-08-25T10:00:00Z")), 0o644))

	d := NewDiscoverer(root, 2, nil)
	sessions, err := d.DiscoverSessions(filepath.Join(root, "-p"))
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	// Main agent is present with sentinel activity even though its log is
	// missing.
	var main *domain.Agent
	for i := range sessions[0].Agents {
		if sessions[0].Agents[i].IsMain {
			main = &sessions[0].Agents[i]
		}
	}
	require.NotNil(t, main)
	assert.Equal(t, time.Unix(0, 0).UTC(), main.LastActivity)
}

func TestDiscoverSessionSummaries(t *testing.T) {
	root := buildTree(t, "-p", map[string]string{
		"s1": record("2026-08-25T10:00:00Z"),
	})
	index := `{"sessions":{"s1":{"summary":"Fix the flaky test"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "-p", "sessions-index.json"), []byte(index), 0o644))

	d := NewDiscoverer(root, 2, nil)
	sessions, err := d.DiscoverSessions(filepath.Join(root, "-p"))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Fix the flaky test", sessions[0].Summary)
}

func TestDiscoverEmptyRoot(t *testing.T) {
	d := NewDiscoverer(t.TempDir(), 2, nil)
	projects, err := d.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}
