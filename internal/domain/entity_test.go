package domain

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDecodeProjectDir(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		wantName string
		wantPath string
	}{
		{"typical workspace", "-Users-me-src-app", "app", "/Users/me/src/app"},
		{"single component", "-tmp", "tmp", "/tmp"},
		{"no leading dash", "plain", "plain", "plain"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, path := DecodeProjectDir(tt.encoded)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestAbbreviatedPath(t *testing.T) {
	p := Project{WorkspacePath: "/Users/me/src/claude/my-project"}
	assert.Equal(t, "/U/m/s/c/my-project", p.AbbreviatedPath())

	short := Project{WorkspacePath: "/tmp"}
	assert.Equal(t, "/tmp", short.AbbreviatedPath())
}

func TestSessionLabel(t *testing.T) {
	ts := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("summary preferred over ID", func(t *testing.T) {
		s := Session{ID: "0c9d2f8a-1111-2222-3333-444455556666", Summary: "Fix the build"}
		assert.Equal(t, "Fix the build", s.Label())
	})

	t.Run("short ID fallback", func(t *testing.T) {
		s := Session{ID: "0c9d2f8a-1111-2222-3333-444455556666"}
		assert.Equal(t, "0c9d2f8a...", s.Label())
	})

	t.Run("long summary truncated", func(t *testing.T) {
		s := Session{Summary: "This summary is far too long to fit inside a sidebar list line"}
		label := s.Label()
		assert.Len(t, label, 40)
		assert.Contains(t, label, "...")
	})

	t.Run("multibyte summary truncated on rune boundary", func(t *testing.T) {
		s := Session{Summary: strings.Repeat("日本語テスト", 10)}
		label := s.Label()
		assert.True(t, utf8.ValidString(label))
		assert.Len(t, []rune(label), 40)
		assert.True(t, strings.HasSuffix(label, "..."))
	})

	t.Run("activity time appended", func(t *testing.T) {
		s := Session{ID: "abc", LastActivity: ts}
		assert.Contains(t, s.Label(), "abc (")
	})
}

func TestAgentDisplayName(t *testing.T) {
	a := Agent{ID: MainAgentID, Name: "Main", IsMain: true}
	assert.Equal(t, "Main", a.DisplayName())

	a.LastActivity = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	assert.Contains(t, a.DisplayName(), "Main (")
}
