package domain

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EntityKind discriminates nodes in the discovery tree
type EntityKind string

const (
	KindProject EntityKind = "project"
	KindSession EntityKind = "session"
	KindAgent   EntityKind = "agent"
)

// MainAgentID is the identity of a session's primary conversation log
const MainAgentID = "main"

// Agent is one conversation log file: either the session's main log or a
// sub-agent log spawned by it.
type Agent struct {
	ID           string // MainAgentID or the sub-agent ID from the filename
	Name         string // display name
	LogPath      string
	LastActivity time.Time // derived from file content, not mtime
	IsMain       bool
}

// Session groups a main agent log with any sub-agent logs.
type Session struct {
	ID           string
	Dir          string // project directory the session lives in
	LogPath      string // main agent log file
	Summary      string // from sessions-index.json, may be empty
	LastActivity time.Time
	Agents       []Agent // sorted by LastActivity descending, ties by ID
}

// Project is one workspace directory tracked under the log root.
type Project struct {
	Name          string // last component of the decoded workspace path
	Dir           string // directory under the log root
	EncodedName   string // directory basename as written by the producer
	WorkspacePath string // decoded original workspace path
	LastActivity  time.Time
	Sessions      []Session // sorted by LastActivity descending, ties by ID
}

// DisplayName returns the agent name with its activity time: "name (HH:MM:SS)"
func (a Agent) DisplayName() string {
	if a.LastActivity.IsZero() {
		return a.Name
	}
	return a.Name + " (" + a.LastActivity.Local().Format("15:04:05") + ")"
}

// ShortID returns the session ID truncated for list display
func (s Session) ShortID() string {
	if r := []rune(s.ID); len(r) > 8 {
		return string(r[:8]) + "..."
	}
	return s.ID
}

// Label returns the session summary when one exists, the short ID otherwise,
// with the activity time appended.
func (s Session) Label() string {
	name := s.Summary
	if name == "" {
		name = s.ShortID()
	} else if r := []rune(name); len(r) > 40 {
		name = string(r[:37]) + "..."
	}
	if s.LastActivity.IsZero() {
		return name
	}
	return name + " (" + s.LastActivity.Local().Format("15:04:05") + ")"
}

// DecodeProjectDir decodes an encoded project directory name into a display
// name and the original workspace path. The producer encodes workspace paths
// by replacing every path separator with '-', so "-Users-me-src-app" maps
// back to "/Users/me/src/app".
func DecodeProjectDir(encoded string) (name, workspacePath string) {
	workspacePath = strings.ReplaceAll(encoded, "-", string(filepath.Separator))
	name = filepath.Base(workspacePath)
	if name == string(filepath.Separator) || name == "." {
		name = encoded
	}
	return name, workspacePath
}

// AbbreviatedPath renders the workspace path with the home directory as "~"
// and every component but the last shortened to its first rune, e.g.
// "~/s/c/my-project".
func (p Project) AbbreviatedPath() string {
	path := p.WorkspacePath
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(path, home) {
		path = "~" + path[len(home):]
	}

	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	for i, part := range parts[:len(parts)-1] {
		if part == "" || part == "~" {
			continue
		}
		r := []rune(part)
		parts[i] = string(r[:1])
	}
	return strings.Join(parts, "/")
}
