package logs

import (
	"bytes"
	"os"
	"time"

	"github.com/tidwall/gjson"
)

// tailWindow bounds how far back the resolver reads when probing a file for
// its trailing record. Conversation lines are rarely longer than a few KB, so
// 64KB comfortably covers several records without scanning the whole file.
const tailWindow = 64 * 1024

// epochSentinel is the activity instant assigned when nothing about a file
// can be read. It sorts after every real timestamp.
var epochSentinel = time.Unix(0, 0).UTC()

// LastActivity resolves the logical "last activity" instant of a log file
// from its trailing content. Fallback chain, first success wins: timestamp of
// the last decodable trailing record, the file's mtime, the epoch sentinel.
// Malformed trailing content (a line truncated mid-write by the producer)
// is skipped, never surfaced as an error.
func LastActivity(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return epochSentinel
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return epochSentinel
	}

	if ts, ok := tailTimestamp(f, info.Size()); ok {
		return ts
	}
	return info.ModTime()
}

// tailTimestamp reads the trailing window of the file and walks its lines
// backwards looking for a record with a parsable timestamp field. A trailing
// partial line fails JSON validation and is skipped; a record that decodes
// but carries no timestamp stops the walk so the caller falls back to mtime.
func tailTimestamp(f *os.File, size int64) (time.Time, bool) {
	if size == 0 {
		return time.Time{}, false
	}

	window := size
	if window > tailWindow {
		window = tailWindow
	}
	buf := make([]byte, window)
	if _, err := f.ReadAt(buf, size-window); err != nil {
		return time.Time{}, false
	}

	lines := bytes.Split(buf, []byte{'\n'})
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			continue
		}
		raw := gjson.GetBytes(line, "timestamp")
		if !raw.Exists() {
			// A complete record without a timestamp; mtime is the
			// better answer than an older record's timestamp.
			return time.Time{}, false
		}
		if ts, err := time.Parse(time.RFC3339, raw.String()); err == nil {
			return ts, true
		}
		return time.Time{}, false
	}
	return time.Time{}, false
}
