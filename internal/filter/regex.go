package filter

import (
	"regexp"

	"github.com/vburojevic/agenttail/internal/domain"
)

// RegexFilter filters entries by pattern against their visible text
type RegexFilter struct {
	pattern *regexp.Regexp
}

// NewRegexFilter creates a regex filter from a pattern string
func NewRegexFilter(pattern string) (*RegexFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexFilter{pattern: re}, nil
}

// Match returns true if any of the entry's text surfaces matches the pattern.
// Tool entries match on the tool name, input, and result content.
func (f *RegexFilter) Match(entry *domain.DisplayEntry) bool {
	if f.pattern == nil {
		return true
	}
	if f.pattern.MatchString(entry.Text) {
		return true
	}
	if entry.Tool != nil {
		if f.pattern.MatchString(entry.Tool.Name) || f.pattern.MatchString(entry.Tool.Input) {
			return true
		}
		if entry.Tool.Result != nil && f.pattern.MatchString(entry.Tool.Result.Content) {
			return true
		}
	}
	return false
}
