package filter

import (
	"github.com/vburojevic/agenttail/internal/domain"
)

// KindFilter keeps only entries whose kind is in the allowed set
type KindFilter struct {
	allowed map[domain.EntryKind]bool
}

// NewKindFilter creates a kind filter from kind names. An empty list allows
// everything.
func NewKindFilter(kinds []string) *KindFilter {
	if len(kinds) == 0 {
		return &KindFilter{}
	}
	allowed := make(map[domain.EntryKind]bool, len(kinds))
	for _, k := range kinds {
		allowed[domain.EntryKind(k)] = true
	}
	return &KindFilter{allowed: allowed}
}

// Match returns true if the entry kind is allowed
func (f *KindFilter) Match(entry *domain.DisplayEntry) bool {
	if f.allowed == nil {
		return true
	}
	return f.allowed[entry.Kind]
}
