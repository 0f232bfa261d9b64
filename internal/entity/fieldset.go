package entity

import (
	"sort"
	"strings"
)

// FieldSet is the set of deal-breaker field names in scope for comparison.
type FieldSet map[string]struct{}

// NewFieldSet builds a set, trimming names and dropping blanks and duplicates.
func NewFieldSet(names ...string) FieldSet {
	fs := make(FieldSet, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			fs[n] = struct{}{}
		}
	}
	return fs
}

func (fs FieldSet) Contains(name string) bool {
	_, ok := fs[name]
	return ok
}

// Sorted returns the names in display order.
func (fs FieldSet) Sorted() []string {
	out := make([]string, 0, len(fs))
	for n := range fs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
