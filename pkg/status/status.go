// Package status builds structured reports over every tracked entry by
// running the classifier against a single state snapshot.
package status

import (
	"sort"

	"github.com/dotmirror/dotmirror/pkg/classifier"
	"github.com/dotmirror/dotmirror/pkg/state"
	"github.com/dotmirror/dotmirror/pkg/types"
)

// Aggregator produces status reports
type Aggregator struct {
	checker *classifier.Checker
	store   *state.Store
}

// New creates an Aggregator
func New(checker *classifier.Checker, store *state.Store) *Aggregator {
	return &Aggregator{checker: checker, store: store}
}

// Report classifies every entry against one state snapshot and returns
// the result keyed by entry key. The snapshot is evaluated eagerly, so a
// caller rendering the report sees a consistent view even if it inspects
// the same key twice.
func (a *Aggregator) Report(entries []types.ConfigEntry) (map[string]types.EntryStatus, error) {
	st := a.store.Load()

	sorted := make([]types.ConfigEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	report := make(map[string]types.EntryStatus, len(sorted))
	for _, entry := range sorted {
		entryStatus, err := a.checker.Check(entry, st)
		if err != nil {
			return nil, err
		}
		report[entry.Key] = entryStatus
	}
	return report, nil
}

// Keys returns the report's keys in sorted order for stable rendering
func Keys(report map[string]types.EntryStatus) []string {
	keys := make([]string, 0, len(report))
	for key := range report {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
