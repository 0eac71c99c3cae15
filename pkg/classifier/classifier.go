// Package classifier implements the three-way comparison engine: given
// the current source content, current system content and the record from
// the last successful sync, it classifies an entry into one of seven
// change types. The tie-break always prefers the least destructive label
// consistent with the evidence, so conflict and system_changed gate the
// executor's default behavior to skip-and-warn instead of overwrite.
package classifier

import (
	"github.com/dotmirror/dotmirror/pkg/hasher"
	"github.com/dotmirror/dotmirror/pkg/paths"
	"github.com/dotmirror/dotmirror/pkg/resolver"
	"github.com/dotmirror/dotmirror/pkg/types"
)

// Inputs are the three sides of the comparison. Hashes are only
// meaningful when the corresponding Exists flag is true.
type Inputs struct {
	SourceExists bool
	SystemExists bool
	SourceHash   string
	SystemHash   string

	// Record is the stored record from the last sync, nil if the key has
	// never been synced
	Record *types.SyncRecord
}

// Classify is a pure function of its inputs. Callers read the inputs
// fresh from disk on every call, so the result can change between calls
// when files are edited concurrently.
func Classify(in Inputs) types.ChangeType {
	if !in.SourceExists {
		return types.ChangeMissingSource
	}
	if !in.SystemExists {
		return types.ChangeMissingSystem
	}

	if in.Record == nil {
		if in.SourceHash == in.SystemHash {
			// First run after a manual copy: the sides happen to agree.
			return types.ChangeUnchanged
		}
		// No baseline to prove the system side is stale, so never
		// optimistically assume source is authoritative.
		return types.ChangeOutOfSync
	}

	sourceChanged := in.SourceHash != in.Record.SourceHash
	systemChanged := in.SystemHash != in.Record.SystemHash

	if in.SourceHash == in.SystemHash {
		if !sourceChanged && !systemChanged {
			return types.ChangeUnchanged
		}
		// Both sides moved but now agree: syncing is a state-record
		// refresh only, no content is at risk. The label stays
		// source_changed because it drives the unforced sync path.
		return types.ChangeSourceChanged
	}

	switch {
	case sourceChanged && systemChanged:
		return types.ChangeConflict
	case sourceChanged:
		return types.ChangeSourceChanged
	case systemChanged:
		return types.ChangeSystemChanged
	default:
		// Contents differ yet neither hash moved: unreachable under
		// consistent hashing.
		return types.ChangeUnchanged
	}
}

// Checker classifies entries against the live filesystem
type Checker struct {
	fs       types.FS
	paths    paths.Paths
	resolver *resolver.Resolver
}

// NewChecker creates a Checker
func NewChecker(fs types.FS, p paths.Paths, r *resolver.Resolver) *Checker {
	return &Checker{fs: fs, paths: p, resolver: r}
}

// Check resolves the effective source for entry, reads both sides fresh
// and classifies against the given state. Read failures on either side
// feed the missing_* classifications rather than erroring; only target
// expansion can fail.
func (c *Checker) Check(entry types.ConfigEntry, st *types.SyncState) (types.EntryStatus, error) {
	sourcePath, usedOverride := c.resolver.Resolve(entry)

	target, err := c.paths.ExpandTarget(entry.Target)
	if err != nil {
		return types.EntryStatus{}, err
	}

	sourceHash, sourceOK := hasher.HashFile(c.fs, sourcePath)
	systemHash, systemOK := hasher.HashFile(c.fs, target)

	change := Classify(Inputs{
		SourceExists: sourceOK,
		SystemExists: systemOK,
		SourceHash:   sourceHash,
		SystemHash:   systemHash,
		Record:       st.Record(entry.Key),
	})

	return types.EntryStatus{
		Entry:        entry,
		Change:       change,
		UsedOverride: usedOverride,
		SourcePath:   sourcePath,
	}, nil
}
