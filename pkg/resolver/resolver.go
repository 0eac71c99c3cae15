// Package resolver decides which physical file supplies an entry's
// content: the machine-specific override when one exists, the base
// source file otherwise.
package resolver

import (
	"github.com/dotmirror/dotmirror/pkg/logging"
	"github.com/dotmirror/dotmirror/pkg/paths"
	"github.com/dotmirror/dotmirror/pkg/types"
)

// Resolver resolves the effective source path for config entries
type Resolver struct {
	fs    types.FS
	paths paths.Paths
}

// New creates a Resolver backed by the given filesystem and paths
func New(fs types.FS, p paths.Paths) *Resolver {
	return &Resolver{fs: fs, paths: p}
}

// Resolve returns the effective source path for entry and whether it
// came from an override. The override candidate is looked up by filename
// inside the overrides directory; when present it fully replaces the base
// file's content. The check runs on every call, so adding or removing an
// override takes effect on the next status or sync.
func (r *Resolver) Resolve(entry types.ConfigEntry) (string, bool) {
	overridePath := r.paths.OverridePath(entry.Source)
	if info, err := r.fs.Stat(overridePath); err == nil && !info.IsDir() {
		logger := logging.GetLogger("resolver")
		logger.Debug().
			Str("key", entry.Key).
			Str("override", overridePath).
			Msg("using override file")
		return overridePath, true
	}
	return r.paths.SourcePath(entry.Source), false
}
