// Package state persists the sync-state store: for every tracked key,
// the hashes recorded at the last successful sync. The Store is the only
// component that reads or writes the backing file.
package state

import (
	"encoding/json"
	"path/filepath"

	"github.com/dotmirror/dotmirror/pkg/errors"
	"github.com/dotmirror/dotmirror/pkg/logging"
	"github.com/dotmirror/dotmirror/pkg/types"
)

// Store loads and saves the persisted SyncState. Access is assumed to be
// single-process, single-invocation; concurrent tool invocations race
// with last-writer-wins semantics and no file locking is performed.
type Store struct {
	fs   types.FS
	path string
}

// New creates a Store backed by the given file path
func New(fs types.FS, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted state. It never fails: a missing or corrupt
// backing file yields an empty state, which is the conservative direction
// since entries then classify as out_of_sync rather than unchanged.
func (s *Store) Load() *types.SyncState {
	logger := logging.GetLogger("state")

	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		logger.Debug().Err(err).Str("path", s.path).Msg("no state file, starting empty")
		return types.NewSyncState()
	}

	var st types.SyncState
	if err := json.Unmarshal(data, &st); err != nil {
		logger.Warn().Err(err).Str("path", s.path).Msg("state file unparsable, starting empty")
		return types.NewSyncState()
	}
	if st.Dotfiles == nil {
		st.Dotfiles = make(map[string]types.SyncRecord)
	}
	return &st
}

// Save writes the state atomically: a temp file in the same directory is
// renamed over the backing file, so a crash mid-write never leaves a
// half-written store behind. Write failures are surfaced to the caller.
func (s *Store) Save(st *types.SyncState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "cannot encode sync state")
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "cannot create state directory %s", dir)
	}

	tmp := s.path + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "cannot write state file %s", tmp)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "cannot replace state file %s", s.path)
	}
	return nil
}
