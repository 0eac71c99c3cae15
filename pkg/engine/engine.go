// Package engine wires the dotmirror core together and exposes the
// caller-facing seam: Status, Sync (one key, several, or all), and
// explicit state load/save. Presentation layers call these operations
// and render their structured results; nothing here prints.
package engine

import (
	"github.com/rs/zerolog"

	"github.com/dotmirror/dotmirror/pkg/classifier"
	"github.com/dotmirror/dotmirror/pkg/config"
	"github.com/dotmirror/dotmirror/pkg/errors"
	"github.com/dotmirror/dotmirror/pkg/executor"
	"github.com/dotmirror/dotmirror/pkg/filesystem"
	"github.com/dotmirror/dotmirror/pkg/history"
	"github.com/dotmirror/dotmirror/pkg/logging"
	"github.com/dotmirror/dotmirror/pkg/manifest"
	"github.com/dotmirror/dotmirror/pkg/paths"
	"github.com/dotmirror/dotmirror/pkg/resolver"
	"github.com/dotmirror/dotmirror/pkg/state"
	"github.com/dotmirror/dotmirror/pkg/status"
	"github.com/dotmirror/dotmirror/pkg/types"
)

// Engine is the core facade. The manifest is reloaded fresh on every
// operation so manifest and override edits take effect immediately;
// nothing is cached across calls.
type Engine struct {
	fs      types.FS
	paths   paths.Paths
	cfg     *config.Config
	store   *state.Store
	agg     *status.Aggregator
	exec    *executor.Executor
	journal *history.Journal
	logger  zerolog.Logger
}

// New builds an Engine for the config tree at root (empty selects
// DOTMIRROR_ROOT or ~/dotfiles). The history journal is advisory: if it
// cannot be opened the engine still works, it just stops recording runs.
func New(root string) (*Engine, error) {
	p, err := paths.New(root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(p.Root())
	if err != nil {
		return nil, err
	}
	if cfg.Tree.OverridesDir != paths.DefaultOverridesDirName {
		p, err = paths.New(p.Root(), paths.WithOverridesDirName(cfg.Tree.OverridesDir))
		if err != nil {
			return nil, err
		}
	}

	logger := logging.GetLogger("engine")

	var journal *history.Journal
	if cfg.History.Enabled {
		journal, err = history.Open(p.HistoryDBPath())
		if err != nil {
			logger.Warn().Err(err).Msg("sync history unavailable")
			journal = nil
		}
	}

	fs := filesystem.NewOS()
	store := state.New(fs, p.StateFilePath())
	r := resolver.New(fs, p)
	checker := classifier.NewChecker(fs, p, r)

	execOpts := []executor.Option{}
	if journal != nil {
		execOpts = append(execOpts, executor.WithJournal(journal))
	}

	return &Engine{
		fs:      fs,
		paths:   p,
		cfg:     cfg,
		store:   store,
		agg:     status.New(checker, store),
		exec:    executor.New(fs, p, r, checker, store, execOpts...),
		journal: journal,
		logger:  logger,
	}, nil
}

// Paths exposes the resolved path layout for presentation layers
func (e *Engine) Paths() paths.Paths {
	return e.paths
}

// Status classifies every tracked entry and returns a snapshot report
func (e *Engine) Status() (map[string]types.EntryStatus, error) {
	m, err := e.loadManifest()
	if err != nil {
		return nil, err
	}
	return e.agg.Report(m.Entries())
}

// SyncAll syncs every tracked entry under the standard policy
func (e *Engine) SyncAll(opts types.SyncOptions) (types.SyncSummary, error) {
	return e.Sync(nil, opts)
}

// Sync syncs the named keys, or every tracked entry when keys is empty.
// Unknown keys are a hard error before anything is copied.
func (e *Engine) Sync(keys []string, opts types.SyncOptions) (types.SyncSummary, error) {
	m, err := e.loadManifest()
	if err != nil {
		return types.SyncSummary{}, err
	}

	entries := m.Entries()
	if len(keys) > 0 {
		entries = entries[:0:0]
		for _, key := range keys {
			entry, ok := m.Entry(key)
			if !ok {
				return types.SyncSummary{}, errors.Newf(errors.ErrNotFound, "no tracked entry named %q", key)
			}
			entries = append(entries, entry)
		}
	}

	opts = e.applyConfig(opts)
	summary, err := e.exec.SyncAll(entries, opts)
	if err != nil {
		return summary, err
	}
	e.stampManifestHash(m.Hash)
	return summary, nil
}

// SyncOne syncs a single entry directly, bypassing classification policy
func (e *Engine) SyncOne(key string, entry types.ConfigEntry, opts types.SyncOptions) error {
	return e.exec.SyncOne(key, entry, e.applyConfig(opts))
}

// LoadState returns the current persisted sync state
func (e *Engine) LoadState() *types.SyncState {
	return e.store.Load()
}

// SaveState persists the given sync state
func (e *Engine) SaveState(st *types.SyncState) error {
	return e.store.Save(st)
}

// History returns the most recent batch executions, newest first. It
// returns nothing when journaling is disabled or unavailable.
func (e *Engine) History(limit int) ([]history.Record, error) {
	if e.journal == nil {
		return nil, nil
	}
	return e.journal.Recent(limit)
}

// Close releases engine resources
func (e *Engine) Close() error {
	if e.journal == nil {
		return nil
	}
	return e.journal.Close()
}

func (e *Engine) loadManifest() (*manifest.Manifest, error) {
	return manifest.Load(e.paths.ManifestPath(), e.paths.LocalManifestPath())
}

func (e *Engine) applyConfig(opts types.SyncOptions) types.SyncOptions {
	if !e.cfg.Sync.Backup {
		opts.NoBackup = true
	}
	return opts
}

// stampManifestHash keeps the reserved manifest_hash field current. It
// is not consulted for invalidation; failures only log.
func (e *Engine) stampManifestHash(hash string) {
	st := e.store.Load()
	if st.ManifestHash == hash {
		return
	}
	st.ManifestHash = hash
	if err := e.store.Save(st); err != nil {
		e.logger.Warn().Err(err).Msg("cannot record manifest fingerprint")
	}
}
