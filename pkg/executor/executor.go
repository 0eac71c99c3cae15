// Package executor applies sync decisions: backup, copy and state update
// for one file, and policy-driven batch sync across all tracked entries.
package executor

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/dotmirror/dotmirror/pkg/classifier"
	"github.com/dotmirror/dotmirror/pkg/errors"
	"github.com/dotmirror/dotmirror/pkg/hasher"
	"github.com/dotmirror/dotmirror/pkg/history"
	"github.com/dotmirror/dotmirror/pkg/logging"
	"github.com/dotmirror/dotmirror/pkg/paths"
	"github.com/dotmirror/dotmirror/pkg/resolver"
	"github.com/dotmirror/dotmirror/pkg/state"
	"github.com/dotmirror/dotmirror/pkg/types"
)

// backupTimestampLayout names pre-overwrite snapshots
const backupTimestampLayout = "20060102_150405"

// Journal records batch executions; nil disables journaling
type Journal interface {
	Append(rec history.Record) error
}

// Executor performs sync operations for tracked entries
type Executor struct {
	fs       types.FS
	paths    paths.Paths
	resolver *resolver.Resolver
	checker  *classifier.Checker
	store    *state.Store
	journal  Journal
	logger   zerolog.Logger

	// now is replaceable for deterministic backup names in tests
	now func() time.Time
}

// Option customizes an Executor
type Option func(*Executor)

// WithJournal enables execution journaling
func WithJournal(j Journal) Option {
	return func(e *Executor) {
		e.journal = j
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// New creates an Executor
func New(fs types.FS, p paths.Paths, r *resolver.Resolver, c *classifier.Checker, s *state.Store, opts ...Option) *Executor {
	e := &Executor{
		fs:       fs,
		paths:    p,
		resolver: r,
		checker:  c,
		store:    s,
		logger:   logging.GetLogger("executor"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncOne syncs a single entry: timestamped backup of the current target
// (when present and not suppressed), copy of the resolved source, then a
// state-record update. The record is written only after the copy
// succeeds, so state is never updated for a failed copy.
func (e *Executor) SyncOne(key string, entry types.ConfigEntry, opts types.SyncOptions) error {
	st := e.store.Load()
	return e.syncOne(st, key, entry, opts)
}

func (e *Executor) syncOne(st *types.SyncState, key string, entry types.ConfigEntry, opts types.SyncOptions) error {
	sourcePath, usedOverride := e.resolver.Resolve(entry)

	target, err := e.paths.ExpandTarget(entry.Target)
	if err != nil {
		return err
	}

	data, err := e.fs.ReadFile(sourcePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot read source %s", sourcePath).
			WithDetail("key", key)
	}

	if !opts.NoBackup {
		e.backup(target)
	}

	if err := e.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent directory for %s", target).
			WithDetail("key", key)
	}
	if err := e.fs.WriteFile(target, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot write target %s", target).
			WithDetail("key", key)
	}

	digest := hasher.Hash(data)
	st.SetRecord(key, types.SyncRecord{
		SourceHash:   digest,
		SystemHash:   digest,
		UsedOverride: usedOverride,
		LastSync:     e.now().UTC(),
	})
	if err := e.store.Save(st); err != nil {
		return err
	}

	e.logger.Info().
		Str("key", key).
		Str("source", sourcePath).
		Str("target", target).
		Bool("override", usedOverride).
		Msg("synced")
	return nil
}

// backup snapshots the current target into the backup directory as
// <basename>.<timestamp>. Backup failures never abort a sync.
func (e *Executor) backup(target string) {
	data, err := e.fs.ReadFile(target)
	if err != nil {
		// Nothing to back up
		return
	}

	name := filepath.Base(target) + "." + e.now().Format(backupTimestampLayout)
	backupPath := filepath.Join(e.paths.BackupDir(), name)

	if err := e.fs.MkdirAll(e.paths.BackupDir(), 0755); err != nil {
		e.logger.Warn().Err(err).Str("target", target).Msg("backup directory unavailable, proceeding without backup")
		return
	}
	if err := e.fs.WriteFile(backupPath, data, 0644); err != nil {
		e.logger.Warn().Err(err).Str("backup", backupPath).Msg("backup failed, proceeding without backup")
		return
	}
	e.logger.Debug().Str("backup", backupPath).Msg("wrote backup")
}

// SyncAll classifies every entry and applies the sync policy. The batch
// always runs to completion and reports a summary; a single bad entry
// never aborts the whole run. Conflicts are skipped regardless of Force.
func (e *Executor) SyncAll(entries []types.ConfigEntry, opts types.SyncOptions) (types.SyncSummary, error) {
	started := e.now().UTC()
	st := e.store.Load()

	sorted := make([]types.ConfigEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var summary types.SyncSummary
	var lastErr string
	for _, entry := range sorted {
		status, err := e.checker.Check(entry, st)
		if err != nil {
			summary.Skipped++
			lastErr = err.Error()
			e.warn(opts).Err(err).Str("key", entry.Key).Msg("cannot classify entry, skipping")
			continue
		}

		switch status.Change {
		case types.ChangeUnchanged:
			summary.Unchanged++
			// Sides agree but the key was never synced: record the
			// baseline so a later source edit classifies as
			// source_changed instead of out_of_sync. No content moves.
			if st.Record(entry.Key) == nil {
				e.recordBaseline(st, entry, status)
			}

		case types.ChangeMissingSource:
			summary.Skipped++
			e.warn(opts).Str("key", entry.Key).Str("source", status.SourcePath).
				Msg("source file missing, skipping")

		case types.ChangeConflict:
			summary.Skipped++
			// Force-immune: both sides diverged and there is no safe
			// overwrite direction.
			e.logger.Error().Str("key", entry.Key).
				Msg("conflict: source and system both changed, resolve manually")

		case types.ChangeSystemChanged:
			if !opts.Force {
				summary.Skipped++
				e.warn(opts).Str("key", entry.Key).
					Msg("system file has local edits, review or sync with force")
				continue
			}
			e.applyOne(st, entry, opts, &summary, &lastErr)

		default:
			// source_changed, missing_system, out_of_sync
			e.applyOne(st, entry, opts, &summary, &lastErr)
		}
	}

	e.record(started, opts, summary, lastErr)
	return summary, nil
}

func (e *Executor) applyOne(st *types.SyncState, entry types.ConfigEntry, opts types.SyncOptions, summary *types.SyncSummary, lastErr *string) {
	if err := e.syncOne(st, entry.Key, entry, opts); err != nil {
		summary.Skipped++
		*lastErr = err.Error()
		e.logger.Error().Err(err).Str("key", entry.Key).Msg("sync failed for entry")
		return
	}
	summary.Synced++
}

// recordBaseline stores a record for an entry whose sides already agree
func (e *Executor) recordBaseline(st *types.SyncState, entry types.ConfigEntry, status types.EntryStatus) {
	digest, ok := hasher.HashFile(e.fs, status.SourcePath)
	if !ok {
		return
	}
	st.SetRecord(entry.Key, types.SyncRecord{
		SourceHash:   digest,
		SystemHash:   digest,
		UsedOverride: status.UsedOverride,
		LastSync:     e.now().UTC(),
	})
	if err := e.store.Save(st); err != nil {
		e.logger.Warn().Err(err).Str("key", entry.Key).Msg("cannot record baseline")
		return
	}
	e.logger.Debug().Str("key", entry.Key).Msg("recorded baseline for already-matching entry")
}

// record appends the batch outcome to the journal when one is configured
func (e *Executor) record(started time.Time, opts types.SyncOptions, summary types.SyncSummary, lastErr string) {
	if e.journal == nil {
		return
	}
	rec := history.Record{
		StartedAt:  started,
		FinishedAt: e.now().UTC(),
		Synced:     summary.Synced,
		Unchanged:  summary.Unchanged,
		Skipped:    summary.Skipped,
		Forced:     opts.Force,
		Error:      lastErr,
	}
	if err := e.journal.Append(rec); err != nil {
		e.logger.Warn().Err(err).Msg("cannot record sync history")
	}
}

func (e *Executor) warn(opts types.SyncOptions) *zerolog.Event {
	if opts.Quiet {
		return e.logger.Debug()
	}
	return e.logger.Warn()
}
