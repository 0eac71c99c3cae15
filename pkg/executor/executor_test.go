package executor_test

import (
	"testing"
	"time"

	"github.com/dotmirror/dotmirror/pkg/classifier"
	"github.com/dotmirror/dotmirror/pkg/errors"
	"github.com/dotmirror/dotmirror/pkg/executor"
	"github.com/dotmirror/dotmirror/pkg/history"
	"github.com/dotmirror/dotmirror/pkg/paths"
	"github.com/dotmirror/dotmirror/pkg/resolver"
	"github.com/dotmirror/dotmirror/pkg/state"
	"github.com/dotmirror/dotmirror/pkg/testutil"
	"github.com/dotmirror/dotmirror/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	fs      *testutil.MemoryFS
	paths   paths.Paths
	store   *state.Store
	checker *classifier.Checker
	exec    *executor.Executor
	clock   time.Time
}

type memJournal struct {
	records []history.Record
}

func (m *memJournal) Append(rec history.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func newEnv(t *testing.T, opts ...executor.Option) *env {
	t.Helper()
	t.Setenv(paths.EnvStateDir, "/state")

	p, err := paths.New("/df")
	require.NoError(t, err)

	fs := testutil.NewMemoryFS()
	store := state.New(fs, p.StateFilePath())
	r := resolver.New(fs, p)
	checker := classifier.NewChecker(fs, p, r)

	e := &env{fs: fs, paths: p, store: store, checker: checker,
		clock: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)}

	opts = append(opts, executor.WithClock(func() time.Time { return e.clock }))
	e.exec = executor.New(fs, p, r, checker, store, opts...)
	return e
}

func (e *env) classify(t *testing.T, entry types.ConfigEntry) types.ChangeType {
	t.Helper()
	st, err := e.checker.Check(entry, e.store.Load())
	require.NoError(t, err)
	return st.Change
}

func entry(key string) types.ConfigEntry {
	return types.ConfigEntry{Key: key, Source: "configs/" + key, Target: "/home/user/." + key}
}

func TestSyncOneRoundTrip(t *testing.T) {
	e := newEnv(t)
	ent := entry("vimrc")
	require.NoError(t, e.fs.WriteFile("/df/configs/vimrc", []byte("set number"), 0644))

	require.NoError(t, e.exec.SyncOne("vimrc", ent, types.SyncOptions{}))

	data, err := e.fs.ReadFile("/home/user/.vimrc")
	require.NoError(t, err)
	assert.Equal(t, "set number", string(data))

	// Classification immediately after a sync is unchanged.
	assert.Equal(t, types.ChangeUnchanged, e.classify(t, ent))

	rec := e.store.Load().Record("vimrc")
	require.NotNil(t, rec)
	assert.Equal(t, testutil.GetTestChecksum("set number"), rec.SourceHash)
	assert.Equal(t, rec.SourceHash, rec.SystemHash)
	assert.False(t, rec.UsedOverride)
	assert.Equal(t, e.clock, rec.LastSync)
}

func TestSyncOneBackup(t *testing.T) {
	e := newEnv(t)
	ent := entry("vimrc")
	require.NoError(t, e.fs.WriteFile("/df/configs/vimrc", []byte("new"), 0644))
	require.NoError(t, e.fs.WriteFile("/home/user/.vimrc", []byte("old"), 0644))

	require.NoError(t, e.exec.SyncOne("vimrc", ent, types.SyncOptions{}))

	backup, err := e.fs.ReadFile("/state/backups/.vimrc.20240102_150405")
	require.NoError(t, err)
	assert.Equal(t, "old", string(backup))
}

func TestSyncOneNoBackup(t *testing.T) {
	e := newEnv(t)
	ent := entry("vimrc")
	require.NoError(t, e.fs.WriteFile("/df/configs/vimrc", []byte("new"), 0644))
	require.NoError(t, e.fs.WriteFile("/home/user/.vimrc", []byte("old"), 0644))

	require.NoError(t, e.exec.SyncOne("vimrc", ent, types.SyncOptions{NoBackup: true}))
	assert.Empty(t, e.fs.List("/state/backups"))
}

func TestSyncOneBackupFailureDoesNotAbort(t *testing.T) {
	e := newEnv(t)
	ent := entry("vimrc")
	require.NoError(t, e.fs.WriteFile("/df/configs/vimrc", []byte("new"), 0644))
	require.NoError(t, e.fs.WriteFile("/home/user/.vimrc", []byte("old"), 0644))
	e.fs.InjectError("/state/backups/.vimrc.20240102_150405", testutil.ErrPermission)

	require.NoError(t, e.exec.SyncOne("vimrc", ent, types.SyncOptions{}))

	data, err := e.fs.ReadFile("/home/user/.vimrc")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSyncOneCopyFailureLeavesStateUntouched(t *testing.T) {
	e := newEnv(t)
	ent := entry("vimrc")
	require.NoError(t, e.fs.WriteFile("/df/configs/vimrc", []byte("new"), 0644))
	e.fs.InjectError("/home/user/.vimrc", testutil.ErrPermission)

	err := e.exec.SyncOne("vimrc", ent, types.SyncOptions{NoBackup: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileCopy))
	assert.Nil(t, e.store.Load().Record("vimrc"), "failed copy must not be marked synced")
}

func TestSyncOneUsesOverrideContent(t *testing.T) {
	e := newEnv(t)
	ent := entry("gitconfig")
	require.NoError(t, e.fs.WriteFile("/df/configs/gitconfig", []byte("base"), 0644))
	require.NoError(t, e.fs.WriteFile("/df/overrides/gitconfig", []byte("machine"), 0644))

	require.NoError(t, e.exec.SyncOne("gitconfig", ent, types.SyncOptions{}))

	data, err := e.fs.ReadFile("/home/user/.gitconfig")
	require.NoError(t, err)
	assert.Equal(t, "machine", string(data))

	rec := e.store.Load().Record("gitconfig")
	require.NotNil(t, rec)
	assert.True(t, rec.UsedOverride)
}

func TestSyncAllPolicies(t *testing.T) {
	// One entry per classification the policy treats differently.
	setup := func(t *testing.T, e *env) []types.ConfigEntry {
		t.Helper()
		// unchanged: both agree, record matches
		require.NoError(t, e.fs.WriteFile("/df/configs/same", []byte("a"), 0644))
		require.NoError(t, e.fs.WriteFile("/home/user/.same", []byte("a"), 0644))
		// source_changed: sync first, then edit source
		require.NoError(t, e.fs.WriteFile("/df/configs/moved", []byte("v1"), 0644))
		require.NoError(t, e.exec.SyncOne("moved", entry("moved"), types.SyncOptions{}))
		require.NoError(t, e.exec.SyncOne("same", entry("same"), types.SyncOptions{}))
		require.NoError(t, e.fs.WriteFile("/df/configs/moved", []byte("v2"), 0644))
		// system_changed: sync first, then edit target
		require.NoError(t, e.fs.WriteFile("/df/configs/edited", []byte("v1"), 0644))
		require.NoError(t, e.exec.SyncOne("edited", entry("edited"), types.SyncOptions{}))
		require.NoError(t, e.fs.WriteFile("/home/user/.edited", []byte("local"), 0644))
		// conflict: sync first, then edit both
		require.NoError(t, e.fs.WriteFile("/df/configs/both", []byte("v1"), 0644))
		require.NoError(t, e.exec.SyncOne("both", entry("both"), types.SyncOptions{}))
		require.NoError(t, e.fs.WriteFile("/df/configs/both", []byte("v2"), 0644))
		require.NoError(t, e.fs.WriteFile("/home/user/.both", []byte("v3"), 0644))
		// missing_source
		require.NoError(t, e.fs.WriteFile("/home/user/.gone", []byte("keep me"), 0644))
		// missing_system
		require.NoError(t, e.fs.WriteFile("/df/configs/fresh", []byte("new"), 0644))
		// out_of_sync: differs, never synced
		require.NoError(t, e.fs.WriteFile("/df/configs/stray", []byte("x"), 0644))
		require.NoError(t, e.fs.WriteFile("/home/user/.stray", []byte("y"), 0644))

		return []types.ConfigEntry{
			entry("same"), entry("moved"), entry("edited"), entry("both"),
			entry("gone"), entry("fresh"), entry("stray"),
		}
	}

	t.Run("unforced", func(t *testing.T) {
		e := newEnv(t)
		entries := setup(t, e)

		summary, err := e.exec.SyncAll(entries, types.SyncOptions{})
		require.NoError(t, err)

		// synced: moved, fresh, stray; unchanged: same;
		// skipped: edited (local edits), both (conflict), gone (no source)
		assert.Equal(t, types.SyncSummary{Synced: 3, Unchanged: 1, Skipped: 3}, summary)

		// Local edits survive an unforced run.
		data, err := e.fs.ReadFile("/home/user/.edited")
		require.NoError(t, err)
		assert.Equal(t, "local", string(data))
	})

	t.Run("forced", func(t *testing.T) {
		e := newEnv(t)
		entries := setup(t, e)

		summary, err := e.exec.SyncAll(entries, types.SyncOptions{Force: true})
		require.NoError(t, err)

		// Force adds edited; conflict and missing source stay skipped.
		assert.Equal(t, types.SyncSummary{Synced: 4, Unchanged: 1, Skipped: 2}, summary)

		data, err := e.fs.ReadFile("/home/user/.edited")
		require.NoError(t, err)
		assert.Equal(t, "v1", string(data))

		// Conflict is force-immune: neither side moved.
		src, err := e.fs.ReadFile("/df/configs/both")
		require.NoError(t, err)
		assert.Equal(t, "v2", string(src))
		dst, err := e.fs.ReadFile("/home/user/.both")
		require.NoError(t, err)
		assert.Equal(t, "v3", string(dst))

		// Missing source never touches the system file.
		kept, err := e.fs.ReadFile("/home/user/.gone")
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(kept))
	})
}

func TestSyncAllIdempotent(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.fs.WriteFile("/df/configs/vimrc", []byte("set number"), 0644))
	entries := []types.ConfigEntry{entry("vimrc")}

	summary, err := e.exec.SyncAll(entries, types.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Synced)

	before := *e.store.Load().Record("vimrc")
	e.clock = e.clock.Add(time.Hour)

	summary, err = e.exec.SyncAll(entries, types.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.SyncSummary{Unchanged: 1}, summary)

	after := *e.store.Load().Record("vimrc")
	assert.Equal(t, before.LastSync, after.LastSync, "unchanged entries are not re-stamped")
	assert.Equal(t, before.SourceHash, after.SourceHash)
}

func TestSyncAllContinuesPastFailures(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.fs.WriteFile("/df/configs/bad", []byte("x"), 0644))
	require.NoError(t, e.fs.WriteFile("/df/configs/good", []byte("y"), 0644))
	e.fs.InjectError("/home/user/.bad", testutil.ErrPermission)

	summary, err := e.exec.SyncAll([]types.ConfigEntry{entry("bad"), entry("good")}, types.SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, types.SyncSummary{Synced: 1, Skipped: 1}, summary)
	assert.True(t, e.fs.Exists("/home/user/.good"))
}

func TestSyncAllRecordsHistory(t *testing.T) {
	j := &memJournal{}
	e := newEnv(t, executor.WithJournal(j))
	require.NoError(t, e.fs.WriteFile("/df/configs/vimrc", []byte("x"), 0644))

	_, err := e.exec.SyncAll([]types.ConfigEntry{entry("vimrc")}, types.SyncOptions{Force: true})
	require.NoError(t, err)

	require.Len(t, j.records, 1)
	assert.Equal(t, 1, j.records[0].Synced)
	assert.True(t, j.records[0].Forced)
	assert.Equal(t, e.clock, j.records[0].StartedAt)
}

func TestScenarioEditSyncEdit(t *testing.T) {
	// Base and system both hold "x=1" with no record, then the base moves.
	e := newEnv(t)
	ent := entry("app")
	require.NoError(t, e.fs.WriteFile("/df/configs/app", []byte("x=1"), 0644))
	require.NoError(t, e.fs.WriteFile("/home/user/.app", []byte("x=1"), 0644))

	assert.Equal(t, types.ChangeUnchanged, e.classify(t, ent))

	// First sync counts the entry unchanged but records the baseline, so
	// the next source edit classifies as source_changed, not out_of_sync.
	summary, err := e.exec.SyncAll([]types.ConfigEntry{ent}, types.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.SyncSummary{Unchanged: 1}, summary)
	require.NotNil(t, e.store.Load().Record("app"))

	require.NoError(t, e.fs.WriteFile("/df/configs/app", []byte("x=2"), 0644))
	assert.Equal(t, types.ChangeSourceChanged, e.classify(t, ent))

	summary, err = e.exec.SyncAll([]types.ConfigEntry{ent}, types.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.SyncSummary{Synced: 1}, summary)

	data, err := e.fs.ReadFile("/home/user/.app")
	require.NoError(t, err)
	assert.Equal(t, "x=2", string(data))
	assert.Equal(t, types.ChangeUnchanged, e.classify(t, ent))

	// Now the user edits the system file directly.
	require.NoError(t, e.fs.WriteFile("/home/user/.app", []byte("x=3"), 0644))
	assert.Equal(t, types.ChangeSystemChanged, e.classify(t, ent))

	summary, err = e.exec.SyncAll([]types.ConfigEntry{ent}, types.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.SyncSummary{Skipped: 1}, summary)
	data, _ = e.fs.ReadFile("/home/user/.app")
	assert.Equal(t, "x=3", string(data), "unforced sync preserves local edits")

	summary, err = e.exec.SyncAll([]types.ConfigEntry{ent}, types.SyncOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, types.SyncSummary{Synced: 1}, summary)
	data, _ = e.fs.ReadFile("/home/user/.app")
	assert.Equal(t, "x=2", string(data))

	// The forced overwrite left a timestamped backup of the edit.
	backup, err := e.fs.ReadFile("/state/backups/.app.20240102_150405")
	require.NoError(t, err)
	assert.Equal(t, "x=3", string(backup))
}
