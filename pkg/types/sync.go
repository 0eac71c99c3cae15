package types

import "time"

// ChangeType classifies how a tracked file has diverged since the last
// known-good sync. It is derived fresh on every status/sync call and is
// never persisted.
type ChangeType string

const (
	// ChangeUnchanged means source and system agree with each other and
	// with the last-synced record (or agree with no record present).
	ChangeUnchanged ChangeType = "unchanged"

	// ChangeSourceChanged means only the source side moved since the last
	// sync; overwriting the system file loses nothing the user created.
	ChangeSourceChanged ChangeType = "source_changed"

	// ChangeSystemChanged means the system file holds user edits made
	// after the last sync; syncing destroys them unless forced.
	ChangeSystemChanged ChangeType = "system_changed"

	// ChangeConflict means both sides diverged independently since the
	// last sync; never auto-resolved.
	ChangeConflict ChangeType = "conflict"

	// ChangeMissingSystem means the target file does not exist; safe to
	// sync since there is nothing to overwrite.
	ChangeMissingSystem ChangeType = "missing_system"

	// ChangeMissingSource means the source file does not exist; the entry
	// must be skipped.
	ChangeMissingSource ChangeType = "missing_source"

	// ChangeOutOfSync means source and system differ with no prior record
	// to prove which side is stale.
	ChangeOutOfSync ChangeType = "out_of_sync"
)

// SyncRecord holds the fingerprints recorded at the last successful sync
// of one entry. A record exists for a key iff that key has been synced at
// least once since the state store was last cleared; absence means "never
// synced", not "unchanged".
type SyncRecord struct {
	SourceHash   string    `json:"source_hash"`
	SystemHash   string    `json:"system_hash"`
	UsedOverride bool      `json:"used_override"`
	LastSync     time.Time `json:"last_sync"`
}

// SyncState is the whole persisted store. ManifestHash is reserved for
// manifest-change invalidation and is not consulted today.
type SyncState struct {
	ManifestHash string                `json:"manifest_hash"`
	Dotfiles     map[string]SyncRecord `json:"dotfiles"`
}

// NewSyncState returns an empty state ready for use.
func NewSyncState() *SyncState {
	return &SyncState{
		Dotfiles: make(map[string]SyncRecord),
	}
}

// Record returns the stored record for key, or nil if the key has never
// been synced.
func (s *SyncState) Record(key string) *SyncRecord {
	if s == nil || s.Dotfiles == nil {
		return nil
	}
	if rec, ok := s.Dotfiles[key]; ok {
		return &rec
	}
	return nil
}

// SetRecord stores the record for key, allocating the map if the state
// was decoded from an empty document.
func (s *SyncState) SetRecord(key string, rec SyncRecord) {
	if s.Dotfiles == nil {
		s.Dotfiles = make(map[string]SyncRecord)
	}
	s.Dotfiles[key] = rec
}

// SyncOptions controls executor behavior for one sync invocation.
type SyncOptions struct {
	// Force allows overwriting system-side edits (system_changed entries).
	// Conflicts are never synced, forced or not.
	Force bool

	// Quiet suppresses per-entry warnings on skip.
	Quiet bool

	// NoBackup suppresses the pre-overwrite backup snapshot.
	NoBackup bool
}

// SyncSummary reports the outcome of a batch sync.
type SyncSummary struct {
	Synced    int
	Unchanged int
	Skipped   int
}

// EntryStatus is one row of a status report.
type EntryStatus struct {
	Entry        ConfigEntry
	Change       ChangeType
	UsedOverride bool

	// SourcePath is the effective source path after override resolution.
	SourcePath string
}
