package types

// ConfigEntry is one tracked configuration file, loaded from the manifest.
// Entries are immutable: the manifest is re-read on every operation, so a
// ConfigEntry is never mutated after parsing.
type ConfigEntry struct {
	// Key is the logical name, unique across the tracked set
	Key string

	// Source is the path to the base content file, relative to the
	// config tree root
	Source string

	// Target is the system location this entry syncs to. It may contain
	// a leading ~ and $VAR / ${VAR} references which must be expanded
	// before any file operation.
	Target string
}
