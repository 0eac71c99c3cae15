package main

// Command descriptions, kept together so the CLI copy is easy to review
const (
	rootShort = "Keep tracked config files mirrored onto their system locations"
	rootLong  = `dotmirror keeps a tree of repository-tracked configuration files mirrored
onto their live system locations. It detects when either side changed since
the last sync and refuses to overwrite local edits unless forced; conflicts
are always surfaced, never auto-resolved.`

	statusShort = "Show the sync classification of every tracked entry"
	statusLong  = `Classify every tracked entry by comparing current source content, current
system content and the hashes recorded at the last sync, and print one line
per entry.`

	syncShort = "Sync tracked entries onto their system locations"
	syncLong  = `Sync the named entries, or every tracked entry when no names are given.
Entries whose system file changed since the last sync are skipped unless
--force is set; conflicted entries are always skipped. The current system
file is snapshotted into the backup directory before being overwritten.`

	historyShort = "Show recent sync runs"

	watchShort = "Watch the config tree and reprint status on changes"
	watchLong  = `Watch the config tree for edits and print a fresh status report whenever
a tracked file, override or manifest changes. Stop with Ctrl-C.`
)
