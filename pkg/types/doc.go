// Package types defines the shared data model for dotmirror: config
// entries, sync records, change classifications and the filesystem
// interface every component operates through.
package types
