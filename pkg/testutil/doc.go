// Package testutil provides shared test helpers: an in-memory types.FS
// with error injection and checksum convenience functions.
package testutil
