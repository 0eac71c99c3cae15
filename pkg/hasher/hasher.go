// Package hasher computes content fingerprints for change detection.
// Fingerprints are SHA-256 hex digests; equality of fingerprints is used
// everywhere as a proxy for content equality, never for content recovery.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/dotmirror/dotmirror/pkg/logging"
	"github.com/dotmirror/dotmirror/pkg/types"
)

// Hash returns the fingerprint of the given content.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashString returns the fingerprint of the given string content.
func HashString(content string) string {
	return Hash([]byte(content))
}

// HashFile returns the fingerprint of the file at path. ok is false when
// the file is absent or unreadable; callers must treat that as "absent"
// and never substitute the hash of empty content for a missing file.
func HashFile(fsys types.FS, path string) (digest string, ok bool) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger := logging.GetLogger("hasher")
			logger.Debug().Err(err).Str("path", path).Msg("treating unreadable file as absent")
		}
		return "", false
	}
	return Hash(data), true
}
