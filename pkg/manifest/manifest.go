// Package manifest loads the tracked-entry manifest: the base
// manifest.json deep-merged with the machine-local manifest.local.json.
// The manifest is reloaded fresh on every operation, so edits take
// effect on the next status or sync.
package manifest

import (
	"os"
	"sort"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dotmirror/dotmirror/pkg/errors"
	"github.com/dotmirror/dotmirror/pkg/hasher"
	"github.com/dotmirror/dotmirror/pkg/types"
)

// Entry is one tracked config in manifest form
type Entry struct {
	Source string `koanf:"source"`
	Target string `koanf:"target"`
}

// Manifest is the merged, validated configuration document
type Manifest struct {
	Version string           `koanf:"version"`
	Configs map[string]Entry `koanf:"configs"`

	// Hash fingerprints the raw manifest bytes; stored in the state
	// file's manifest_hash field (reserved, not used for invalidation)
	Hash string `koanf:"-"`
}

// Load reads and merges the base and local manifests. The base manifest
// is required; the local one is merged on top when present. Missing
// files, unparsable JSON, a missing version field or malformed entries
// are configuration errors and fail loudly: there is no safe default.
func Load(basePath, localPath string) (*Manifest, error) {
	raw, err := os.ReadFile(basePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "cannot read manifest %s", basePath)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(basePath), json.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "cannot parse manifest %s", basePath)
	}

	if localRaw, err := os.ReadFile(localPath); err == nil {
		raw = append(raw, localRaw...)
		if err := k.Load(file.Provider(localPath), json.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrManifestParse, "cannot parse local manifest %s", localPath)
		}
	}

	var m Manifest
	if err := k.Unmarshal("", &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestParse, "cannot decode manifest")
	}
	m.Hash = hasher.Hash(raw)

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Version == "" {
		return errors.New(errors.ErrManifestValid, "manifest has no version field")
	}
	for key, entry := range m.Configs {
		if key == "" {
			return errors.New(errors.ErrManifestValid, "manifest has an entry with an empty key")
		}
		if entry.Source == "" {
			return errors.Newf(errors.ErrManifestValid, "entry %q has no source", key)
		}
		if entry.Target == "" {
			return errors.Newf(errors.ErrManifestValid, "entry %q has no target", key)
		}
	}
	return nil
}

// Entries returns the tracked entries sorted by key for deterministic
// iteration order.
func (m *Manifest) Entries() []types.ConfigEntry {
	keys := make([]string, 0, len(m.Configs))
	for key := range m.Configs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]types.ConfigEntry, 0, len(keys))
	for _, key := range keys {
		entry := m.Configs[key]
		out = append(out, types.ConfigEntry{
			Key:    key,
			Source: entry.Source,
			Target: entry.Target,
		})
	}
	return out
}

// Entry returns the entry for key, or false when the key is not tracked
func (m *Manifest) Entry(key string) (types.ConfigEntry, bool) {
	entry, ok := m.Configs[key]
	if !ok {
		return types.ConfigEntry{}, false
	}
	return types.ConfigEntry{Key: key, Source: entry.Source, Target: entry.Target}, true
}
