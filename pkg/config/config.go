// Package config loads dotmirror's tool configuration: defaults overlaid
// with an optional .dotmirror.toml or .dotmirror.yaml at the root of the
// config tree. This is tool behavior only; the tracked entries live in
// the manifest (pkg/manifest).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dotmirror/dotmirror/pkg/errors"
)

// Candidate config file names at the tree root, tried in order
var configFileNames = []string{".dotmirror.toml", "dotmirror.toml", ".dotmirror.yaml", "dotmirror.yaml"}

// Config is the tool configuration
type Config struct {
	Tree struct {
		// OverridesDir is the directory name for machine overrides,
		// relative to the tree root
		OverridesDir string `koanf:"overrides_dir"`
	} `koanf:"tree"`

	Sync struct {
		// Backup enables pre-overwrite snapshots
		Backup bool `koanf:"backup"`
	} `koanf:"sync"`

	History struct {
		// Enabled turns the sync execution journal on
		Enabled bool `koanf:"enabled"`
	} `koanf:"history"`
}

// defaults returns the built-in configuration values
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"tree.overrides_dir": "overrides",
		"sync.backup":        true,
		"history.enabled":    true,
	}
}

// Load reads the tool configuration for the given tree root. A missing
// config file yields the defaults; an unparsable one fails loudly.
func Load(root string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot load default configuration")
	}

	for _, name := range configFileNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), parserFor(name)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot load config from %s", path)
		}
		break
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot decode configuration")
	}
	return &cfg, nil
}

func parserFor(name string) koanf.Parser {
	if strings.HasSuffix(name, ".yaml") {
		return yaml.Parser()
	}
	return toml.Parser()
}
