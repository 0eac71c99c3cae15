// Package paths provides centralized path handling for dotmirror.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dotmirror/dotmirror/pkg/errors"
)

// Environment variable names
const (
	// EnvRoot is the primary environment variable for the config tree root
	EnvRoot = "DOTMIRROR_ROOT"

	// EnvStateDir overrides the XDG state directory for dotmirror
	EnvStateDir = "DOTMIRROR_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files. These constants define dotmirror's
// on-disk layout and must remain consistent across installations;
// user-configurable names belong in pkg/config instead.
const (
	// DefaultRootDir is the default directory name for the config tree
	DefaultRootDir = "dotfiles"

	// AppDirName is the directory name for dotmirror-specific state
	AppDirName = "dotmirror"

	// DefaultOverridesDirName holds machine-specific override files,
	// sibling to the base config files at the root of the tree
	DefaultOverridesDirName = "overrides"

	// ManifestFileName is the base manifest at the root of the tree
	ManifestFileName = "manifest.json"

	// LocalManifestFileName is the machine manifest merged on top
	LocalManifestFileName = "manifest.local.json"

	// StateFileName is the persisted sync-state file
	StateFileName = "state.json"

	// BackupsDirName holds pre-overwrite snapshots
	BackupsDirName = "backups"

	// HistoryDBName is the sync execution journal
	HistoryDBName = "history.db"

	// LogFileName is the name of the log file
	LogFileName = "dotmirror.log"
)

// Paths provides centralized path management for dotmirror
type Paths interface {
	// Root returns the config tree root directory
	Root() string

	// SourcePath resolves an entry's relative source path against the root
	SourcePath(rel string) string

	// OverridesDir returns the machine-override directory
	OverridesDir() string

	// OverridePath returns the override candidate for a source path,
	// looked up by filename only
	OverridePath(source string) string

	// ManifestPath returns the base manifest path
	ManifestPath() string

	// LocalManifestPath returns the machine manifest path
	LocalManifestPath() string

	// StateDir returns the dotmirror state directory
	StateDir() string

	// StateFilePath returns the persisted sync-state file path
	StateFilePath() string

	// BackupDir returns the pre-overwrite snapshot directory
	BackupDir() string

	// HistoryDBPath returns the sync journal database path
	HistoryDBPath() string

	// LogFilePath returns the log file path
	LogFilePath() string

	// ExpandTarget expands ~ and environment-variable references in a
	// target path. Every file operation on a target goes through this.
	ExpandTarget(target string) (string, error)
}

type paths struct {
	root          string
	stateDir      string
	overridesName string
}

// Option customizes a Paths instance
type Option func(*paths)

// WithOverridesDirName overrides the conventional overrides directory name
func WithOverridesDirName(name string) Option {
	return func(p *paths) {
		if name != "" {
			p.overridesName = name
		}
	}
}

// New creates a new Paths instance with the given config tree root.
// If root is empty, it is determined from DOTMIRROR_ROOT or defaults
// to ~/dotfiles.
func New(root string, opts ...Option) (Paths, error) {
	p := &paths{overridesName: DefaultOverridesDirName}

	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrPathExpand, "cannot determine home directory for default root")
		}
		root = filepath.Join(home, DefaultRootDir)
	}

	expanded, err := expandHome(root)
	if err != nil {
		return nil, err
	}
	p.root = filepath.Clean(expanded)

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = filepath.Clean(dir)
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

func (p *paths) Root() string {
	return p.root
}

func (p *paths) SourcePath(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(p.root, rel)
}

func (p *paths) OverridesDir() string {
	return filepath.Join(p.root, p.overridesName)
}

func (p *paths) OverridePath(source string) string {
	return filepath.Join(p.OverridesDir(), filepath.Base(source))
}

func (p *paths) ManifestPath() string {
	return filepath.Join(p.root, ManifestFileName)
}

func (p *paths) LocalManifestPath() string {
	return filepath.Join(p.root, LocalManifestFileName)
}

func (p *paths) StateDir() string {
	return p.stateDir
}

func (p *paths) StateFilePath() string {
	return filepath.Join(p.stateDir, StateFileName)
}

func (p *paths) BackupDir() string {
	return filepath.Join(p.stateDir, BackupsDirName)
}

func (p *paths) HistoryDBPath() string {
	return filepath.Join(p.stateDir, HistoryDBName)
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

func (p *paths) ExpandTarget(target string) (string, error) {
	expanded, err := expandHome(target)
	if err != nil {
		return "", err
	}
	return filepath.Clean(os.ExpandEnv(expanded)), nil
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrPathExpand, "cannot expand %q", path)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
