package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		envSetup map[string]string
		validate func(t *testing.T, p Paths)
	}{
		{
			name: "explicit root",
			root: "/tmp/dotfiles",
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/tmp/dotfiles", p.Root())
			},
		},
		{
			name: "from DOTMIRROR_ROOT env",
			envSetup: map[string]string{
				EnvRoot: "/env/dotfiles",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/env/dotfiles", p.Root())
			},
		},
		{
			name: "default under home",
			validate: func(t *testing.T, p Paths) {
				home, err := os.UserHomeDir()
				require.NoError(t, err)
				assert.Equal(t, filepath.Join(home, DefaultRootDir), p.Root())
			},
		},
		{
			name: "expand tilde in explicit root",
			root: "~/my-dotfiles",
			validate: func(t *testing.T, p Paths) {
				home, err := os.UserHomeDir()
				require.NoError(t, err)
				assert.Equal(t, filepath.Join(home, "my-dotfiles"), p.Root())
			},
		},
		{
			name: "state dir from env",
			root: "/tmp/dotfiles",
			envSetup: map[string]string{
				EnvStateDir: "/custom/state",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/custom/state", p.StateDir())
				assert.Equal(t, "/custom/state/state.json", p.StateFilePath())
				assert.Equal(t, "/custom/state/backups", p.BackupDir())
				assert.Equal(t, "/custom/state/history.db", p.HistoryDBPath())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvRoot, "")
			t.Setenv(EnvStateDir, "")
			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}

			p, err := New(tt.root)
			require.NoError(t, err)
			tt.validate(t, p)
		})
	}
}

func TestTreeLayout(t *testing.T) {
	t.Setenv(EnvStateDir, "/state")
	p, err := New("/df")
	require.NoError(t, err)

	assert.Equal(t, "/df/configs/vimrc", p.SourcePath("configs/vimrc"))
	assert.Equal(t, "/abs/vimrc", p.SourcePath("/abs/vimrc"))
	assert.Equal(t, "/df/overrides", p.OverridesDir())
	assert.Equal(t, "/df/overrides/vimrc", p.OverridePath("configs/vimrc"))
	assert.Equal(t, "/df/manifest.json", p.ManifestPath())
	assert.Equal(t, "/df/manifest.local.json", p.LocalManifestPath())
}

func TestWithOverridesDirName(t *testing.T) {
	p, err := New("/df", WithOverridesDirName("machine"))
	require.NoError(t, err)

	assert.Equal(t, "/df/machine", p.OverridesDir())
	assert.Equal(t, "/df/machine/gitconfig", p.OverridePath("git/gitconfig"))
}

func TestExpandTarget(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("MY_CFG_DIR", "/opt/cfg")
	t.Setenv("MY_SUBDIR", "sub")

	p, err := New("/df")
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"tilde prefix", "~/.vimrc", filepath.Join(home, ".vimrc")},
		{"bare tilde", "~", home},
		{"env var", "$MY_CFG_DIR/app.toml", "/opt/cfg/app.toml"},
		{"braced env var", "${MY_CFG_DIR}/app.toml", "/opt/cfg/app.toml"},
		{"plain absolute", "/etc/app/app.conf", "/etc/app/app.conf"},
		{"tilde then env", "~/$MY_SUBDIR/rc", filepath.Join(home, "sub/rc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ExpandTarget(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
