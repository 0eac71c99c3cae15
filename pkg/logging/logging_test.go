package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		want      zerolog.Level
	}{
		{"default warns", 0, zerolog.WarnLevel},
		{"v is info", 1, zerolog.InfoLevel},
		{"vv is debug", 2, zerolog.DebugLevel},
		{"vvv is trace", 3, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_STATE_HOME", t.TempDir())
			SetupLogger(tt.verbosity)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger("classifier")
	// Component loggers must be usable without further setup.
	logger.Debug().Msg("noop")
}

func TestGetLogFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	assert.Equal(t, "/custom/state/dotmirror/dotmirror.log", getLogFilePath())
}
