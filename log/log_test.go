package log

import (
	"path/filepath"
	"testing"

	"github.com/MinterTeam/minter-swap/config"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogPath = filepath.Join(t.TempDir(), "swap.log")

	for _, format := range []string{config.LogFormatPlain, config.LogFormatJSON} {
		cfg.LogFormat = format
		l, err := NewLogger(cfg)
		require.NoError(t, err)
		l.With("module", "state").Info("committed", "height", 1)
	}

	cfg.LogFormat = "xml"
	_, err := NewLogger(cfg)
	require.Error(t, err)
}

func TestNewLoggerBadLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogPath = filepath.Join(t.TempDir(), "swap.log")
	cfg.LogLevel = "state:loud"

	_, err := NewLogger(cfg)
	require.Error(t, err)
}
