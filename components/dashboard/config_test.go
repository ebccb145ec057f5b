package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigAppliesDefaults(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader("backend_url: http://api.local\nrefresh_interval: 2m\nprediction_days: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://api.local", cfg.BackendURL)
	assert.Equal(t, 2*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, DefaultLiveInterval, cfg.LiveInterval)
	assert.Equal(t, 7, cfg.PredictionDays)
	assert.Equal(t, "TSLA", cfg.Symbol)
	assert.Equal(t, "tesla", cfg.ExportPrefix())
}

func TestDecodeConfigEmptyDocument(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestDecodeConfigValidatesSchema(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "backend: http://x\n",
		"bad days":     "prediction_days: 90\n",
		"bad duration": "refresh_interval: soon\n",
		"bad level":    "log_level: loud\n",
	}
	for name, payload := range cases {
		if _, err := DecodeConfig(strings.NewReader(payload)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":9876", cfg.Listen)

	path := filepath.Join(t.TempDir(), "stockdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbol: rivn\ntimeframe: 30\n"), 0o600))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Timeframe)
	assert.Equal(t, "RIVN", cfg.Company())
}
