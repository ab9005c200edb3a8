package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"NOTEKEEPER_API_URL", "NOTEKEEPER_UPDATE_STRATEGY", "NOTEKEEPER_LOG_LEVEL", "NOTEKEEPER_TIMEOUT"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, StrategyRecreate, cfg.UpdateStrategy)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, filepath.Join(dir, "notekeeper"), cfg.ConfigDir)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notekeeper"), 0o700))
	require.NoError(t, os.WriteFile(DefaultFile(), []byte(
		"base_url: http://file:9000\nupdate_strategy: replace\ntimeout: 5s\nlog_level: debug\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://file:9000", cfg.BaseURL)
	require.Equal(t, StrategyReplace, cfg.UpdateStrategy)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, "debug", cfg.LogLevel)

	t.Setenv("NOTEKEEPER_API_URL", "http://env:1")
	t.Setenv("NOTEKEEPER_TIMEOUT", "2s")
	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, "http://env:1", cfg.BaseURL)
	require.Equal(t, 2*time.Second, cfg.Timeout)
	require.Equal(t, StrategyReplace, cfg.UpdateStrategy)
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err, "explicit missing file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("base_url: [oops"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)

	t.Setenv("NOTEKEEPER_UPDATE_STRATEGY", "patch")
	cfg, err := Load("")
	require.NoError(t, err, "validation is left to the caller")
	require.ErrorContains(t, cfg.Validate(), "update_strategy")

	t.Setenv("NOTEKEEPER_UPDATE_STRATEGY", "")
	t.Setenv("NOTEKEEPER_TIMEOUT", "soon")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	ok := Default()
	require.NoError(t, ok.Validate())

	mixed := Default()
	mixed.UpdateStrategy = " Replace "
	require.NoError(t, mixed.Validate())

	tests := []struct {
		name string
		mod  func(*Config)
		want string
	}{
		{"empty url", func(c *Config) { c.BaseURL = " " }, "base_url"},
		{"strategy", func(c *Config) { c.UpdateStrategy = "patch" }, "update_strategy"},
		{"timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mod(&cfg)
			require.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}
