package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "./fake-server", cfg.DataDir)
	assert.Equal(t, "json", cfg.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "localhost:3001", cfg.Addr())
	assert.Equal(t, "http://localhost:3001", cfg.BaseURL())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	file := filepath.Join(dir, "fake.yaml")
	require.NoError(t, os.WriteFile(file, []byte("port: 4000\nhost: 0.0.0.0\nbackend: memory\n"), 0o644))
	t.Setenv("FAKE_SERVER_PORT", "5000")
	t.Setenv("FAKE_SERVER_DATA_DIR", "/tmp/data")

	cfg, err := Load(newFlags(t, "--config", file, "--backend", "sqlite"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host, "from file")
	assert.Equal(t, 5000, cfg.Port, "env beats file")
	assert.Equal(t, "/tmp/data", cfg.DataDir, "env beats default")
	assert.Equal(t, "sqlite", cfg.Backend, "flag beats file")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FAKE_SERVER_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FAKE_SERVER_LOG_LEVEL") })

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(newFlags(t, "--config", "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Host: "localhost", Port: 3001, DataDir: "data", Backend: "json"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"no data dir", func(c *Config) { c.DataDir = "" }},
		{"unknown backend", func(c *Config) { c.Backend = "redis" }},
		{"negative timeout", func(c *Config) { c.ShutdownTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
