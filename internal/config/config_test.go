package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "datacleanr/internal/errors"
)

// chdirTemp runs the test from an empty directory so no stray config.yaml or
// .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Server.MaxUploadBytes)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, DefaultSessionTTL, cfg.Storage.SessionTTL)
	assert.NotEmpty(t, cfg.Storage.ScratchDir)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yamlConfig := []byte(`
server:
  port: 9000
  max_upload_bytes: 1024
storage:
  session_ttl: 2h
rules:
  file: rules.yaml
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yamlConfig, 0o644))

	t.Setenv("DATACLEANR_SERVER_PORT", "9100")
	t.Setenv("DATACLEANR_STORAGE_BACKEND", "SQLite")
	t.Setenv("DATACLEANR_STORAGE_DSN", "file:sessions.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env wins over file")
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes, "file wins over defaults")
	assert.Equal(t, 2*time.Hour, cfg.Storage.SessionTTL)
	assert.Equal(t, "rules.yaml", cfg.Rules.File)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, DefaultReadTimeout, cfg.Server.ReadTimeout, "untouched keys keep defaults")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATACLEANR_LOGGING_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DATACLEANR_LOGGING_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "redis" }, wantErr: true},
		{name: "sql backend without dsn", mutate: func(c *Config) { c.Storage.Backend = BackendPostgres }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.Storage.SessionTTL = 0 }, wantErr: true},
		{name: "sample ratio out of range", mutate: func(c *Config) { c.Telemetry.SampleRatio = 2 }, wantErr: true},
		{name: "unknown log output falls back", mutate: func(c *Config) { c.Logging.Output = "syslog" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var appErr *apierrors.AppError
			assert.True(t, errors.As(err, &appErr))
			assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
		})
	}
}
