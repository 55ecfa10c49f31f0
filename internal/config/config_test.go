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
	t.Setenv("ENV", "unittest")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "unittest", cfg.Env)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "none", cfg.Events.Broker)
	assert.Equal(t, "Cluses", cfg.Documents.IssuePlace)
	assert.Equal(t, int64(10*1024*1024), cfg.Uploads.MaxFileSize)
	assert.Equal(t, 8*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 10.0, cfg.Auth.LoginRate)
	assert.Equal(t, 5, cfg.Auth.LoginBurst)
	assert.Equal(t, "contact@scouts-cluses.fr", cfg.Legal.Contact)

	require.Len(t, cfg.Categories, 3)
	assert.Equal(t, CategoryConfig{DisplayName: "Louveteaux", MinAge: 8, MaxAge: 11}, cfg.Categories["louveteau"])
	assert.Equal(t, CategoryConfig{DisplayName: "Scouts", MinAge: 11, MaxAge: 17}, cfg.Categories["scout"])
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("ENV", "unittest")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_PASSWORD", "pg-secret")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	yaml := []byte(`
server:
  port: "8080"
events:
  broker: nats
  nats:
    url: nats://localhost:4222
auth:
  session_ttl: 30m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.unittest.yaml"), yaml, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "nats", cfg.Events.Broker)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NATS.URL)
	assert.Equal(t, "registrations.created", cfg.Events.NATS.Subject)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "pg-secret", cfg.Database.Password)
}

func TestLoadWithFlags(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENV", "unittest")

	flags := pflag.NewFlagSet("roster", pflag.ContinueOnError)
	flags.String("database.host", "localhost", "")
	require.NoError(t, flags.Parse([]string{"--database.host=db.internal"}))

	cfg, err := LoadWithFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}
