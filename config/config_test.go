package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
storage:
  root: /var/lib/flatdb
  database: TestDB
log:
  verbose: true
auth:
  users_file: /etc/flatdb/users.json
  user: bob
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/flatdb", cfg.Storage.Root)
	assert.Equal(t, "TestDB", cfg.Storage.Database)
	assert.True(t, cfg.Log.Verbose)
	assert.Equal(t, "bob", cfg.Auth.User)
	assert.Equal(t, "/etc/flatdb/users.json", cfg.UsersPath())
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "storage:\n  database: Shop\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRoot, cfg.Storage.Root)
	assert.Equal(t, DefaultUsersFile, cfg.Auth.UsersFile)
	assert.Equal(t, filepath.Join(DefaultRoot, DefaultUsersFile), cfg.UsersPath())
	assert.False(t, cfg.Log.Verbose)

	assert.Equal(t, cfg.Storage.Root, Default().Storage.Root)
	assert.Empty(t, Default().Storage.Database)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = Load(writeConfig(t, "storage: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}
