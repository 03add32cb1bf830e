package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, 8, cfg.WorkingHours.StartHour)
	assert.Equal(t, 18, cfg.WorkingHours.EndHour)
	assert.Equal(t, 30, cfg.WorkingHours.SlotMinutes)
	assert.Equal(t, 24, cfg.Backup.IntervalHours)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
storage:
  backend: sqlite
  path: /tmp/test.db
working_hours:
  start_hour: 9
  end_hour: 17
  slot_minutes: 15
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/test.db", cfg.Storage.Path)
	assert.Equal(t, 15, cfg.WorkingHours.SlotMinutes)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis:6379")
	path := writeConfig(t, `
storage:
  backend: redis
redis:
  address: ${TEST_REDIS_ADDR}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	_, err := Load(writeConfig(t, "storage:\n  backend: mongodb\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "storage:\n  backend: redis\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "working_hours:\n  start_hour: 18\n  end_hour: 8\n"))
	assert.Error(t, err)
}
