package backup

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackupCopiesDirectory(t *testing.T) {
	logger := zerolog.New(io.Discard)
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "grupoNioiObras.json"), []byte(`[]`), 0o644))

	svc := NewService(src, Config{Enabled: true, StoragePath: dst}, &logger)
	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "backup_")

	copied := filepath.Join(dst, entries[0].Name(), "grupoNioiObras.json")
	data, err := os.ReadFile(copied)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), data)
}

func TestPerformBackupCopiesSingleFile(t *testing.T) {
	logger := zerolog.New(io.Discard)
	src := filepath.Join(t.TempDir(), "backoffice.db")
	require.NoError(t, os.WriteFile(src, []byte("sqlite"), 0o644))
	dst := t.TempDir()

	svc := NewService(src, Config{Enabled: true, StoragePath: dst}, &logger)
	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), ".db")
}
