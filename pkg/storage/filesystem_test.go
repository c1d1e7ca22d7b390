package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("run-1/faculty_timetable.csv", []byte("Faculty,Day\n"))
	require.NoError(t, err)
	assert.Equal(t, "run-1/faculty_timetable.csv", rel)
	assert.True(t, store.Exists(rel))
	assert.False(t, store.Exists("run-1/missing.csv"))

	data, err := os.ReadFile(store.Path(rel))
	require.NoError(t, err)
	assert.Equal(t, "Faculty,Day\n", string(data))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.csv", []byte("x"))
	require.Error(t, err)
	assert.Empty(t, store.Path("/etc/passwd"))
	assert.Empty(t, store.Path("../outside.csv"))
	assert.False(t, store.Exists("../../etc/passwd"))
}

func TestLocalStorageCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("old/summary.csv", []byte("x"))
	require.NoError(t, err)
	_, err = store.Save("new/summary.csv", []byte("y"))
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old", "summary.csv"), past, past))

	deleted, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old/summary.csv"}, deleted)
	assert.True(t, store.Exists("new/summary.csv"))
}
