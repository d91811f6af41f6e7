package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndCleanup(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, err := store.SaveTemp(ctx, "clip.mp4", strings.NewReader("video bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))

	require.NoError(t, store.CleanupTemp(ctx, []string{path}))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_SaveTempSanitizesName(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	path, err := store.SaveTemp(ctx, "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)

	// The spooled file stays inside the temp dir.
	assert.Equal(t, dir, filepath.Dir(path))
}

func TestLocalStorage_CleanupTempIgnoresMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.CleanupTemp(ctx, []string{"", "/nonexistent/file"}))
}

func TestLocalStorage_ArchiveNotConfigured(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.ArchiveReport(context.Background(), "analyses/key.txt", "report")
	assert.ErrorIs(t, err, ErrArchiveNotConfigured)
}

func TestLocalStorage_SaveTempCancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.SaveTemp(ctx, "clip.mp4", strings.NewReader("x"))
	assert.Error(t, err)
}
