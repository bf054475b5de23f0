package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// faultyFS wraps the real filesystem and fails selected calls.
type faultyFS struct {
	OSFileSystem
	mkdirErr  error
	writeErr  error
	removeErr error
}

func (f *faultyFS) MkdirTemp(dir, pattern string) (string, error) {
	if f.mkdirErr != nil {
		return "", f.mkdirErr
	}
	return f.OSFileSystem.MkdirTemp(dir, pattern)
}

func (f *faultyFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.OSFileSystem.WriteFile(name, data, perm)
}

func (f *faultyFS) RemoveAll(path string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.OSFileSystem.RemoveAll(path)
}

func TestWorkspaceManager_AcquireRelease(t *testing.T) {
	root := t.TempDir()
	m := NewWorkspaceManager(root, nil, nil, NewMockLogger())

	ws, err := m.Acquire("unlock")
	require.NoError(t, err)
	require.Equal(t, root, filepath.Dir(ws.Dir))
	require.True(t, strings.HasPrefix(filepath.Base(ws.Dir), workspacePrefix+"unlock-"))
	require.Equal(t, filepath.Join(ws.Dir, inputFileName), ws.InputPath)
	require.Equal(t, filepath.Join(ws.Dir, outputFileName), ws.OutputPath)

	require.NoError(t, ws.WriteInput([]byte("%PDF-1.7")))
	_, err = os.Stat(ws.InputPath)
	require.NoError(t, err)

	require.NoError(t, m.Release(ws))
	requireNoWorkspaces(t, root)
}

func TestWorkspaceManager_UniqueNames(t *testing.T) {
	root := t.TempDir()
	m := NewWorkspaceManager(root, nil, nil, NewMockLogger())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ws, err := m.Acquire("unlock")
		require.NoError(t, err)
		require.False(t, seen[ws.Dir], "duplicate workspace %s", ws.Dir)
		seen[ws.Dir] = true
	}
}

func TestWorkspaceManager_ReleaseFailure(t *testing.T) {
	fs := &faultyFS{removeErr: errors.New("device busy")}
	m := NewWorkspaceManager(t.TempDir(), fs, nil, NewMockLogger())

	ws, err := m.Acquire("unlock")
	require.NoError(t, err)

	err = m.Release(ws)
	require.Error(t, err)
	require.Contains(t, err.Error(), "device busy")
}

func TestWorkspaceManager_EnsureRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "scratch")
	m := NewWorkspaceManager(root, nil, nil, NewMockLogger())

	require.NoError(t, m.EnsureRoot())
	info, err := os.Stat(root)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestWorkspaceManager_SweepStale(t *testing.T) {
	root := t.TempDir()
	m := NewWorkspaceManager(root, nil, nil, NewMockLogger())

	stale, err := m.Acquire("unlock")
	require.NoError(t, err)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale.Dir, old, old))

	fresh, err := m.Acquire("unlock")
	require.NoError(t, err)

	unrelated := filepath.Join(root, "someone-else")
	require.NoError(t, os.Mkdir(unrelated, 0o700))
	require.NoError(t, os.Chtimes(unrelated, old, old))

	removed, err := m.SweepStale(time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = os.Stat(stale.Dir)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh.Dir)
	require.NoError(t, err)
	_, err = os.Stat(unrelated)
	require.NoError(t, err)
}

func TestWorkspaceManager_SweepMissingRoot(t *testing.T) {
	m := NewWorkspaceManager(filepath.Join(t.TempDir(), "absent"), nil, nil, NewMockLogger())

	removed, err := m.SweepStale(time.Hour)
	require.NoError(t, err)
	require.Zero(t, removed)
}
