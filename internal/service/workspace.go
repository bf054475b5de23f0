package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pdf-tools-server/internal/domain"
)

const (
	// workspacePrefix marks directories owned by this service under the temp root.
	workspacePrefix = "pdftools-"

	inputFileName  = "input.pdf"
	outputFileName = "output.pdf"
)

// FileSystem is the subset of filesystem calls used by scratch workspaces.
// It exists so tests can inject failures.
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	MkdirTemp(dir, pattern string) (string, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]os.DirEntry, error)
	RemoveAll(path string) error
}

// OSFileSystem implements FileSystem on top of package os.
type OSFileSystem struct{}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (OSFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}
func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}
func (OSFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }
func (OSFileSystem) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }
func (OSFileSystem) RemoveAll(path string) error { return os.RemoveAll(path) }

// Workspace is a uniquely named directory owned by exactly one invocation.
type Workspace struct {
	Dir        string
	InputPath  string
	OutputPath string

	fs FileSystem
}

// WriteInput stages the upload bytes verbatim.
func (w *Workspace) WriteInput(data []byte) error {
	return w.fs.WriteFile(w.InputPath, data, 0o600)
}

// ReadOutput loads the capability result in full.
func (w *Workspace) ReadOutput() ([]byte, error) {
	return w.fs.ReadFile(w.OutputPath)
}

// WorkspaceManager creates and removes scratch workspaces under a shared root.
type WorkspaceManager struct {
	root     string
	fs       FileSystem
	observer Observer
	logger   domain.Logger
}

// NewWorkspaceManager creates a manager rooted at root. An empty root means
// the platform temp directory.
func NewWorkspaceManager(root string, fs FileSystem, observer Observer, logger domain.Logger) *WorkspaceManager {
	if root == "" {
		root = os.TempDir()
	}
	if fs == nil {
		fs = OSFileSystem{}
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &WorkspaceManager{
		root:     root,
		fs:       fs,
		observer: observer,
		logger:   logger,
	}
}

// Root returns the directory new workspaces are created in.
func (m *WorkspaceManager) Root() string {
	return m.root
}

// EnsureRoot creates the temp root if it does not exist yet.
func (m *WorkspaceManager) EnsureRoot() error {
	if err := m.fs.MkdirAll(m.root, 0o700); err != nil {
		return fmt.Errorf("failed to create temp root %s: %w", m.root, err)
	}
	return nil
}

// Acquire creates a fresh workspace for one invocation of operation.
func (m *WorkspaceManager) Acquire(operation string) (*Workspace, error) {
	dir, err := m.fs.MkdirTemp(m.root, workspacePrefix+operation+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	m.observer.RecordWorkspaceCreated()
	m.logger.Debug("Scratch workspace acquired", "dir", dir, "operation", operation)

	return &Workspace{
		Dir:        dir,
		InputPath:  filepath.Join(dir, inputFileName),
		OutputPath: filepath.Join(dir, outputFileName),
		fs:         m.fs,
	}, nil
}

// Release removes the workspace and everything in it.
func (m *WorkspaceManager) Release(ws *Workspace) error {
	if ws == nil {
		return nil
	}
	err := m.fs.RemoveAll(ws.Dir)
	m.observer.RecordWorkspaceRemoved(err)
	if err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", ws.Dir, err)
	}
	m.logger.Debug("Scratch workspace released", "dir", ws.Dir)
	return nil
}

// SweepStale removes workspaces left behind by a previous process. Only
// directories older than olderThan are touched so that live invocations are
// never affected.
func (m *WorkspaceManager) SweepStale(olderThan time.Duration) (int, error) {
	entries, err := m.fs.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list temp root: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspacePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(m.root, entry.Name())
		if err := m.fs.RemoveAll(dir); err != nil {
			m.logger.Warn("Failed to remove stale workspace", "dir", dir, "error", err)
			continue
		}
		m.logger.Info("Removed stale workspace", "dir", dir)
		removed++
	}
	return removed, nil
}
