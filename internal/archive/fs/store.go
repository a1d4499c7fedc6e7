// Package fs implements a snapshot archive on the local filesystem. Each
// snapshot is one JSON file named <id>.json under the root directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/daniacca/remcsim/internal/archive/core"
	"github.com/daniacca/remcsim/internal/remc"
)

// Store implements core.Store rooted at a local directory.
type Store struct {
	root string
}

// New returns a filesystem-backed snapshot archive rooted at path,
// creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./snapshots"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Driver returns the archive driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

// pathFor maps a snapshot ID to its file, rejecting IDs that could
// escape the root.
func (s *Store) pathFor(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", core.ErrEmptyID
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid snapshot id %q", id)
	}
	return filepath.Join(s.root, id+".json"), nil
}

// Put archives a new snapshot; errors if its ID is already archived.
func (s *Store) Put(_ context.Context, snapshot remc.Snapshot) (core.Info, error) {
	path, err := s.pathFor(snapshot.ID)
	if err != nil {
		return core.Info{}, err
	}
	if _, err := os.Stat(path); err == nil {
		return core.Info{}, fmt.Errorf("snapshot %s already archived", snapshot.ID)
	}
	data, err := remc.EncodeSnapshotJSON(snapshot)
	if err != nil {
		return core.Info{}, err
	}
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return core.Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return core.Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return core.Info{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return core.Info{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return core.Info{}, err
	}
	return core.Info{ID: snapshot.ID, Size: st.Size(), LastModified: st.ModTime().UTC()}, nil
}

// Get returns the archived snapshot with the given ID.
func (s *Store) Get(_ context.Context, id string) (remc.Snapshot, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return remc.Snapshot{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return remc.Snapshot{}, fmt.Errorf("snapshot %s not found", id)
	}
	if err != nil {
		return remc.Snapshot{}, err
	}
	return remc.DecodeSnapshotJSON(data)
}

// List returns all archived snapshots ordered by ID.
func (s *Store) List(_ context.Context) ([]core.Info, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var infos []core.Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		st, err := entry.Info()
		if err != nil {
			return nil, err
		}
		infos = append(infos, core.Info{
			ID:           strings.TrimSuffix(entry.Name(), ".json"),
			Size:         st.Size(),
			LastModified: st.ModTime().UTC(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Delete removes the snapshot returning true if it existed.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, err
	}
	return true, nil
}

// Root returns the archive's root directory.
func (s *Store) Root() string { return s.root }
