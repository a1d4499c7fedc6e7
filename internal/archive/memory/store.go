// Package memory implements an in-memory snapshot archive for tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/daniacca/remcsim/internal/archive/core"
	"github.com/daniacca/remcsim/internal/remc"
)

type archiveEntry struct {
	info core.Info
	data []byte
}

// Store implements core.Store backed by process memory.
type Store struct {
	mu   sync.RWMutex
	objs map[string]archiveEntry
}

// New returns an in-memory snapshot archive.
func New() *Store { return &Store{objs: make(map[string]archiveEntry)} }

// Driver returns the archive driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Put archives a new snapshot; errors if its ID is already archived.
func (s *Store) Put(_ context.Context, snapshot remc.Snapshot) (core.Info, error) {
	if snapshot.ID == "" {
		return core.Info{}, core.ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[snapshot.ID]; exists {
		return core.Info{}, fmt.Errorf("snapshot %s already archived", snapshot.ID)
	}
	data, err := remc.EncodeSnapshotJSON(snapshot)
	if err != nil {
		return core.Info{}, err
	}
	info := core.Info{ID: snapshot.ID, Size: int64(len(data)), LastModified: time.Now().UTC()}
	s.objs[snapshot.ID] = archiveEntry{info: info, data: data}
	return info, nil
}

// Get returns the archived snapshot with the given ID.
func (s *Store) Get(_ context.Context, id string) (remc.Snapshot, error) {
	s.mu.RLock()
	obj, ok := s.objs[id]
	s.mu.RUnlock()
	if !ok {
		return remc.Snapshot{}, fmt.Errorf("snapshot %s not found", id)
	}
	return remc.DecodeSnapshotJSON(obj.data)
}

// List returns all archived snapshots ordered by ID.
func (s *Store) List(_ context.Context) ([]core.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Info, 0, len(s.objs))
	for _, v := range s.objs {
		out = append(out, v.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes the snapshot returning true if it existed.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objs[id]
	if ok {
		delete(s.objs, id)
	}
	return ok, nil
}
