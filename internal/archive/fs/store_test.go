package fs

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/daniacca/remcsim/internal/archive/core"
	"github.com/daniacca/remcsim/internal/remc"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func testSnapshot(id string) remc.Snapshot {
	return remc.Snapshot{
		ID:          id,
		Name:        "test-system",
		TakenAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Volume:      10,
		Temperature: 1,
		Particles: []remc.Particle{
			{ID: 1, Type: 1, Position: [3]float64{0.5, 0.5, 0.5}},
		},
		TypeCounts: map[int]int{1: 1},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	snap := testSnapshot("snap-a")
	info, err := store.Put(ctx, snap)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.ID != "snap-a" || info.Size == 0 {
		t.Fatalf("unexpected info: %+v", info)
	}
	got, err := store.Get(ctx, "snap-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("snapshot changed in archive:\nwant %+v\ngot  %+v", snap, got)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, testSnapshot("persisted")); err != nil {
		t.Fatalf("put: %v", err)
	}
	reopened, err := New(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := reopened.Get(ctx, "persisted"); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	infos, err := reopened.List(ctx)
	if err != nil || len(infos) != 1 || infos[0].ID != "persisted" {
		t.Fatalf("list after reopen: %+v (%v)", infos, err)
	}
}

func TestStorePutRules(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, remc.Snapshot{}); err != core.ErrEmptyID {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
	if _, err := store.Put(ctx, testSnapshot("../escape")); err == nil {
		t.Fatalf("expected invalid id error")
	}
	if _, err := store.Put(ctx, testSnapshot("a/b")); err == nil {
		t.Fatalf("expected invalid id error")
	}
	if _, err := store.Put(ctx, testSnapshot("dup")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, testSnapshot("dup")); err == nil {
		t.Fatalf("expected duplicate put error")
	}
}

func TestStoreGetMissing(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := store.Get(context.Background(), "missing"); err == nil {
		t.Fatalf("expected get error")
	}
}

func TestStoreDelete(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if ok, err := store.Delete(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected delete false, got %v %v", ok, err)
	}
	if _, err := store.Put(ctx, testSnapshot("gone")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ok, err := store.Delete(ctx, "gone"); err != nil || !ok {
		t.Fatalf("expected delete true, got %v %v", ok, err)
	}
	if infos, err := store.List(ctx); err != nil || len(infos) != 0 {
		t.Fatalf("expected empty list after delete, got %+v (%v)", infos, err)
	}
}

func TestStoreListIgnoresForeignFiles(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, testSnapshot("keep")); err != nil {
		t.Fatalf("put: %v", err)
	}
	writeFile(t, root, "README.txt", "not a snapshot")
	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "keep" {
		t.Fatalf("expected foreign files ignored, got %+v", infos)
	}
}

func TestStoreDriverAndRoot(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("expected fs driver, got %s", store.Driver())
	}
	if store.Root() != root {
		t.Fatalf("expected root %s, got %s", root, store.Root())
	}
}
