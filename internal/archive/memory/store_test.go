package memory

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/daniacca/remcsim/internal/archive/core"
	"github.com/daniacca/remcsim/internal/remc"
)

func testSnapshot(id string) remc.Snapshot {
	return remc.Snapshot{
		ID:          id,
		Name:        "test-system",
		TakenAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Volume:      10,
		Temperature: 1,
		Particles: []remc.Particle{
			{ID: 1, Type: 1, Charge: 0, Position: [3]float64{0.5, 0.5, 0.5}},
			{ID: 2, Type: 2, Charge: -1, Position: [3]float64{1, 1, 1}},
		},
		TypeCounts: map[int]int{1: 1, 2: 1},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()
	snap := testSnapshot("snap-a")
	info, err := store.Put(ctx, snap)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.ID != "snap-a" || info.Size == 0 || info.LastModified.IsZero() {
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

func TestStorePutRules(t *testing.T) {
	store := New()
	ctx := context.Background()
	if _, err := store.Put(ctx, remc.Snapshot{}); err != core.ErrEmptyID {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
	if _, err := store.Put(ctx, testSnapshot("dup")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, testSnapshot("dup")); err == nil {
		t.Fatalf("expected duplicate put error")
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := New()
	if _, err := store.Get(context.Background(), "missing"); err == nil {
		t.Fatalf("expected get error")
	}
}

func TestStoreListSorted(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		if _, err := store.Put(ctx, testSnapshot(id)); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 || infos[0].ID != "a" || infos[1].ID != "b" || infos[2].ID != "c" {
		t.Fatalf("expected sorted list, got %+v", infos)
	}
}

func TestStoreDelete(t *testing.T) {
	store := New()
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
	if _, err := store.Get(ctx, "gone"); err == nil {
		t.Fatalf("expected get error after delete")
	}
}

func TestStoreDriver(t *testing.T) {
	if New().Driver() != core.DriverMemory {
		t.Fatalf("expected memory driver")
	}
}
