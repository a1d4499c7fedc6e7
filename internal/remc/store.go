package remc

import (
	"fmt"
	"sort"
	"sync"
)

// ParticleStore is the population the engine mutates during trial moves.
// Implementations must hand out monotonically increasing IDs and never reuse
// one, so a restored particle is bit-identical to the removed original.
type ParticleStore interface {
	Box() [3]float64
	Create(typeID int, charge float64, pos Position) Particle
	Remove(id ParticleID) (Particle, error)
	Restore(p Particle)
	Relabel(id ParticleID, newType int, newCharge float64) error
	Get(id ParticleID) (Particle, bool)
	CountOfType(typeID int) int
	IDsOfType(typeID int) []ParticleID
	Len() int
	TypeCounts() map[int]int
	TotalCharge() float64
	All() []Particle
}

// BoxStore keeps the particle population of a rectangular box in memory.
// Per-type ID slices keep sampling free of map iteration order, so runs with
// a fixed seed replay exactly.
type BoxStore struct {
	mu        sync.RWMutex
	box       [3]float64
	particles map[ParticleID]Particle
	byType    map[int][]ParticleID
	nextID    ParticleID
}

// NewBoxStore returns an empty store for a box with the given side lengths.
func NewBoxStore(lx, ly, lz float64) *BoxStore {
	return &BoxStore{
		box:       [3]float64{lx, ly, lz},
		particles: make(map[ParticleID]Particle),
		byType:    make(map[int][]ParticleID),
	}
}

// Box returns the box side lengths.
func (b *BoxStore) Box() [3]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.box
}

// RandomPosition draws a uniform position inside the box.
func (b *BoxStore) RandomPosition(rng RandomSource) Position {
	box := b.Box()
	return Position{
		rng.UniformUnit() * box[0],
		rng.UniformUnit() * box[1],
		rng.UniformUnit() * box[2],
	}
}

// Create inserts a new particle of the given type and returns it. The ID is
// the next unused one; IDs are never recycled, even across removals.
func (b *BoxStore) Create(typeID int, charge float64, pos Position) Particle {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := Particle{ID: b.nextID, Type: typeID, Charge: charge, Position: pos}
	b.nextID++
	b.particles[p.ID] = p
	b.byType[typeID] = append(b.byType[typeID], p.ID)
	return p
}

// Remove deletes the particle and returns its full state so a rejected move
// can put it back unchanged.
func (b *BoxStore) Remove(id ParticleID) (Particle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.particles[id]
	if !ok {
		return Particle{}, fmt.Errorf("particle %d: %w", id, ErrParticleNotFound)
	}
	delete(b.particles, id)
	b.dropFromType(p.Type, id)
	return p, nil
}

// Restore reinserts a previously removed particle verbatim. The ID counter is
// bumped past the restored ID so future creates cannot collide.
func (b *BoxStore) Restore(p Particle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.particles[p.ID] = p
	b.byType[p.Type] = append(b.byType[p.Type], p.ID)
	if p.ID >= b.nextID {
		b.nextID = p.ID + 1
	}
}

// Relabel changes a particle's type and charge in place, keeping its ID and
// position. Used when a trial move reuses a consumed educt as a product.
func (b *BoxStore) Relabel(id ParticleID, newType int, newCharge float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.particles[id]
	if !ok {
		return fmt.Errorf("particle %d: %w", id, ErrParticleNotFound)
	}
	if p.Type != newType {
		b.dropFromType(p.Type, id)
		b.byType[newType] = append(b.byType[newType], id)
	}
	p.Type = newType
	p.Charge = newCharge
	b.particles[id] = p
	return nil
}

// Get returns the particle with the given ID.
func (b *BoxStore) Get(id ParticleID) (Particle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.particles[id]
	return p, ok
}

// CountOfType returns how many particles currently carry the given type.
func (b *BoxStore) CountOfType(typeID int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byType[typeID])
}

// IDsOfType returns a copy of the IDs currently carrying the given type.
func (b *BoxStore) IDsOfType(typeID int) []ParticleID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]ParticleID(nil), b.byType[typeID]...)
}

// Len returns the total particle count.
func (b *BoxStore) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.particles)
}

// TypeCounts returns the population broken down by type.
func (b *BoxStore) TypeCounts() map[int]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	counts := make(map[int]int, len(b.byType))
	for t, ids := range b.byType {
		if len(ids) > 0 {
			counts[t] = len(ids)
		}
	}
	return counts
}

// TotalCharge sums the charges of all particles.
func (b *BoxStore) TotalCharge() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0.0
	for _, p := range b.particles {
		total += p.Charge
	}
	return total
}

// All returns every particle ordered by ID, for snapshots and reports.
func (b *BoxStore) All() []Particle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Particle, 0, len(b.particles))
	for _, p := range b.particles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// dropFromType removes id from the per-type slice. Swap-remove keeps the
// operation O(1); uniform sampling does not depend on slice order.
func (b *BoxStore) dropFromType(typeID int, id ParticleID) {
	ids := b.byType[typeID]
	for i, candidate := range ids {
		if candidate == id {
			ids[i] = ids[len(ids)-1]
			b.byType[typeID] = ids[:len(ids)-1]
			return
		}
	}
}

// SampleOfType draws k distinct particle IDs of the given type uniformly
// without replacement. Fails when fewer than k particles carry the type.
func SampleOfType(store ParticleStore, typeID, k int, rng RandomSource) ([]ParticleID, error) {
	ids := store.IDsOfType(typeID)
	if len(ids) < k {
		return nil, fmt.Errorf("need %d particles of type %d, have %d", k, typeID, len(ids))
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids[:k], nil
}
