package remc

import "fmt"

// TypeRegistry maps external particle-type identifiers to dense internal
// indices. Indices are assigned in first-seen order starting at 0 and never
// change once assigned: per-type data (default charges, counters) is keyed by
// these indices, so the mapping is strictly append-only for the lifetime of a
// reaction system.
type TypeRegistry struct {
	indexOf map[int]int
	types   []int
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{indexOf: make(map[int]int)}
}

// ResolveOrInsert returns the internal index for typeID, inserting a new
// entry with the next unused index if the type has not been seen before.
// Calling it twice with the same identifier returns the same index both
// times and never reorders existing entries.
func (r *TypeRegistry) ResolveOrInsert(typeID int) int {
	if idx, ok := r.indexOf[typeID]; ok {
		return idx
	}
	idx := len(r.types)
	r.indexOf[typeID] = idx
	r.types = append(r.types, typeID)
	return idx
}

// Lookup returns the internal index for typeID or ErrUnknownType if the type
// was never registered.
func (r *TypeRegistry) Lookup(typeID int) (int, error) {
	idx, ok := r.indexOf[typeID]
	if !ok {
		return 0, fmt.Errorf("type %d: %w", typeID, ErrUnknownType)
	}
	return idx, nil
}

// Len returns the number of registered types.
func (r *TypeRegistry) Len() int {
	return len(r.types)
}

// Types returns the registered external identifiers in first-seen order.
// The returned slice is a copy.
func (r *TypeRegistry) Types() []int {
	out := make([]int, len(r.types))
	copy(out, r.types)
	return out
}

// Reset drops every entry. Only the owning reaction system's teardown calls
// this; reactions referencing registered types must already be gone.
func (r *TypeRegistry) Reset() {
	r.indexOf = make(map[int]int)
	r.types = nil
}
