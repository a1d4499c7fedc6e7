package remc

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot represents a point-in-time capture of a simulation's state.
// It includes the population, the sampling parameters and the outcome
// counters at capture time.
type Snapshot struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	TakenAt     time.Time   `json:"taken_at"`
	Volume      float64     `json:"volume"`
	Temperature float64     `json:"temperature"`
	Particles   []Particle  `json:"particles"`
	TypeCounts  map[int]int `json:"type_counts,omitempty"`
	Stats       EngineStats `json:"stats"`
}

// TakeSnapshot captures the engine's current population and counters.
func TakeSnapshot(e *Engine) Snapshot {
	report := e.StatusReport()
	return Snapshot{
		ID:          NewRandomID(),
		Name:        report.Name,
		TakenAt:     time.Now().UTC(),
		Volume:      report.Volume,
		Temperature: report.Temperature,
		Particles:   e.store.All(),
		TypeCounts:  report.TypeCounts,
		Stats:       *report.Stats,
	}
}

// ValidateSnapshot performs validation checks on a snapshot.
// It verifies that:
//   - All particle IDs are unique
//   - All particle types are registered in the provided system (if system is not nil)
//
// If system is nil, only ID validation is performed.
// Returns an error if validation fails, nil otherwise.
func ValidateSnapshot(snapshot Snapshot, system *ReactionSystem) error {
	seenIDs := make(map[ParticleID]struct{})

	for i, p := range snapshot.Particles {
		if _, exists := seenIDs[p.ID]; exists {
			return fmt.Errorf("duplicate particle ID: %d", p.ID)
		}
		seenIDs[p.ID] = struct{}{}

		if system != nil {
			if _, err := system.LookupTypeIndex(p.Type); err != nil {
				return fmt.Errorf("particle at index %d has unregistered type %d", i, p.Type)
			}
		}
	}

	return nil
}

// PopulateFromSnapshot restores a snapshot's particles into an empty store,
// keeping their original IDs, types, charges and positions.
func PopulateFromSnapshot(store ParticleStore, snapshot Snapshot) error {
	if store.Len() != 0 {
		return fmt.Errorf("store already holds %d particles", store.Len())
	}
	for _, p := range snapshot.Particles {
		store.Restore(p)
	}
	return nil
}

// EncodeSnapshotJSON encodes a snapshot to JSON format.
// Returns the JSON bytes and any encoding error.
func EncodeSnapshotJSON(snapshot Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON format.
// Returns the decoded snapshot and any decoding error.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}
