// Package runstore re-exports the move-history abstractions for stable
// imports and holds the driver factory.
package runstore

import (
	"time"

	"github.com/daniacca/remcsim/internal/remc"
	"github.com/daniacca/remcsim/internal/runstore/core"
	memorystore "github.com/daniacca/remcsim/internal/runstore/memory"
)

type (
	// Driver identifies a move-history backend driver.
	Driver = core.Driver
	// MoveRecord is one recorded trial move.
	MoveRecord = core.MoveRecord
	// Summary aggregates the recorded history by outcome.
	Summary = core.Summary
	// Store is the interface for move-history backends.
	Store = core.Store
)

const (
	// DriverMemory is the in-process driver.
	DriverMemory = core.DriverMemory
	// DriverSQLite is the local SQLite file driver.
	DriverSQLite = core.DriverSQLite
	// DriverPostgres is the Postgres driver.
	DriverPostgres = core.DriverPostgres
)

// NewMemory returns an in-memory move history.
func NewMemory() Store { return memorystore.New() }

// RecordsFromResults converts one DoReaction batch into history records.
// Steps are numbered from firstStep in batch order; all records share a
// single wall-clock stamp.
func RecordsFromResults(runID string, firstStep int64, results []remc.MoveResult) []MoveRecord {
	now := time.Now().UTC()
	records := make([]MoveRecord, 0, len(results))
	for i, res := range results {
		records = append(records, MoveRecord{
			RunID:         runID,
			Step:          firstStep + int64(i),
			ReactionIndex: res.ReactionIndex,
			Water:         res.Water,
			Forward:       res.Forward,
			Outcome:       res.Outcome,
			DeltaEnergy:   res.DeltaEnergy,
			Acceptance:    res.Acceptance,
			RecordedAt:    now,
		})
	}
	return records
}
