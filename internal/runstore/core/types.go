// Package core defines the move-history abstractions shared by the
// runstore backends.
package core

import (
	"context"
	"time"

	"github.com/daniacca/remcsim/internal/remc"
)

// Driver identifies a concrete move-history backend implementation.
type Driver string

const (
	// DriverMemory keeps the history in process memory, typically for tests
	// and short interactive runs.
	DriverMemory Driver = "memory"
	// DriverSQLite persists the history to a local SQLite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres persists the history to a Postgres database.
	DriverPostgres Driver = "postgres"
)

// MoveRecord is one trial move as recorded in the run history. ID is
// assigned by the store on append and is strictly increasing.
type MoveRecord struct {
	ID            int64        `json:"id"`
	RunID         string       `json:"run_id"`
	Step          int64        `json:"step"`
	ReactionIndex int          `json:"reaction_index"`
	Water         bool         `json:"water,omitempty"`
	Forward       bool         `json:"forward"`
	Outcome       remc.MoveOutcome `json:"outcome"`
	DeltaEnergy   float64      `json:"delta_energy"`
	Acceptance    float64      `json:"acceptance"`
	RecordedAt    time.Time    `json:"recorded_at"`
}

// Summary aggregates the recorded history by outcome. MeanAcceptance is
// averaged over the moves that reached the acceptance draw; AcceptanceRate
// excludes moves where no reaction was declared, matching the engine's
// own accounting.
type Summary struct {
	Moves          int64   `json:"moves"`
	Accepted       int64   `json:"accepted"`
	Rejected       int64   `json:"rejected"`
	Insufficient   int64   `json:"insufficient_educts"`
	NoReactions    int64   `json:"no_reactions"`
	EnergyFailures int64   `json:"energy_failures"`
	MeanAcceptance float64 `json:"mean_acceptance"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// Store records trial moves and answers history queries.
type Store interface {
	// AppendMoves records the given moves in order, assigning their IDs.
	AppendMoves(ctx context.Context, records ...MoveRecord) error
	// Moves returns the most recent limit records in chronological order.
	// A limit of zero or less returns the full history.
	Moves(ctx context.Context, limit int) ([]MoveRecord, error)
	// Summary tallies the recorded history.
	Summary(ctx context.Context) (Summary, error)
	Driver() Driver
	Close() error
}
