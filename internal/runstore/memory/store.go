// Package memory implements an in-memory move-history Store. It backs the
// persistent drivers, which hydrate it on open and write through on append.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/daniacca/remcsim/internal/remc"
	"github.com/daniacca/remcsim/internal/runstore/core"
)

// Store implements core.Store backed by process memory.
type Store struct {
	mu      sync.RWMutex
	records []core.MoveRecord
	nextID  int64
}

// New returns an empty in-memory move history.
func New() *Store { return &Store{nextID: 1} }

// Driver returns the move-history driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// AppendMoves records the moves in order, assigning increasing IDs and
// stamping RecordedAt when the caller left it zero.
func (s *Store) AppendMoves(_ context.Context, records ...core.MoveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		rec.ID = s.nextID
		s.nextID++
		if rec.RecordedAt.IsZero() {
			rec.RecordedAt = time.Now().UTC()
		}
		s.records = append(s.records, rec)
	}
	return nil
}

// Import inserts previously persisted records verbatim, keeping their IDs.
// The next appended record receives an ID past the highest imported one.
func (s *Store) Import(records []core.MoveRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records = append(s.records, rec)
		if rec.ID >= s.nextID {
			s.nextID = rec.ID + 1
		}
	}
}

// Moves returns the most recent limit records in chronological order.
func (s *Store) Moves(_ context.Context, limit int) ([]core.MoveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(s.records) {
		start = len(s.records) - limit
	}
	out := make([]core.MoveRecord, len(s.records)-start)
	copy(out, s.records[start:])
	return out, nil
}

// Summary tallies the recorded history by outcome.
func (s *Store) Summary(_ context.Context) (core.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum core.Summary
	var acceptanceTotal float64
	var acceptanceCount int64
	for _, rec := range s.records {
		sum.Moves++
		switch rec.Outcome {
		case remc.OutcomeAccepted:
			sum.Accepted++
			acceptanceTotal += rec.Acceptance
			acceptanceCount++
		case remc.OutcomeRejected:
			sum.Rejected++
			acceptanceTotal += rec.Acceptance
			acceptanceCount++
		case remc.OutcomeInsufficientEducts:
			sum.Insufficient++
		case remc.OutcomeNoReactions:
			sum.NoReactions++
		case remc.OutcomeEnergyFailure:
			sum.EnergyFailures++
		}
	}
	if acceptanceCount > 0 {
		sum.MeanAcceptance = acceptanceTotal / float64(acceptanceCount)
	}
	if attempted := sum.Moves - sum.NoReactions; attempted > 0 {
		sum.AcceptanceRate = float64(sum.Accepted) / float64(attempted)
	}
	return sum, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
