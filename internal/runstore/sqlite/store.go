// Package sqlite persists the move history to a local SQLite file while
// answering queries from the embedded in-memory store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/daniacca/remcsim/internal/remc"
	"github.com/daniacca/remcsim/internal/runstore/core"
	"github.com/daniacca/remcsim/internal/runstore/memory"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ core.Store = (*Store)(nil)

// Store hydrates the in-memory history from the database on open and
// appends every recorded move to it.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens or creates the SQLite move history at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "remcsim-moves.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS moves (
		id INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		reaction_idx INTEGER NOT NULL,
		is_water INTEGER NOT NULL,
		forward INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		delta_energy REAL NOT NULL,
		acceptance REAL NOT NULL,
		recorded_at TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create moves table: %w", err)
	}
	s := &Store{Store: memory.New(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Driver returns the move-history driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverSQLite }

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT id, run_id, step, reaction_idx, is_water, forward, outcome, delta_energy, acceptance, recorded_at FROM moves ORDER BY id`)
	if err != nil {
		return fmt.Errorf("select moves: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var records []core.MoveRecord
	for rows.Next() {
		var rec core.MoveRecord
		var outcome, recordedAt string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Step, &rec.ReactionIndex, &rec.Water, &rec.Forward, &outcome, &rec.DeltaEnergy, &rec.Acceptance, &recordedAt); err != nil {
			return fmt.Errorf("scan move: %w", err)
		}
		rec.Outcome = remc.MoveOutcome(outcome)
		ts, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return fmt.Errorf("decode recorded_at for move %d: %w", rec.ID, err)
		}
		rec.RecordedAt = ts
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate moves: %w", err)
	}
	s.Store.Import(records)
	return nil
}

// AppendMoves records the moves in memory, then persists them in a single
// transaction.
func (s *Store) AppendMoves(ctx context.Context, records ...core.MoveRecord) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Store.AppendMoves(ctx, records...); err != nil {
		return err
	}
	assigned, err := s.Store.Moves(ctx, len(records))
	if err != nil {
		return err
	}
	return s.persist(ctx, assigned)
}

func (s *Store) persist(ctx context.Context, records []core.MoveRecord) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, `INSERT INTO moves(id, run_id, step, reaction_idx, is_water, forward, outcome, delta_energy, acceptance, recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?)`,
			rec.ID, rec.RunID, rec.Step, rec.ReactionIndex, rec.Water, rec.Forward, string(rec.Outcome), rec.DeltaEnergy, rec.Acceptance, rec.RecordedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			retErr = fmt.Errorf("insert move %d: %w", rec.ID, err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
