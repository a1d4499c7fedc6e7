// Package postgres persists the move history to Postgres while answering
// queries from the embedded in-memory store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/daniacca/remcsim/internal/remc"
	"github.com/daniacca/remcsim/internal/runstore/core"
	"github.com/daniacca/remcsim/internal/runstore/memory"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ core.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/remcsim?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store hydrates the in-memory history from the database on open and
// appends every recorded move to it.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed move history using the provided DSN
// (falls back to defaultDSN). It ensures the moves table exists and
// hydrates the in-memory store from any existing history.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureMovesTable(ctx, db); err != nil {
		return nil, err
	}
	records, err := loadMoves(ctx, db)
	if err != nil {
		return nil, err
	}
	mem := memory.New()
	mem.Import(records)
	return &Store{Store: mem, db: db}, nil
}

// Driver returns the move-history driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverPostgres }

func ensureMovesTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS moves (
		id BIGINT PRIMARY KEY,
		run_id TEXT NOT NULL,
		step BIGINT NOT NULL,
		reaction_idx INT NOT NULL,
		is_water BOOLEAN NOT NULL,
		forward BOOLEAN NOT NULL,
		outcome TEXT NOT NULL,
		delta_energy DOUBLE PRECISION NOT NULL,
		acceptance DOUBLE PRECISION NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure moves table: %w", err)
	}
	return nil
}

func loadMoves(ctx context.Context, db *sql.DB) ([]core.MoveRecord, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, run_id, step, reaction_idx, is_water, forward, outcome, delta_energy, acceptance, recorded_at FROM moves ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select moves: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var records []core.MoveRecord
	for rows.Next() {
		var rec core.MoveRecord
		var outcome string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Step, &rec.ReactionIndex, &rec.Water, &rec.Forward, &outcome, &rec.DeltaEnergy, &rec.Acceptance, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		rec.Outcome = remc.MoveOutcome(outcome)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	return records, nil
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

func (s *Store) persist(ctx context.Context, records []core.MoveRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, `INSERT INTO moves(id, run_id, step, reaction_idx, is_water, forward, outcome, delta_energy, acceptance, recorded_at) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			rec.ID, rec.RunID, rec.Step, int64(rec.ReactionIndex), rec.Water, rec.Forward, string(rec.Outcome), rec.DeltaEnergy, rec.Acceptance, rec.RecordedAt.UTC()); err != nil {
			return fmt.Errorf("insert move %d: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
