package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/daniacca/remcsim/internal/remc"
	"github.com/daniacca/remcsim/internal/runstore/core"
)

func stubMoveRow(id int64, outcome string) map[string]any {
	return map[string]any{
		"id":           id,
		"run_id":       "run-1",
		"step":         id - 1,
		"reaction_idx": int64(0),
		"is_water":     false,
		"forward":      true,
		"outcome":      outcome,
		"delta_energy": 0.5,
		"acceptance":   0.9,
		"recorded_at":  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewStoreEnsuresTableAndHydrates(t *testing.T) {
	db, conn := newStubDB()
	conn.rows = []map[string]any{
		stubMoveRow(1, "accepted"),
		stubMoveRow(2, "rejected"),
	}
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected moves DDL to be applied, got execs: %v", conn.execs)
	}
	records, err := store.Moves(context.Background(), 0)
	if err != nil {
		t.Fatalf("moves: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 hydrated records, got %d", len(records))
	}
	if records[0].ID != 1 || records[0].Outcome != remc.OutcomeAccepted {
		t.Fatalf("expected hydrated record preserved, got %+v", records[0])
	}
	if records[1].Outcome != remc.OutcomeRejected || !records[1].Forward {
		t.Fatalf("expected hydrated record preserved, got %+v", records[1])
	}
}

func TestAppendMovesPersists(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.AppendMoves(context.Background(),
		core.MoveRecord{RunID: "run-2", Step: 0, Forward: true, Outcome: remc.OutcomeAccepted, Acceptance: 1},
		core.MoveRecord{RunID: "run-2", Step: 1, Forward: false, Outcome: remc.OutcomeRejected, Acceptance: 0.2},
	); err != nil {
		t.Fatalf("AppendMoves: %v", err)
	}
	if len(conn.rows) != 2 {
		t.Fatalf("expected 2 persisted rows, got %d", len(conn.rows))
	}
	if conn.rows[0]["run_id"] != "run-2" || conn.rows[0]["outcome"] != "accepted" {
		t.Fatalf("unexpected first row: %v", conn.rows[0])
	}
	if conn.rows[1]["outcome"] != "rejected" || conn.rows[1]["forward"] != false {
		t.Fatalf("unexpected second row: %v", conn.rows[1])
	}
	sum, err := store.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Accepted != 1 || sum.Rejected != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestAppendContinuesIDsAfterHydration(t *testing.T) {
	db, conn := newStubDB()
	conn.rows = []map[string]any{stubMoveRow(5, "accepted")}
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.AppendMoves(context.Background(), core.MoveRecord{RunID: "run-1", Outcome: remc.OutcomeAccepted}); err != nil {
		t.Fatalf("AppendMoves: %v", err)
	}
	last := conn.rows[len(conn.rows)-1]
	if last["id"] != int64(6) {
		t.Fatalf("expected ID 6 after hydration, got %v", last["id"])
	}
}

func TestNewStoreOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, fmt.Errorf("open fail")
	})
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "open fail") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestNewStorePingError(t *testing.T) {
	db, conn := newStubDB()
	conn.failPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "ping postgres") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestNewStoreDDLError(t *testing.T) {
	db, conn := newStubDB()
	conn.failExec = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "ensure moves table") {
		t.Fatalf("expected ddl error, got %v", err)
	}
}

func TestNewStoreLoadQueryError(t *testing.T) {
	db, conn := newStubDB()
	conn.failQuery = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "select moves") {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestNewStoreRowsError(t *testing.T) {
	db, conn := newStubDB()
	conn.rowsErr = fmt.Errorf("row err")
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "iterate moves") {
		t.Fatalf("expected rows error, got %v", err)
	}
}

func TestAppendMovesExecFailure(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failExec = true
	err = store.AppendMoves(context.Background(), core.MoveRecord{Outcome: remc.OutcomeAccepted})
	if err == nil || !strings.Contains(err.Error(), "insert move") {
		t.Fatalf("expected insert error, got %v", err)
	}
}

func TestAppendMovesBeginError(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failBegin = true
	err = store.AppendMoves(context.Background(), core.MoveRecord{Outcome: remc.OutcomeAccepted})
	if err == nil || !strings.Contains(err.Error(), "begin tx") {
		t.Fatalf("expected begin error, got %v", err)
	}
}

func TestAppendMovesCommitError(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failCommit = true
	err = store.AppendMoves(context.Background(), core.MoveRecord{Outcome: remc.OutcomeAccepted})
	if err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func TestStoreDriverAndDB(t *testing.T) {
	db, _ := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.Driver() != core.DriverPostgres {
		t.Fatalf("expected postgres driver, got %s", store.Driver())
	}
	if store.DB() == nil {
		t.Fatalf("expected DB handle")
	}
}
