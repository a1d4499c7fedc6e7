package main

import (
	"net/http"
	"sync"

	"github.com/daniacca/remcsim/internal/archive"
	"github.com/daniacca/remcsim/internal/remc"
	"github.com/daniacca/remcsim/internal/remc/notifiers"
	"github.com/daniacca/remcsim/internal/runstore"
)

// Server is the HTTP surface over one simulation slot. It is the single
// coordinating writer: installs, seeding and stepping serialize through
// stepMu, so move records get contiguous step numbers and periodic snapshots
// never interleave with a running batch.
type Server struct {
	sim        *remc.Simulation
	moves      runstore.Store
	snapshots  archive.Store
	wsNotifier *notifiers.WebSocketNotifier
	logger     *Logger

	stepMu        sync.Mutex
	stepCount     int64
	sinceSnapshot int
	snapshotEvery int
}

// NewServer creates a new server instance wired to the given move history
// and snapshot archive. A websocket notifier is registered up front so /ws
// clients receive every step event.
func NewServer(logger *Logger, moves runstore.Store, snapshots archive.Store) *Server {
	sim := remc.NewSimulation(logger)
	ws := notifiers.NewWebSocketNotifier("ws-stream")
	if err := sim.RegisterNotifier(ws); err != nil {
		logger.Warnf("Failed to register websocket notifier: %v", err)
	}
	return &Server{
		sim:        sim,
		moves:      moves,
		snapshots:  snapshots,
		wsNotifier: ws,
		logger:     logger,
	}
}

// SetSnapshotEvery sets the periodic snapshot frequency in trial moves.
// Zero disables periodic snapshots.
func (s *Server) SetSnapshotEvery(moves int) {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	s.snapshotEvery = moves
}

// installSystem makes the given config the live system, replacing a previous
// one. The step counter restarts for the new run.
func (s *Server) installSystem(cfg remc.SystemConfig) (string, error) {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	if s.sim.RunID() != "" {
		s.sim.Teardown()
	}
	runID, err := s.sim.Initialize(cfg, nil)
	if err != nil {
		return "", err
	}
	s.stepCount = 0
	s.sinceSnapshot = 0
	return runID, nil
}

// routes builds the request multiplexer.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/system", s.handleSystemRoutes)
	mux.HandleFunc("/system/report", s.handleSystemReport)
	mux.HandleFunc("/particles", s.handleSeedParticles)
	mux.HandleFunc("/particles/counts", s.handleParticleCounts)
	mux.HandleFunc("/step", s.handleStep)
	mux.HandleFunc("/snapshot", s.handleSaveSnapshot)
	mux.HandleFunc("/snapshots", s.handleListSnapshots)
	mux.HandleFunc("/snapshots/", s.handleSnapshotByID)
	mux.HandleFunc("/moves", s.handleMoves)
	mux.HandleFunc("/moves/summary", s.handleMoveSummary)
	mux.HandleFunc("/notifiers", s.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", s.handleNotifiersRoutes)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", s.sim.Metrics().Handler())
	return mux
}

// Close tears the live system down and releases the stores.
func (s *Server) Close() error {
	err := s.sim.Close()
	if cerr := s.moves.Close(); err == nil {
		err = cerr
	}
	return err
}
