package main

import (
	"context"
	"net/http"

	"github.com/daniacca/remcsim/internal/archive"
	"github.com/daniacca/remcsim/internal/runstore"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)
	ctx := context.Background()

	moves, err := runstore.Open(ctx)
	if err != nil {
		logger.Fatalf("cannot open run store: %v", err)
	}
	snapshots, err := archive.Open(ctx)
	if err != nil {
		logger.Fatalf("cannot open snapshot archive: %v", err)
	}

	srv := NewServer(logger, moves, snapshots)
	srv.SetSnapshotEvery(cfg.SnapshotEvery)

	if cfg.ConfigFile != "" {
		sysCfg, err := loadInitialSystemFromFile(cfg.ConfigFile)
		if err != nil {
			logger.Fatalf("cannot load initial system from %s: %v", cfg.ConfigFile, err)
		}
		if sysCfg.Seed == nil && cfg.Seed != 0 {
			sysCfg.Seed = &cfg.Seed
		}
		runID, err := srv.installSystem(sysCfg)
		if err != nil {
			logger.Fatalf("cannot install initial system: %v", err)
		}
		logger.Infof("Initial system installed: name=%s run_id=%s", sysCfg.Name, runID)
	}

	logger.Infof("remcsim-server listening on %s (runstore=%s archive=%s)",
		cfg.Addr, moves.Driver(), snapshots.Driver())
	logger.Fatalf("server stopped: %v", http.ListenAndServe(cfg.Addr, srv.routes()))
}
