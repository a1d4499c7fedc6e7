package runstore

import (
	"context"
	"fmt"
	"os"

	"github.com/daniacca/remcsim/internal/runstore/postgres"
	"github.com/daniacca/remcsim/internal/runstore/sqlite"
)

// Open selects a runstore.Store implementation using environment variables.
//
//	REMCSIM_RUNSTORE_DRIVER: memory|sqlite|postgres (default memory)
//	REMCSIM_RUNSTORE_PATH: database path when driver=sqlite (default remcsim-moves.db)
//	REMCSIM_RUNSTORE_DSN: connection string when driver=postgres
func Open(_ context.Context) (Store, error) {
	return OpenDriver(Driver(os.Getenv("REMCSIM_RUNSTORE_DRIVER")),
		os.Getenv("REMCSIM_RUNSTORE_PATH"),
		os.Getenv("REMCSIM_RUNSTORE_DSN"))
}

// OpenDriver opens the named move-history backend. An empty driver selects
// memory. path applies to the sqlite driver, dsn to postgres.
func OpenDriver(driver Driver, path, dsn string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverSQLite:
		return sqlite.NewStore(path)
	case DriverPostgres:
		return postgres.NewStore(dsn)
	default:
		return nil, fmt.Errorf("unknown runstore driver %s", driver)
	}
}
