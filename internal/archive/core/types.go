// Package core defines the snapshot-archive abstractions shared by the
// archive backends.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/daniacca/remcsim/internal/remc"
)

// Driver identifies a concrete snapshot-archive backend implementation.
type Driver string

const (
	// DriverFilesystem archives snapshots under a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 archives snapshots in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps snapshots in process memory, typically for tests.
	DriverMemory Driver = "memory"
)

// Info describes an archived snapshot without loading its particle list.
type Info struct {
	ID           string    `json:"id"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Store archives simulation snapshots as JSON documents. Put is
// create-only: archiving a snapshot whose ID already exists fails.
type Store interface {
	Put(ctx context.Context, snapshot remc.Snapshot) (Info, error)
	Get(ctx context.Context, id string) (remc.Snapshot, error)
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, id string) (bool, error)
	Driver() Driver
}

// ErrEmptyID indicates a snapshot without an ID was offered for archiving.
var ErrEmptyID = errors.New("archive: snapshot id is empty")
