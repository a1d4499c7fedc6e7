// Package archive re-exports the snapshot-archive abstractions for stable
// imports and holds the driver factory.
package archive

import (
	"github.com/daniacca/remcsim/internal/archive/core"
	fsstore "github.com/daniacca/remcsim/internal/archive/fs"
	memorystore "github.com/daniacca/remcsim/internal/archive/memory"
)

type (
	// Driver identifies a snapshot-archive backend driver.
	Driver = core.Driver
	// Info describes an archived snapshot.
	Info = core.Info
	// Store is the interface for snapshot-archive backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local directory driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3 / MinIO compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-process driver.
	DriverMemory = core.DriverMemory
)

// ErrEmptyID indicates a snapshot without an ID was offered for archiving.
var ErrEmptyID = core.ErrEmptyID

// NewMemory returns an in-memory snapshot archive.
func NewMemory() Store { return memorystore.New() }

// NewFilesystem returns a snapshot archive rooted at the given directory,
// creating it if needed.
func NewFilesystem(root string) (Store, error) { return fsstore.New(root) }
