package archive

import (
	"context"
	"fmt"
	"os"

	s3store "github.com/daniacca/remcsim/internal/archive/s3"
)

// Open selects an archive.Store implementation using environment variables.
//
//	REMCSIM_ARCHIVE_DRIVER: fs|s3|memory (default fs)
//	REMCSIM_ARCHIVE_FS_ROOT: directory root when driver=fs (default ./snapshots)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("REMCSIM_ARCHIVE_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("REMCSIM_ARCHIVE_FS_ROOT"))
	case DriverS3:
		return s3store.OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %s", driver)
	}
}
