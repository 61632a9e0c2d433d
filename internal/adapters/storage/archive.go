// internal/adapters/storage/archive.go
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// Archive backends
const (
	BackendS3    = "s3"
	BackendLocal = "local"
	BackendNone  = "none"
)

// Options selects and configures the archive backend
type Options struct {
	Backend string
	Dir     string
	S3      *S3Config
}

// New opens the configured archive backend. It returns a nil storage for
// BackendNone.
func New(ctx context.Context, opts Options, logger *slog.Logger) (ports.ArchiveStorage, error) {
	switch opts.Backend {
	case BackendS3:
		if opts.S3 == nil {
			return nil, fmt.Errorf("s3 backend requires s3 configuration")
		}
		return NewS3Storage(ctx, opts.S3, logger)
	case BackendLocal:
		return NewLocalStorage(opts.Dir, logger), nil
	case BackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", opts.Backend)
	}
}
