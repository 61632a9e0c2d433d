// internal/core/ports/storage.go
package ports

import (
	"context"
	"io"
	"time"
)

// ArchiveStorage keeps closing workbooks outside the database
type ArchiveStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string, metadata map[string]string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	GetPresignedURL(ctx context.Context, key string, duration time.Duration) (string, error)
}
