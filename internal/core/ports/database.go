// internal/core/ports/database.go
package ports

import "context"

// Database defines what the health endpoints need from the primary database.
// It is implemented by *db.Database.
type Database interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
}
