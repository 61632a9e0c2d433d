// internal/core/ports/store.go
package ports

import "context"

// Tx exposes the repositories bound to one unit of work
type Tx interface {
	Products() ProductCatalog
	Suppliers() SupplierRepository
	Sales() SaleLedger
	Closings() ClosingRepository
}

// Store is the transactional store boundary. Its own repositories run
// outside any transaction; WithinTx runs fn in a single transaction that
// commits when fn returns nil and rolls back on error or panic.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
