// internal/adapters/db/store.go
package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// Store implements ports.Store on top of the connection pool
type Store struct {
	db     *Database
	loc    *time.Location
	logger *slog.Logger
}

// Statically assert that *Store implements the Store interface.
var _ ports.Store = (*Store)(nil)

// NewStore creates a store evaluating calendar days in loc, which must be
// an IANA zone name known to the database.
func NewStore(db *Database, loc *time.Location, logger *slog.Logger) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{db: db, loc: loc, logger: logger}
}

func (s *Store) Products() ports.ProductCatalog {
	return newProductCatalog(s.db.pool, false, s.logger)
}

func (s *Store) Suppliers() ports.SupplierRepository {
	return newSupplierRepository(s.db.pool, s.logger)
}

func (s *Store) Sales() ports.SaleLedger {
	return newSaleLedger(s.db.pool, s.loc, s.logger)
}

func (s *Store) Closings() ports.ClosingRepository {
	return newClosingRepository(s.db.pool, s.loc, s.logger)
}

// WithinTx runs fn inside Database.Transaction. Product lookups made through
// the transaction lock their rows until it ends.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	return s.db.Transaction(ctx, func(tx pgx.Tx) error {
		return fn(ctx, &txScope{tx: tx, store: s})
	})
}

type txScope struct {
	tx    pgx.Tx
	store *Store
}

func (t *txScope) Products() ports.ProductCatalog {
	return newProductCatalog(t.tx, true, t.store.logger)
}

func (t *txScope) Suppliers() ports.SupplierRepository {
	return newSupplierRepository(t.tx, t.store.logger)
}

func (t *txScope) Sales() ports.SaleLedger {
	return newSaleLedger(t.tx, t.store.loc, t.store.logger)
}

func (t *txScope) Closings() ports.ClosingRepository {
	return newClosingRepository(t.tx, t.store.loc, t.store.logger)
}
