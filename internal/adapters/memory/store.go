// internal/adapters/memory/store.go
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

type state struct {
	products  map[uuid.UUID]domain.Product
	suppliers map[uuid.UUID]domain.Supplier
	sales     []domain.Sale
	closings  map[string]domain.Closing
}

func newState() *state {
	return &state{
		products:  make(map[uuid.UUID]domain.Product),
		suppliers: make(map[uuid.UUID]domain.Supplier),
		closings:  make(map[string]domain.Closing),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:  make(map[uuid.UUID]domain.Product, len(s.products)),
		suppliers: make(map[uuid.UUID]domain.Supplier, len(s.suppliers)),
		sales:     append([]domain.Sale(nil), s.sales...),
		closings:  make(map[string]domain.Closing, len(s.closings)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.closings {
		c.closings[k] = v
	}
	return c
}

// Store is an in-process ports.Store. A transaction works on a private copy
// of the data that replaces the live copy only when it commits.
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *state
	loc   *time.Location
	live  *scope
}

// Statically assert that *Store implements the Store interface.
var _ ports.Store = (*Store)(nil)

// NewStore creates an empty store evaluating calendar days in loc
func NewStore(loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	s := &Store{state: newState(), loc: loc}
	s.live = &scope{store: s}
	return s
}

func (s *Store) Products() ports.ProductCatalog      { return &productCatalog{s.live} }
func (s *Store) Suppliers() ports.SupplierRepository { return &supplierRepository{s.live} }
func (s *Store) Sales() ports.SaleLedger             { return &saleLedger{s.live} }
func (s *Store) Closings() ports.ClosingRepository   { return &closingRepository{s.live} }

// WithinTx runs fn against a snapshot and publishes it if fn succeeds. A
// panic discards the snapshot. Transactions are serialised with each other
// and with live writes.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &txScope{scope: &scope{store: s, tx: snapshot}}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = snapshot
	s.mu.Unlock()
	return nil
}

type txScope struct {
	scope *scope
}

func (t *txScope) Products() ports.ProductCatalog      { return &productCatalog{t.scope} }
func (t *txScope) Suppliers() ports.SupplierRepository { return &supplierRepository{t.scope} }
func (t *txScope) Sales() ports.SaleLedger             { return &saleLedger{t.scope} }
func (t *txScope) Closings() ports.ClosingRepository   { return &closingRepository{t.scope} }

// scope routes reads and writes either to the live data or to a
// transaction's snapshot
type scope struct {
	store *Store
	tx    *state
}

func (sc *scope) read(fn func(*state) error) error {
	if sc.tx != nil {
		return fn(sc.tx)
	}
	sc.store.mu.RLock()
	defer sc.store.mu.RUnlock()
	return fn(sc.store.state)
}

func (sc *scope) write(fn func(*state) error) error {
	if sc.tx != nil {
		return fn(sc.tx)
	}
	sc.store.txMu.Lock()
	defer sc.store.txMu.Unlock()
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	return fn(sc.store.state)
}

func (sc *scope) loc() *time.Location {
	return sc.store.loc
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}
