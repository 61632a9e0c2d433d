// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/adapters/memory"
	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

var groceryNames = []string{
	"Coca Cola 600ml",
	"Pan Blanco Grande",
	"Leche Entera 1L",
	"Frijoles Negros 1kg",
	"Tortillas de Maiz",
	"Huevo Blanco 12pz",
	"Arroz 1kg",
	"Atun en Agua",
}

// seedCatalog fills a store with n products carrying plenty of stock
func seedCatalog(store *memory.Store, n int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		p := &domain.Product{
			Name:  fmt.Sprintf("%s #%d", groceryNames[i%len(groceryNames)], i),
			Price: decimal.NewFromInt(int64(10 + i%40)).Div(decimal.NewFromInt(2)).Round(2),
			Unit:  domain.UnitPiece,
			Stock: decimal.NewFromInt(1_000_000),
		}
		p.PrepareForStorage()
		if err := store.Products().Create(context.Background(), p); err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// seedLedger appends n sales spread over the given number of days before now
func seedLedger(store *memory.Store, n, days int) error {
	now := time.Now()
	for i := 0; i < n; i++ {
		at := now.Add(-time.Duration(i%days) * 24 * time.Hour).Add(-time.Duration(i%600) * time.Minute)
		sale := &domain.Sale{
			ID:          uuid.New(),
			Description: fmt.Sprintf("%s: 1 pcs - $5.00", groceryNames[i%len(groceryNames)]),
			Quantity:    decimal.NewFromInt(1),
			Total:       decimal.NewFromInt(5),
			CreatedAt:   at.Truncate(time.Second),
		}
		if err := store.Sales().Append(context.Background(), sale); err != nil {
			return err
		}
	}
	return nil
}
