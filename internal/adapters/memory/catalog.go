// internal/adapters/memory/catalog.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

type productCatalog struct {
	sc *scope
}

func withSupplier(st *state, p domain.Product) domain.Product {
	p.SupplierName = ""
	if p.SupplierID != nil {
		if sup, ok := st.suppliers[*p.SupplierID]; ok {
			p.SupplierName = sup.Name
		}
	}
	return p
}

func (r *productCatalog) Lookup(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var out domain.Product
	err := r.sc.read(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		out = withSupplier(st, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productCatalog) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*domain.Product, error) {
	var out domain.Product
	err := r.sc.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		next := p.Stock.Add(delta)
		if next.IsNegative() {
			return &domain.StockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: delta.Neg(),
				Available: p.Stock,
			}
		}
		p.Stock = next
		p.UpdatedAt = time.Now()
		st.products[id] = p
		out = withSupplier(st, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productCatalog) SetStock(ctx context.Context, id uuid.UUID, stock decimal.Decimal) (*domain.Product, error) {
	if stock.IsNegative() {
		return nil, fmt.Errorf("%w: stock cannot be negative", domain.ErrInvalidQuantity)
	}
	var out domain.Product
	err := r.sc.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		p.Stock = stock
		p.UpdatedAt = time.Now()
		st.products[id] = p
		out = withSupplier(st, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productCatalog) Create(ctx context.Context, product *domain.Product) error {
	return r.sc.write(func(st *state) error {
		if _, exists := st.products[product.ID]; exists {
			return fmt.Errorf("product %s already exists", product.ID)
		}
		stored := *product
		stored.SupplierName = ""
		st.products[product.ID] = stored
		return nil
	})
}

func (r *productCatalog) Update(ctx context.Context, product *domain.Product) error {
	return r.sc.write(func(st *state) error {
		current, ok := st.products[product.ID]
		if !ok {
			return fmt.Errorf("product %s: %w", product.ID, domain.ErrNotFound)
		}
		stored := *product
		stored.SupplierName = ""
		stored.CreatedAt = current.CreatedAt
		st.products[product.ID] = stored
		return nil
	})
}

func (r *productCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	return r.sc.write(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		delete(st.products, id)
		return nil
	})
}

func (r *productCatalog) List(ctx context.Context, filter ports.ProductFilter) (*ports.ProductPage, error) {
	filter.Normalize()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var matched []domain.Product
	err := r.sc.read(func(st *state) error {
		for _, p := range st.products {
			p = withSupplier(st, p)
			if filter.LowStockOnly && !p.LowStock() {
				continue
			}
			if filter.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *filter.SupplierID) {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Brand), search) &&
				!strings.Contains(strings.ToLower(p.SupplierName), search) {
				continue
			}
			matched = append(matched, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return ports.NewProductPage(matched[start:end], filter, total), nil
}

func (r *productCatalog) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.sc.read(func(st *state) error {
		n = int64(len(st.products))
		return nil
	})
	return n, err
}

type supplierRepository struct {
	sc *scope
}

func (r *supplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	return r.sc.write(func(st *state) error {
		if _, exists := st.suppliers[supplier.ID]; exists {
			return fmt.Errorf("supplier %s already exists", supplier.ID)
		}
		stored := *supplier
		stored.ProductCount = 0
		st.suppliers[supplier.ID] = stored
		return nil
	})
}

func (r *supplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	var out domain.Supplier
	err := r.sc.read(func(st *state) error {
		s, ok := st.suppliers[id]
		if !ok {
			return fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
		}
		out = s
		out.ProductCount = countProducts(st, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *supplierRepository) Update(ctx context.Context, supplier *domain.Supplier) error {
	return r.sc.write(func(st *state) error {
		current, ok := st.suppliers[supplier.ID]
		if !ok {
			return fmt.Errorf("supplier %s: %w", supplier.ID, domain.ErrNotFound)
		}
		current.Name = supplier.Name
		current.Contact = supplier.Contact
		st.suppliers[supplier.ID] = current
		return nil
	})
}

// Delete mirrors ON DELETE SET NULL on products.supplier_id
func (r *supplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.sc.write(func(st *state) error {
		if _, ok := st.suppliers[id]; !ok {
			return fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
		}
		delete(st.suppliers, id)
		for pid, p := range st.products {
			if p.SupplierID != nil && *p.SupplierID == id {
				p.SupplierID = nil
				st.products[pid] = p
			}
		}
		return nil
	})
}

func (r *supplierRepository) List(ctx context.Context) ([]domain.Supplier, error) {
	out := []domain.Supplier{}
	err := r.sc.read(func(st *state) error {
		for id, s := range st.suppliers {
			s.ProductCount = countProducts(st, id)
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *supplierRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.sc.read(func(st *state) error {
		n = int64(len(st.suppliers))
		return nil
	})
	return n, err
}

func countProducts(st *state, supplierID uuid.UUID) int {
	n := 0
	for _, p := range st.products {
		if p.SupplierID != nil && *p.SupplierID == supplierID {
			n++
		}
	}
	return n
}
