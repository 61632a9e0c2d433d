// internal/core/services/catalog.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// CatalogService handles product and supplier administration
type CatalogService struct {
	store  ports.Store
	cache  ports.CacheRepository
	logger *slog.Logger
}

// Statically assert that *CatalogService implements the CatalogService interface.
var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new catalog service. cache may be nil.
func NewCatalogService(store ports.Store, cache ports.CacheRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("service", "catalog")),
	}
}

// ListProducts returns a page of products matching the filter
func (s *CatalogService) ListProducts(ctx context.Context, filter ports.ProductFilter) (*ports.ProductPage, error) {
	filter.Normalize()
	page, err := s.store.Products().List(ctx, filter)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list products: %w", err))
	}
	return page, nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.store.Products().Lookup(ctx, id)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get product: %w", err))
	}
	return product, nil
}

// CreateProduct validates and stores a new product
func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if product.SupplierID != nil {
		supplier, err := s.store.Suppliers().FindByID(ctx, *product.SupplierID)
		if err != nil {
			return classify(fmt.Errorf("failed to resolve supplier %s: %w", product.SupplierID, err))
		}
		product.SupplierName = supplier.Name
	}

	product.PrepareForStorage()
	if err := s.store.Products().Create(ctx, product); err != nil {
		return classify(fmt.Errorf("failed to save product: %w", err))
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID.String()),
		slog.String("name", product.Name))
	invalidateReports(ctx, s.cache, s.logger)
	return nil
}

// UpdateProduct overwrites an existing product's editable fields. The
// creation time is kept and the supplier, when set, must exist.
func (s *CatalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		current, err := tx.Products().Lookup(ctx, product.ID)
		if err != nil {
			return err
		}

		product.SupplierName = ""
		if product.SupplierID != nil {
			supplier, err := tx.Suppliers().FindByID(ctx, *product.SupplierID)
			if err != nil {
				return fmt.Errorf("failed to resolve supplier %s: %w", product.SupplierID, err)
			}
			product.SupplierName = supplier.Name
		}

		product.CreatedAt = current.CreatedAt
		product.UpdatedAt = time.Now()
		return tx.Products().Update(ctx, product)
	})
	if err != nil {
		return classify(fmt.Errorf("failed to update product: %w", err))
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID.String()),
		slog.String("name", product.Name))
	invalidateReports(ctx, s.cache, s.logger)
	return nil
}

// DeleteProduct removes a product from the catalog. Sales already
// recorded keep their descriptions.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		return classify(fmt.Errorf("failed to delete product: %w", err))
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id.String()))
	invalidateReports(ctx, s.cache, s.logger)
	return nil
}

// SetStock overwrites a product's stock with a counted quantity
func (s *CatalogService) SetStock(ctx context.Context, id uuid.UUID, stock decimal.Decimal) (*domain.Product, error) {
	if stock.IsNegative() {
		return nil, fmt.Errorf("%w: stock cannot be negative", domain.ErrInvalidQuantity)
	}

	var updated *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		product, err := tx.Products().Lookup(ctx, id)
		if err != nil {
			return err
		}
		if product.Unit == domain.UnitPiece && !stock.IsInteger() {
			return fmt.Errorf("%w: stock must be a whole number for piece products", domain.ErrInvalidQuantity)
		}
		updated, err = tx.Products().SetStock(ctx, id, stock)
		return err
	})
	if err != nil {
		return nil, classify(fmt.Errorf("failed to set stock: %w", err))
	}

	s.logger.InfoContext(ctx, "stock set",
		slog.String("product_id", id.String()),
		slog.String("stock", stock.String()))
	return updated, nil
}

// CreateSupplier validates and stores a new supplier
func (s *CatalogService) CreateSupplier(ctx context.Context, supplier *domain.Supplier) error {
	if err := supplier.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	supplier.PrepareForStorage()
	if err := s.store.Suppliers().Create(ctx, supplier); err != nil {
		return classify(fmt.Errorf("failed to save supplier: %w", err))
	}

	s.logger.InfoContext(ctx, "supplier created",
		slog.String("supplier_id", supplier.ID.String()),
		slog.String("name", supplier.Name))
	invalidateReports(ctx, s.cache, s.logger)
	return nil
}

// UpdateSupplier renames a supplier or changes its contact
func (s *CatalogService) UpdateSupplier(ctx context.Context, supplier *domain.Supplier) error {
	if err := supplier.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if err := s.store.Suppliers().Update(ctx, supplier); err != nil {
		return classify(fmt.Errorf("failed to update supplier: %w", err))
	}

	updated, err := s.store.Suppliers().FindByID(ctx, supplier.ID)
	if err != nil {
		return classify(fmt.Errorf("failed to reload supplier: %w", err))
	}
	*supplier = *updated

	s.logger.InfoContext(ctx, "supplier updated",
		slog.String("supplier_id", supplier.ID.String()),
		slog.String("name", supplier.Name))
	invalidateReports(ctx, s.cache, s.logger)
	return nil
}

// DeleteSupplier removes a supplier. Its products stay in the catalog and
// show domain.UnknownSupplier from then on.
func (s *CatalogService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Suppliers().Delete(ctx, id); err != nil {
		return classify(fmt.Errorf("failed to delete supplier: %w", err))
	}

	s.logger.InfoContext(ctx, "supplier deleted", slog.String("supplier_id", id.String()))
	invalidateReports(ctx, s.cache, s.logger)
	return nil
}

// ListSuppliers returns every supplier with its product count
func (s *CatalogService) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := s.store.Suppliers().List(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list suppliers: %w", err))
	}
	return suppliers, nil
}
