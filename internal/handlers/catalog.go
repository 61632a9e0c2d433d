// internal/handlers/catalog.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// CatalogHandler handles product and supplier administration
type CatalogHandler struct {
	catalog ports.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog ports.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger.With(slog.String("handler", "catalog")),
	}
}

// CreateProductRequest is the body of POST /api/v1/products
type CreateProductRequest struct {
	Name       string          `json:"name"`
	Brand      string          `json:"brand"`
	Price      json.RawMessage `json:"price"`
	Unit       string          `json:"unit,omitempty"`
	Stock      json.RawMessage `json:"stock,omitempty"`
	SupplierID *uuid.UUID      `json:"supplier_id,omitempty"`
}

// ToDomain converts the request to a domain product
func (req *CreateProductRequest) ToDomain() (*domain.Product, error) {
	price, err := parseDecimal(req.Price, "price")
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:       strings.TrimSpace(req.Name),
		Brand:      strings.TrimSpace(req.Brand),
		Price:      price,
		Unit:       domain.UnitKind(req.Unit),
		SupplierID: req.SupplierID,
	}
	if len(req.Stock) > 0 {
		stock, err := parseDecimal(req.Stock, "stock")
		if err != nil {
			return nil, err
		}
		product.Stock = stock
	}
	return product, nil
}

// SetStockRequest is the body of PUT /api/v1/products/{id}/stock
type SetStockRequest struct {
	Stock json.RawMessage `json:"stock"`
}

// CreateSupplierRequest is the body of POST /api/v1/suppliers
type CreateSupplierRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseProductFilter(r)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list products")
		return
	}

	page, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list products")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, page)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get product")
		return
	}

	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get product")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(ctx, w, h.logger, err, "create product")
		return
	}

	product, err := req.ToDomain()
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "create product")
		return
	}

	if err := h.catalog.CreateProduct(ctx, product); err != nil {
		respondServiceError(ctx, w, h.logger, err, "create product")
		return
	}

	w.Header().Set("Location", "/api/v1/products/"+product.ID.String())
	respondJSON(w, h.logger, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/{id}. The body replaces every
// editable field, so stock must be sent.
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "update product")
		return
	}

	var req CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(ctx, w, h.logger, err, "update product")
		return
	}
	if len(req.Stock) == 0 {
		respondServiceError(ctx, w, h.logger, validationError("stock is required"), "update product")
		return
	}

	product, err := req.ToDomain()
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "update product")
		return
	}
	product.ID = id

	if err := h.catalog.UpdateProduct(ctx, product); err != nil {
		respondServiceError(ctx, w, h.logger, err, "update product")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "delete product")
		return
	}

	if err := h.catalog.DeleteProduct(ctx, id); err != nil {
		respondServiceError(ctx, w, h.logger, err, "delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetStock handles PUT /api/v1/products/{id}/stock
func (h *CatalogHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "set stock")
		return
	}

	var req SetStockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(ctx, w, h.logger, err, "set stock")
		return
	}
	stock, err := parseDecimal(req.Stock, "stock")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "set stock")
		return
	}

	product, err := h.catalog.SetStock(ctx, id, stock)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "set stock")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, product)
}

// ListSuppliers handles GET /api/v1/suppliers
func (h *CatalogHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	suppliers, err := h.catalog.ListSuppliers(ctx)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list suppliers")
		return
	}
	if suppliers == nil {
		suppliers = []domain.Supplier{}
	}

	respondJSON(w, h.logger, http.StatusOK, suppliers)
}

// CreateSupplier handles POST /api/v1/suppliers
func (h *CatalogHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateSupplierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(ctx, w, h.logger, err, "create supplier")
		return
	}

	supplier := &domain.Supplier{
		Name:    strings.TrimSpace(req.Name),
		Contact: strings.TrimSpace(req.Contact),
	}
	if err := h.catalog.CreateSupplier(ctx, supplier); err != nil {
		respondServiceError(ctx, w, h.logger, err, "create supplier")
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, supplier)
}

// UpdateSupplier handles PUT /api/v1/suppliers/{id}
func (h *CatalogHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "update supplier")
		return
	}

	var req CreateSupplierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(ctx, w, h.logger, err, "update supplier")
		return
	}

	supplier := &domain.Supplier{
		ID:      id,
		Name:    strings.TrimSpace(req.Name),
		Contact: strings.TrimSpace(req.Contact),
	}
	if err := h.catalog.UpdateSupplier(ctx, supplier); err != nil {
		respondServiceError(ctx, w, h.logger, err, "update supplier")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, supplier)
}

// DeleteSupplier handles DELETE /api/v1/suppliers/{id}
func (h *CatalogHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "delete supplier")
		return
	}

	if err := h.catalog.DeleteSupplier(ctx, id); err != nil {
		respondServiceError(ctx, w, h.logger, err, "delete supplier")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SupplierProducts handles GET /api/v1/suppliers/{id}/products
func (h *CatalogHandler) SupplierProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list supplier products")
		return
	}

	filter, err := parseProductFilter(r)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list supplier products")
		return
	}
	filter.SupplierID = &id

	page, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list supplier products")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, page)
}

func parseProductFilter(r *http.Request) (ports.ProductFilter, error) {
	q := r.URL.Query()
	filter := ports.ProductFilter{
		Search: strings.TrimSpace(q.Get("search")),
	}

	if v := q.Get("low_stock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, validationError("low_stock must be true or false")
		}
		filter.LowStockOnly = b
	}
	if v := q.Get("supplier_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, validationError("invalid supplier_id %q", v)
		}
		filter.SupplierID = &id
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, validationError("page must be a positive integer")
		}
		filter.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, validationError("page_size must be a positive integer")
		}
		filter.PageSize = n
	}

	filter.Normalize()
	return filter, nil
}
