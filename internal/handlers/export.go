// internal/handlers/export.go
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ammerola/mrstore-pos/internal/adapters/export"
	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// exportPageSize is the page size used to walk the full catalog
const exportPageSize = 500

// ExportHandler renders catalog and ledger data as Excel workbooks
type ExportHandler struct {
	catalog  ports.CatalogService
	reports  ports.ReportService
	closings ports.ClosingService
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(
	catalog ports.CatalogService,
	reports ports.ReportService,
	closings ports.ClosingService,
	loc *time.Location,
	logger *slog.Logger,
) *ExportHandler {
	return &ExportHandler{
		catalog:  catalog,
		reports:  reports,
		closings: closings,
		loc:      loc,
		now:      time.Now,
		logger:   logger.With(slog.String("handler", "export")),
	}
}

// Export handles GET /api/v1/export/{file}, where file is one of
// inventory.xlsx, suppliers.xlsx, sales.xlsx or closings.xlsx
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("file")

	book := export.NewWorkbook(h.loc)
	var (
		rows int
		err  error
	)

	switch name {
	case "inventory.xlsx":
		rows, err = h.addInventory(ctx, book)
	case "suppliers.xlsx":
		rows, err = h.addSuppliers(ctx, book)
	case "sales.xlsx", "closings.xlsx":
		var rng domain.DateRange
		rng, err = queryRange(r, h.loc)
		if err != nil {
			break
		}
		if name == "sales.xlsx" {
			rows, err = h.addSales(ctx, book, rng)
		} else {
			rows, err = h.addClosings(ctx, book, rng)
		}
	default:
		respondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Unknown export %q", name))
		return
	}
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "export "+name)
		return
	}

	data, err := book.Bytes()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file", slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx", name[:len(name)-len(".xlsx")], h.now().In(h.loc).Format("20060102_150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "export completed",
		slog.String("filename", filename),
		slog.Int("rows", rows))
}

func (h *ExportHandler) addInventory(ctx context.Context, book *export.Workbook) (int, error) {
	var products []domain.Product
	filter := ports.ProductFilter{Page: 1, PageSize: exportPageSize}
	for {
		page, err := h.catalog.ListProducts(ctx, filter)
		if err != nil {
			return 0, err
		}
		products = append(products, page.Items...)
		if page.Page >= page.TotalPages || len(page.Items) == 0 {
			break
		}
		filter.Page++
	}
	return len(products), book.AddInventory(products)
}

func (h *ExportHandler) addSuppliers(ctx context.Context, book *export.Workbook) (int, error) {
	suppliers, err := h.catalog.ListSuppliers(ctx)
	if err != nil {
		return 0, err
	}
	return len(suppliers), book.AddSuppliers(suppliers)
}

func (h *ExportHandler) addSales(ctx context.Context, book *export.Workbook, rng domain.DateRange) (int, error) {
	sales, err := h.reports.QueryHistory(ctx, rng)
	if err != nil {
		return 0, err
	}
	return len(sales), book.AddSales(sales)
}

func (h *ExportHandler) addClosings(ctx context.Context, book *export.Workbook, rng domain.DateRange) (int, error) {
	closings, err := h.closings.ListClosings(ctx, rng)
	if err != nil {
		return 0, err
	}
	return len(closings), book.AddClosings(closings)
}
