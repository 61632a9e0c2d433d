// internal/handlers/routes.go
package handlers

import "net/http"

// APIPrefix is the path prefix of every versioned endpoint
const APIPrefix = "/api/v1"

// Handlers groups the HTTP handlers served by the API. Health may be nil.
type Handlers struct {
	Drafts   *DraftHandler
	Reports  *ReportHandler
	Closings *ClosingHandler
	Catalog  *CatalogHandler
	Export   *ExportHandler
	Health   *HealthHandler
}

// RegisterRoutes wires every endpoint onto mux using method patterns
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	apiV1 := APIPrefix

	if h.Health != nil {
		mux.HandleFunc("GET /health", h.Health.Health)
		mux.HandleFunc("GET /ready", h.Health.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", h.Health.Health)
	}

	// Drafts
	mux.HandleFunc("POST "+apiV1+"/drafts", h.Drafts.CreateDraft)
	mux.HandleFunc("GET "+apiV1+"/drafts/{id}", h.Drafts.GetDraft)
	mux.HandleFunc("DELETE "+apiV1+"/drafts/{id}", h.Drafts.DiscardDraft)
	mux.HandleFunc("POST "+apiV1+"/drafts/{id}/lines", h.Drafts.AddLine)
	mux.HandleFunc("DELETE "+apiV1+"/drafts/{id}/lines/{lineID}", h.Drafts.RemoveLine)
	mux.HandleFunc("GET "+apiV1+"/drafts/{id}/total", h.Drafts.CurrentTotal)
	mux.HandleFunc("POST "+apiV1+"/drafts/{id}/commit", h.Drafts.CommitSale)

	// Sales ledger and reports
	mux.HandleFunc("GET "+apiV1+"/sales", h.Reports.History)
	mux.HandleFunc("GET "+apiV1+"/sales/today", h.Reports.Today)
	mux.HandleFunc("DELETE "+apiV1+"/sales/{id}", h.Reports.DeleteSale)
	mux.HandleFunc("GET "+apiV1+"/reports/daily", h.Reports.DailyTotals)
	mux.HandleFunc("GET "+apiV1+"/reports/daily/{date}", h.Reports.DayDetail)
	mux.HandleFunc("GET "+apiV1+"/dashboard", h.Reports.Dashboard)

	// Closings
	mux.HandleFunc("POST "+apiV1+"/closings", h.Closings.CloseRegister)
	mux.HandleFunc("GET "+apiV1+"/closings", h.Closings.ListClosings)
	mux.HandleFunc("GET "+apiV1+"/closings/{date}", h.Closings.GetClosing)
	mux.HandleFunc("GET "+apiV1+"/closings/{date}/archive", h.Closings.GetArchive)

	// Catalog
	mux.HandleFunc("GET "+apiV1+"/products", h.Catalog.ListProducts)
	mux.HandleFunc("POST "+apiV1+"/products", h.Catalog.CreateProduct)
	mux.HandleFunc("GET "+apiV1+"/products/{id}", h.Catalog.GetProduct)
	mux.HandleFunc("PUT "+apiV1+"/products/{id}", h.Catalog.UpdateProduct)
	mux.HandleFunc("DELETE "+apiV1+"/products/{id}", h.Catalog.DeleteProduct)
	mux.HandleFunc("PUT "+apiV1+"/products/{id}/stock", h.Catalog.SetStock)
	mux.HandleFunc("GET "+apiV1+"/suppliers", h.Catalog.ListSuppliers)
	mux.HandleFunc("POST "+apiV1+"/suppliers", h.Catalog.CreateSupplier)
	mux.HandleFunc("PUT "+apiV1+"/suppliers/{id}", h.Catalog.UpdateSupplier)
	mux.HandleFunc("DELETE "+apiV1+"/suppliers/{id}", h.Catalog.DeleteSupplier)
	mux.HandleFunc("GET "+apiV1+"/suppliers/{id}/products", h.Catalog.SupplierProducts)

	// Export
	mux.HandleFunc("GET "+apiV1+"/export/{file}", h.Export.Export)
}
