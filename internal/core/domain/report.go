// internal/core/domain/report.go
package domain

import "github.com/shopspring/decimal"

// RecentSalesLimit is how many sales the dashboard shows
const RecentSalesLimit = 10

// Dashboard summarises the store at a glance
type Dashboard struct {
	ProductCount  int64           `json:"product_count"`
	SupplierCount int64           `json:"supplier_count"`
	TodayCount    int64           `json:"today_count"`
	TodayTotal    decimal.Decimal `json:"today_total"`
	RecentSales   []Sale          `json:"recent_sales"`
}
