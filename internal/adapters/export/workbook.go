// internal/adapters/export/workbook.go
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

// ContentType is the MIME type of every workbook produced here
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	timestampLayout = "2006-01-02 15:04:05"
	moneyFormat     = "0.00"
)

var (
	inventoryHeaders = []string{"Name", "Brand", "Unit", "Price", "Stock", "Supplier", "Status"}
	supplierHeaders  = []string{"Name", "Contact", "Products"}
	salesHeaders     = []string{"Date", "Description", "Quantity", "Total"}
	closingHeaders   = []string{"Date", "Sales", "Revenue", "Closed At"}
)

// Workbook accumulates sheets and renders them as xlsx
type Workbook struct {
	file *xlsx.File
	loc  *time.Location
}

// NewWorkbook starts an empty workbook; timestamps are rendered in loc
func NewWorkbook(loc *time.Location) *Workbook {
	if loc == nil {
		loc = time.UTC
	}
	return &Workbook{file: xlsx.NewFile(), loc: loc}
}

// Bytes renders the workbook
func (w *Workbook) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// AddInventory writes one row per product with its stock status
func (w *Workbook) AddInventory(products []domain.Product) error {
	sheet, err := w.sheet("Inventory", inventoryHeaders)
	if err != nil {
		return err
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Brand)
		row.AddCell().SetString(p.Unit.Label())
		setMoney(row.AddCell(), p.Price)
		setQuantity(row.AddCell(), p.Stock)
		row.AddCell().SetString(p.SupplierLabel())
		row.AddCell().SetString(stockStatus(p))
	}
	return nil
}

// AddSuppliers writes one row per supplier
func (w *Workbook) AddSuppliers(suppliers []domain.Supplier) error {
	sheet, err := w.sheet("Suppliers", supplierHeaders)
	if err != nil {
		return err
	}
	for _, s := range suppliers {
		row := sheet.AddRow()
		row.AddCell().SetString(s.Name)
		row.AddCell().SetString(s.Contact)
		row.AddCell().SetInt(s.ProductCount)
	}
	return nil
}

// AddSales writes the ledger entries followed by a totals row
func (w *Workbook) AddSales(sales []domain.Sale) error {
	sheet, err := w.sheet("Sales", salesHeaders)
	if err != nil {
		return err
	}
	qty, total := decimal.Zero, decimal.Zero
	for _, s := range sales {
		row := sheet.AddRow()
		row.AddCell().SetString(s.CreatedAt.In(w.loc).Format(timestampLayout))
		row.AddCell().SetString(s.Description)
		setQuantity(row.AddCell(), s.Quantity)
		setMoney(row.AddCell(), s.Total)
		qty = qty.Add(s.Quantity)
		total = total.Add(s.Total)
	}

	row := sheet.AddRow()
	bold(row.AddCell(), "Total")
	row.AddCell().SetString(fmt.Sprintf("%d sales", len(sales)))
	setQuantity(row.AddCell(), qty)
	setMoney(row.AddCell(), total)
	return nil
}

// AddClosings writes register closings, most recent first as given
func (w *Workbook) AddClosings(closings []domain.Closing) error {
	sheet, err := w.sheet("Closings", closingHeaders)
	if err != nil {
		return err
	}
	for _, c := range closings {
		row := sheet.AddRow()
		row.AddCell().SetString(c.Date.Format(domain.DateLayout))
		row.AddCell().SetInt64(c.SaleCount)
		setMoney(row.AddCell(), c.TotalRevenue)
		row.AddCell().SetString(c.ClosedAt.In(w.loc).Format(timestampLayout))
	}
	return nil
}

// ClosingArchive builds the workbook stored for a closed day
func ClosingArchive(closing domain.Closing, sales []domain.Sale, loc *time.Location) ([]byte, error) {
	wb := NewWorkbook(loc)
	if err := wb.AddClosings([]domain.Closing{closing}); err != nil {
		return nil, err
	}
	if err := wb.AddSales(sales); err != nil {
		return nil, err
	}
	return wb.Bytes()
}

// ArchiveKey is the object key of a closing archive
func ArchiveKey(day time.Time) string {
	return fmt.Sprintf("closings/%s.xlsx", day.Format("2006/01/02"))
}

func (w *Workbook) sheet(name string, headers []string) (*xlsx.Sheet, error) {
	sheet, err := w.file.AddSheet(name)
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		bold(cell, header)
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}
	sheet.SetColWidth(1, len(headers), 18)

	return sheet, nil
}

func bold(cell *xlsx.Cell, value string) {
	cell.SetString(value)
	cell.GetStyle().Font.Bold = true
}

func setMoney(cell *xlsx.Cell, d decimal.Decimal) {
	cell.SetFloatWithFormat(d.InexactFloat64(), moneyFormat)
}

func setQuantity(cell *xlsx.Cell, d decimal.Decimal) {
	cell.SetFloat(d.InexactFloat64())
}

func stockStatus(p domain.Product) string {
	switch {
	case p.OutOfStock():
		return "Out of stock"
	case p.LowStock():
		return "Low stock"
	default:
		return "OK"
	}
}

// ImportRow is a product read from an inventory workbook
type ImportRow struct {
	Line     int
	Product  domain.Product
	Supplier string
}

// ReadProducts parses the first sheet of an inventory workbook in the
// layout AddInventory writes. Blank rows and the totals row are skipped.
func ReadProducts(data []byte) ([]ImportRow, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, nil
	}

	var (
		rows []ImportRow
		line int
	)
	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		line++
		if line == 1 {
			return nil
		}
		item, err := parseProductRow(r)
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		if item != nil {
			rows = append(rows, ImportRow{Line: line, Product: item.Product, Supplier: item.Supplier})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process Excel rows: %w", err)
	}

	return rows, nil
}

func parseProductRow(r *xlsx.Row) (*ImportRow, error) {
	get := func(i int) string {
		c := r.GetCell(i)
		if c == nil {
			return ""
		}
		return strings.TrimSpace(c.Value)
	}
	getDecimal := func(i int, field string) (decimal.Decimal, error) {
		s := strings.TrimPrefix(get(i), "$")
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid %s %q", field, s)
		}
		return d, nil
	}

	name := get(0)
	if name == "" {
		return nil, nil
	}

	unit := domain.UnitPiece
	if strings.EqualFold(get(2), domain.UnitWeight.Label()) || strings.EqualFold(get(2), string(domain.UnitWeight)) {
		unit = domain.UnitWeight
	}
	price, err := getDecimal(3, "price")
	if err != nil {
		return nil, err
	}
	stock, err := getDecimal(4, "stock")
	if err != nil {
		return nil, err
	}

	supplier := get(5)
	if supplier == domain.UnknownSupplier {
		supplier = ""
	}

	return &ImportRow{
		Product: domain.Product{
			Name:  name,
			Brand: get(1),
			Unit:  unit,
			Price: price.Round(2),
			Stock: stock,
		},
		Supplier: supplier,
	}, nil
}
