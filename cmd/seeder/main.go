// cmd/seeder/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/adapters/db"
	"github.com/ammerola/mrstore-pos/internal/adapters/export"
	"github.com/ammerola/mrstore-pos/internal/adapters/memory"
	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
	"github.com/ammerola/mrstore-pos/internal/core/services"
	"github.com/ammerola/mrstore-pos/internal/pkg/config"
	"github.com/ammerola/mrstore-pos/internal/pkg/logger"
)

// demoSupplier groups demo products by who delivers them
type demoSupplier struct {
	name     string
	contact  string
	products []domain.Product
}

func demoCatalog() []demoSupplier {
	piece := func(name, brand, price string, stock int64) domain.Product {
		return domain.Product{
			Name:  name,
			Brand: brand,
			Unit:  domain.UnitPiece,
			Price: decimal.RequireFromString(price),
			Stock: decimal.NewFromInt(stock),
		}
	}
	weight := func(name, brand, price, stock string) domain.Product {
		return domain.Product{
			Name:  name,
			Brand: brand,
			Unit:  domain.UnitWeight,
			Price: decimal.RequireFromString(price),
			Stock: decimal.RequireFromString(stock),
		}
	}

	return []demoSupplier{
		{
			name:    "Coca-Cola FEMSA",
			contact: "ventas@femsa.example",
			products: []domain.Product{
				piece("Coca-Cola 600ml", "Coca-Cola", "18.00", 120),
				piece("Coca-Cola 2L", "Coca-Cola", "38.00", 48),
				piece("Agua Ciel 1L", "Ciel", "12.00", 80),
			},
		},
		{
			name:    "Grupo Bimbo",
			contact: "555-0100",
			products: []domain.Product{
				piece("Pan Blanco Grande", "Bimbo", "52.00", 20),
				piece("Gansito", "Marinela", "17.00", 60),
			},
		},
		{
			name:    "Lala",
			contact: "pedidos@lala.example",
			products: []domain.Product{
				piece("Leche Entera 1L", "Lala", "28.50", 36),
				weight("Queso Oaxaca", "Lala", "189.90", "6.5"),
			},
		},
		{
			// products sold without a registered supplier
			products: []domain.Product{
				weight("Tortillas", "", "22.00", "40"),
				weight("Jitomate", "", "34.50", "15.250"),
				piece("Huevo Blanco 12pz", "", "45.00", 8),
			},
		},
	}
}

func main() {
	var (
		file     = flag.String("file", "", "Inventory workbook to import (.xlsx)")
		demo     = flag.Bool("demo", false, "Load the demo catalog")
		days     = flag.Int("days", 0, "Generate this many past days of demo sales and close them")
		useCopy  = flag.Bool("copy", false, "Bulk load imported products with COPY instead of one insert per row")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Seed an in-memory store instead of the database")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated sales")
	)
	flag.Parse()

	slogger := logger.SetupLogger(&logger.LogConfig{
		Level:       *logLevel,
		Format:      "text",
		ServiceName: "seeder",
	}).Slog()

	if *file == "" && !*demo && *days == 0 {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -file, -demo or -days")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	var rows []export.ImportRow
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			slogger.Error("failed to read workbook", slog.String("error", err.Error()))
			os.Exit(1)
		}
		rows, err = export.ReadProducts(data)
		if err != nil {
			slogger.Error("failed to parse workbook", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slogger.Info("workbook parsed",
			slog.String("file", *file),
			slog.Int("products", len(rows)))
	}

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	loc, err := cfg.App.Location()
	if err != nil {
		slogger.Error("invalid store timezone", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var (
		database *db.Database
		store    ports.Store
	)
	if *dryRun {
		for _, row := range rows {
			fmt.Printf("row %d: %s (%s) %s x %s, supplier %q\n",
				row.Line, row.Product.Name, row.Product.Unit.Label(),
				row.Product.Price.StringFixed(2), row.Product.Stock, row.Supplier)
		}
		if *useCopy {
			fmt.Println("COPY is not simulated, rows are inserted one by one")
			*useCopy = false
		}
		store = memory.NewStore(loc)
	} else {
		database, err = db.NewDatabase(ctx, &db.Config{
			Host:               cfg.Database.Host,
			Port:               cfg.Database.Port,
			User:               cfg.Database.User,
			Password:           cfg.Database.Password,
			Database:           cfg.Database.Name,
			SSLMode:            cfg.Database.SSLMode,
			MaxConnections:     4,
			MinConnections:     1,
			MaxConnLifetime:    cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
			HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
			ConnectTimeout:     cfg.Database.ConnectTimeout,
			StatementCacheMode: cfg.Database.StatementCacheMode,
		}, slogger)
		if err != nil {
			slogger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()
		store = db.NewStore(database, loc, slogger)
	}

	catalog := services.NewCatalogService(store, nil, slogger)
	s := &seeder{
		database: database,
		store:    store,
		catalog:  catalog,
		loc:      loc,
		logger:   slogger,
		rng:      rand.New(rand.NewSource(*seed)),
	}

	var imported int
	if len(rows) > 0 {
		if *useCopy {
			imported, err = s.copyProducts(ctx, rows)
		} else {
			imported, err = s.importProducts(ctx, rows)
		}
		if err != nil {
			slogger.Error("import failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if *demo {
		n, err := s.loadDemo(ctx)
		if err != nil {
			slogger.Error("failed to load demo catalog", slog.String("error", err.Error()))
			os.Exit(1)
		}
		imported += n
	}

	var report historyReport
	if *days > 0 {
		report, err = s.generateHistory(ctx, *days)
		if err != nil {
			slogger.Error("failed to generate sales history", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Products created: %d\n", imported)
	if *days > 0 {
		fmt.Printf("Days closed:      %d\n", report.days)
		fmt.Printf("Sales committed:  %d\n", report.sales)
		fmt.Printf("Sales rejected:   %d (out of stock)\n", report.rejected)
		fmt.Printf("Revenue:          %s\n", report.revenue.StringFixed(2))
	}

	if *dryRun {
		fmt.Println("\n[DRY RUN] Seeded an in-memory store, no changes were made to the database")
	}

	slogger.Info("seed operation completed",
		slog.Int("products_created", imported),
		slog.Int("sales_committed", report.sales),
		slog.Int("days_closed", report.days))
}

type seeder struct {
	database *db.Database
	store    ports.Store
	catalog  *services.CatalogService
	loc      *time.Location
	logger   *slog.Logger
	rng      *rand.Rand
}

// suppliersByName returns the existing suppliers keyed by lower-cased name
func (s *seeder) suppliersByName(ctx context.Context) (map[string]uuid.UUID, error) {
	suppliers, err := s.catalog.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]uuid.UUID, len(suppliers))
	for _, sup := range suppliers {
		byName[strings.ToLower(sup.Name)] = sup.ID
	}
	return byName, nil
}

// resolveSupplier finds or creates the named supplier
func (s *seeder) resolveSupplier(ctx context.Context, known map[string]uuid.UUID, name, contact string) (*uuid.UUID, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := known[strings.ToLower(name)]; ok {
		return &id, nil
	}
	sup := &domain.Supplier{Name: name, Contact: contact}
	if err := s.catalog.CreateSupplier(ctx, sup); err != nil {
		return nil, fmt.Errorf("failed to create supplier %q: %w", name, err)
	}
	known[strings.ToLower(name)] = sup.ID
	return &sup.ID, nil
}

// importProducts creates each row through the catalog service. Invalid rows
// are reported and skipped.
func (s *seeder) importProducts(ctx context.Context, rows []export.ImportRow) (int, error) {
	known, err := s.suppliersByName(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, row := range rows {
		product := row.Product
		product.SupplierID, err = s.resolveSupplier(ctx, known, row.Supplier, "")
		if err != nil {
			return created, err
		}
		if err := s.catalog.CreateProduct(ctx, &product); err != nil {
			s.logger.Warn("skipping row",
				slog.Int("line", row.Line),
				slog.String("product", product.Name),
				slog.String("error", err.Error()))
			fmt.Printf("WARNING: row %d (%s): %v\n", row.Line, product.Name, err)
			continue
		}
		created++
	}
	return created, nil
}

var productColumns = []string{"id", "name", "brand", "price", "unit", "stock", "supplier_id", "created_at", "updated_at"}

// copyProducts bulk loads rows with COPY after validating them in memory
func (s *seeder) copyProducts(ctx context.Context, rows []export.ImportRow) (int, error) {
	known, err := s.suppliersByName(ctx)
	if err != nil {
		return 0, err
	}

	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		product := row.Product
		if err := product.Validate(); err != nil {
			return 0, fmt.Errorf("row %d: %w", row.Line, err)
		}
		product.SupplierID, err = s.resolveSupplier(ctx, known, row.Supplier, "")
		if err != nil {
			return 0, err
		}
		product.PrepareForStorage()
		values = append(values, []any{
			product.ID, product.Name, product.Brand, numeric(product.Price), string(product.Unit),
			numeric(product.Stock), product.SupplierID, product.CreatedAt, product.UpdatedAt,
		})
	}

	n, err := s.database.CopyFrom(ctx, pgx.Identifier{"products"}, productColumns, pgx.CopyFromRows(values))
	if err != nil {
		return 0, fmt.Errorf("failed to copy products: %w", err)
	}
	s.logger.Info("products copied", slog.Int64("rows", n))
	return int(n), nil
}

// numeric converts for COPY, which only speaks the binary protocol
func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func (s *seeder) loadDemo(ctx context.Context) (int, error) {
	known, err := s.suppliersByName(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, group := range demoCatalog() {
		supplierID, err := s.resolveSupplier(ctx, known, group.name, group.contact)
		if err != nil {
			return created, err
		}
		for _, p := range group.products {
			p.SupplierID = supplierID
			if err := s.catalog.CreateProduct(ctx, &p); err != nil {
				return created, fmt.Errorf("failed to create %q: %w", p.Name, err)
			}
			created++
		}
	}
	return created, nil
}

type historyReport struct {
	days     int
	sales    int
	rejected int
	revenue  decimal.Decimal
}

// generateHistory rings up random sales for each of the past n days, moving
// the services' clock through the store day, and closes every day.
func (s *seeder) generateHistory(ctx context.Context, n int) (historyReport, error) {
	report := historyReport{revenue: decimal.Zero}

	page, err := s.catalog.ListProducts(ctx, ports.ProductFilter{Page: 1, PageSize: 500})
	if err != nil {
		return report, err
	}
	if len(page.Items) == 0 {
		return report, fmt.Errorf("catalog is empty, load products first")
	}

	var clock time.Time
	opts := services.Options{Location: s.loc, Now: func() time.Time { return clock }}
	sales := services.NewSaleService(s.store, nil, nil, opts, s.logger)
	closings := services.NewClosingService(s.store, nil, opts, s.logger)

	today := domain.StartOfDay(time.Now(), s.loc)
	for d := n; d >= 1; d-- {
		day := today.AddDate(0, 0, -d)
		// opening hours 08:00 to 21:00
		clock = day.Add(8 * time.Hour)

		for i, count := 0, 5+s.rng.Intn(20); i < count; i++ {
			clock = clock.Add(time.Duration(s.rng.Intn(30)+1) * time.Minute)

			sale, err := s.ringUp(ctx, sales, page.Items)
			switch {
			case err == nil:
				report.sales++
				report.revenue = report.revenue.Add(sale.Total)
			case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrEmptySale):
				report.rejected++
			default:
				return report, err
			}
		}

		clock = day.Add(21 * time.Hour)
		closing, err := closings.CloseRegister(ctx, day)
		if err != nil {
			return report, fmt.Errorf("failed to close %s: %w", day.Format(domain.DateLayout), err)
		}
		report.days++
		fmt.Printf("PROGRESS: closed %s - %d sales, %s\n",
			closing.Date.Format(domain.DateLayout), closing.SaleCount, closing.TotalRevenue.StringFixed(2))
	}

	return report, nil
}

func (s *seeder) ringUp(ctx context.Context, sales *services.SaleService, products []domain.Product) (*domain.Sale, error) {
	draft, err := sales.BuildDraft(ctx)
	if err != nil {
		return nil, err
	}

	for i, lines := 0, 1+s.rng.Intn(4); i < lines; i++ {
		p := products[s.rng.Intn(len(products))]
		qty := decimal.NewFromInt(int64(1 + s.rng.Intn(3)))
		if p.Unit == domain.UnitWeight {
			qty = decimal.NewFromInt(int64(250 + s.rng.Intn(1500))).Shift(-3)
		}
		if _, err := sales.AddLine(ctx, draft.ID, p.ID, qty); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				continue
			}
			return nil, err
		}
	}

	sale, err := sales.CommitSale(ctx, draft.ID)
	if err != nil {
		_ = sales.DiscardDraft(ctx, draft.ID)
		return nil, err
	}
	return sale, nil
}
