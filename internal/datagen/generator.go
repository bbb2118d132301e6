//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/shopspring/decimal"

	"github.com/retailops/retail-etl/internal/extract"
	"github.com/retailops/retail-etl/internal/logging"
)

// Reference data for synthetic retail rows.
var (
	genders     = []string{"Male", "Female", "Non-binary", "Other"}
	memberships = []string{"Bronze", "Silver", "Gold", "Platinum"}
	membershipW = []float32{0.5, 0.3, 0.15, 0.05}

	brands = []string{"Acme", "Globex", "Initech", "Umbrella",
		"Stark", "Wayne", "Soylent", "Hooli"}
	colors = []string{"Red", "Blue", "Green", "Black", "White",
		"Yellow", "Purple", "Orange", "Gray"}
	sizeLabels = []string{"XS", "S", "M", "L", "XL", "One Size", "N/A"}

	regions    = []string{"North", "South", "East", "West", "Central"}
	storeTypes = []string{"Flagship", "Outlet", "Mall", "Online", "Pop-up"}

	quantities  = []string{"1", "2", "3", "4", "5"}
	quantityW   = []float32{0.6, 0.2, 0.1, 0.07, 0.03}
	discounts   = []string{"0", "5", "10", "15", "20", "25", "30"}
	discountW   = []float32{0.65, 0.1, 0.08, 0.07, 0.05, 0.03, 0.02}
)

// categories maps product categories to subcategories and price ranges.
var categories = map[string]struct {
	subs     []string
	min, max float64
}{
	"Electronics":    {[]string{"Mobile", "Laptop", "Tablet", "Camera"}, 5000, 50000},
	"Home & Kitchen": {[]string{"Cookware", "Furniture", "Appliance", "Bedding"}, 500, 15000},
	"Fashion":        {[]string{"Men's Clothing", "Women's Clothing", "Shoes", "Accessories"}, 200, 15000},
	"Sports":         {[]string{"Outdoor", "Gym Equipment", "Footwear", "Apparel"}, 500, 20000},
	"Toys":           {[]string{"Action Figure", "Board Game", "Puzzle", "Plush"}, 100, 3000},
	"Books":          {[]string{"Fiction", "Non-Fiction", "Children", "Comics"}, 100, 2000},
	"Health":         {[]string{"Supplements", "Personal Care", "Medical Device"}, 100, 5000},
	"Automotive":     {[]string{"Car Accessory", "Tool", "Part"}, 1000, 30000},
}

var categoryNames = []string{"Electronics", "Home & Kitchen", "Fashion",
	"Sports", "Toys", "Books", "Health", "Automotive"}

const progressInterval = 100000

// Config controls synthetic CSV generation.
type Config struct {
	// OutDir is the directory the CSV files are written to.
	OutDir string

	// Rows is the base row count: customers and products each get Rows
	// rows, stores Rows/10 (at least 5), sales Rows*5.
	Rows int
}

// Report summarizes what was generated.
type Report struct {
	Customers int
	Products  int
	Stores    int
	Sales     int
}

// Generator produces the four input CSV files.
type Generator struct {
	faker *Faker
}

// NewGenerator creates a generator. A zero seed means a random one.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		return &Generator{faker: NewFaker()}
	}
	return &Generator{faker: NewFakerWithSeed(seed)}
}

// Generate writes customers.csv, products.csv, stores.csv and sales.csv
// into cfg.OutDir. Generated data satisfies the warehouse invariants:
// every sale references generated ids, cost stays below price, and
// total_amount follows the discount formula.
func (g *Generator) Generate(cfg Config) (*Report, error) {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.OutDir, err)
	}

	numCustomers := cfg.Rows
	numProducts := cfg.Rows
	numStores := max(5, cfg.Rows/10)
	numSales := cfg.Rows * 5

	customers := g.customers(numCustomers)
	products := g.products(numProducts)
	stores := g.stores(numStores)
	sales := g.sales(numSales, customers, products, stores)

	if err := writeCSV(filepath.Join(cfg.OutDir, extract.CustomersFile), customers); err != nil {
		return nil, err
	}
	if err := writeCSV(filepath.Join(cfg.OutDir, extract.ProductsFile), products); err != nil {
		return nil, err
	}
	if err := writeCSV(filepath.Join(cfg.OutDir, extract.StoresFile), stores); err != nil {
		return nil, err
	}
	if err := writeCSV(filepath.Join(cfg.OutDir, extract.SalesFile), sales); err != nil {
		return nil, err
	}

	return &Report{
		Customers: len(customers),
		Products:  len(products),
		Stores:    len(stores),
		Sales:     len(sales),
	}, nil
}

func (g *Generator) customers(n int) []extract.RawCustomer {
	rows := make([]extract.RawCustomer, n)
	for i := range rows {
		rows[i] = extract.RawCustomer{
			CustomerID:      strconv.Itoa(i + 1),
			FirstName:       g.faker.FirstName(),
			LastName:        g.faker.LastName(),
			Gender:          g.faker.Choice(genders),
			Age:             strconv.Itoa(g.faker.Number(18, 85)),
			City:            g.faker.City(),
			State:           g.faker.State(),
			MembershipLevel: g.faker.Weighted(memberships, membershipW),
		}
	}
	return rows
}

func (g *Generator) products(n int) []extract.RawProduct {
	rows := make([]extract.RawProduct, n)
	for i := range rows {
		cat := g.faker.Choice(categoryNames)
		info := categories[cat]
		price := g.faker.Price(info.min, info.max)
		cost := price * g.faker.Float64Range(0.4, 0.9)

		rows[i] = extract.RawProduct{
			ProductID:   strconv.Itoa(i + 1),
			ProductName: g.faker.ProductName(),
			Category:    cat,
			SubCategory: g.faker.Choice(info.subs),
			Brand:       g.faker.Choice(brands),
			Price:       formatAmount(price),
			Cost:        formatAmount(cost),
			Color:       g.faker.Choice(colors),
			Size:        g.faker.Choice(sizeLabels),
		}
	}
	return rows
}

func (g *Generator) stores(n int) []extract.RawStore {
	rows := make([]extract.RawStore, n)
	for i := range rows {
		rows[i] = extract.RawStore{
			StoreID:   strconv.Itoa(i + 1),
			StoreName: g.faker.Company() + " " + g.faker.Choice([]string{"Store", "Outlet", "Shop", "Market"}),
			City:      g.faker.City(),
			State:     g.faker.State(),
			Region:    g.faker.Choice(regions),
			StoreType: g.faker.Choice(storeTypes),
		}
	}
	return rows
}

func (g *Generator) sales(n int, customers []extract.RawCustomer,
	products []extract.RawProduct, stores []extract.RawStore) []extract.RawSale {

	// Sales reference products by list price; keep them handy.
	priceByIndex := make([]decimal.Decimal, len(products))
	for i, p := range products {
		priceByIndex[i] = decimal.RequireFromString(p.Price)
	}

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(-2, 0, 0)

	progress := NewProgressReporter(extract.SalesFile, int64(n), progressInterval)
	rows := make([]extract.RawSale, n)
	for i := range rows {
		productIdx := g.faker.Number(0, len(products)-1)
		qty := g.faker.Weighted(quantities, quantityW)
		discount := g.faker.Weighted(discounts, discountW)

		unitPrice := priceByIndex[productIdx]
		qtyDec := decimal.RequireFromString(qty)
		discDec := decimal.RequireFromString(discount)
		total := unitPrice.Mul(qtyDec).
			Mul(decimal.NewFromInt(1).Sub(discDec.Div(decimal.NewFromInt(100)))).
			Round(2)

		rows[i] = extract.RawSale{
			SalesID:     strconv.Itoa(i + 1),
			CustomerID:  strconv.Itoa(g.faker.Number(1, len(customers))),
			ProductID:   strconv.Itoa(productIdx + 1),
			StoreID:     strconv.Itoa(g.faker.Number(1, len(stores))),
			Quantity:    qty,
			SalesDate:   g.faker.Date(start, end).Format("02-01-2006"),
			DiscountPct: discount,
			UnitPrice:   unitPrice.StringFixed(2),
			TotalAmount: total.StringFixed(2),
		}
		progress.Update(1)
	}
	progress.Done()
	return rows
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeCSV[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return fmt.Errorf("failed to encode row in %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	logging.Info().Str("file", path).Int("rows", len(rows)).Msg("Wrote CSV")
	return nil
}
