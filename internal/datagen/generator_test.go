package datagen

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/retail-etl/internal/extract"
	"github.com/retailops/retail-etl/internal/transform"
)

func TestGenerateProducesConsistentData(t *testing.T) {
	dir := t.TempDir()

	gen := NewGenerator(42)
	report, err := gen.Generate(Config{OutDir: dir, Rows: 40})
	require.NoError(t, err)

	assert.Equal(t, 40, report.Customers)
	assert.Equal(t, 40, report.Products)
	assert.Equal(t, 5, report.Stores, "store count floors at 5")
	assert.Equal(t, 200, report.Sales)

	// The generated files must survive the real extract+transform path
	// without a single dropped row.
	src := &extract.DirSource{Dir: dir}
	ctx := t.Context()

	rawCustomers, err := extract.Customers(ctx, src)
	require.NoError(t, err)
	rawProducts, err := extract.Products(ctx, src)
	require.NoError(t, err)
	rawStores, err := extract.Stores(ctx, src)
	require.NoError(t, err)
	rawSales, err := extract.Sales(ctx, src)
	require.NoError(t, err)

	customers, dropped := transform.Customers(rawCustomers)
	assert.Zero(t, dropped, "generated customers must all be clean")
	products, dropped := transform.Products(rawProducts)
	assert.Zero(t, dropped, "generated products must all be clean")
	stores, dropped := transform.Stores(rawStores)
	assert.Zero(t, dropped)
	sales, dropped := transform.Sales(rawSales, products)
	assert.Zero(t, dropped, "generated sales must all be clean")

	require.Len(t, sales, 200)

	// Referential integrity of the generated ids.
	customerIDs := make(map[int64]bool)
	for _, c := range customers {
		customerIDs[c.CustomerID] = true
	}
	productIDs := make(map[int64]bool)
	for _, p := range products {
		productIDs[p.ProductID] = true
		assert.True(t, p.Cost.LessThan(p.Price), "cost below price for product %d", p.ProductID)
	}
	storeIDs := make(map[int64]bool)
	for _, s := range stores {
		storeIDs[s.StoreID] = true
	}
	for _, s := range sales {
		assert.True(t, customerIDs[s.CustomerID], "sale %d has valid customer", s.SalesID)
		assert.True(t, productIDs[s.ProductID], "sale %d has valid product", s.SalesID)
		assert.True(t, storeIDs[s.StoreID], "sale %d has valid store", s.SalesID)
	}

	// The generated total_amount column agrees with the discount formula
	// (the transform recomputes it, so generated and derived must match).
	for i, s := range sales {
		raw := rawSales[i]
		want := decimal.RequireFromString(raw.TotalAmount)
		assert.True(t, s.TotalAmount.Equal(want),
			"sale %d: generated total %s, derived %s", s.SalesID, want, s.TotalAmount)
	}
}

func TestGenerateIsReproducibleWithSeed(t *testing.T) {
	dirA := filepath.Join(t.TempDir(), "a")
	dirB := filepath.Join(t.TempDir(), "b")

	_, err := NewGenerator(7).Generate(Config{OutDir: dirA, Rows: 10})
	require.NoError(t, err)
	_, err = NewGenerator(7).Generate(Config{OutDir: dirB, Rows: 10})
	require.NoError(t, err)

	ctx := t.Context()
	salesA, err := extract.Sales(ctx, &extract.DirSource{Dir: dirA})
	require.NoError(t, err)
	salesB, err := extract.Sales(ctx, &extract.DirSource{Dir: dirB})
	require.NoError(t, err)

	assert.Equal(t, salesA, salesB)
}
