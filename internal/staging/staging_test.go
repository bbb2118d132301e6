package staging

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/retail-etl/internal/transform"
)

func TestWriteSnapshots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")

	customers := []transform.Customer{
		{CustomerID: 1, FirstName: "Asha", LastName: "Rao", Gender: "Female", Age: 34, City: "Pune", State: "Maharashtra", MembershipLevel: "Gold"},
	}
	products := []transform.Product{
		{ProductID: 10, ProductName: "Trail Shoe", Category: "Sports", Price: decimal.RequireFromString("1999.00"), Cost: decimal.RequireFromString("1200.50"), SizeLabel: "L"},
	}
	sales := []transform.Sale{
		{SalesID: 1, CustomerID: 1, ProductID: 10, StoreID: 3, DateKey: 20240615,
			SoldAt: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), Quantity: 2,
			UnitPrice:   decimal.RequireFromString("1999.00"),
			DiscountPct: decimal.RequireFromString("10"),
			Revenue:     decimal.RequireFromString("3998.00"),
			TotalAmount: decimal.RequireFromString("3598.20"),
			Profit:      decimal.RequireFromString("1597.00")},
	}
	dates := transform.DateRows(sales)

	err := WriteSnapshots(dir, customers, products, nil, dates, sales)
	require.NoError(t, err)

	for _, name := range []string{CustomerFile, ProductFile, StoreFile, DateFile, SalesFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	// Spot-check the sales snapshot contents.
	f, err := os.Open(filepath.Join(dir, SalesFile))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header plus one row")

	header := strings.Join(records[0], ",")
	assert.Contains(t, header, "sales_id")
	assert.Contains(t, header, "date_key")
	assert.Contains(t, header, "total_amount")
	assert.Contains(t, records[1], "3598.20")

	// The empty stores snapshot still carries its header.
	f2, err := os.Open(filepath.Join(dir, StoreFile))
	require.NoError(t, err)
	defer f2.Close()
	storeRecords, err := csv.NewReader(f2).ReadAll()
	require.NoError(t, err)
	require.Len(t, storeRecords, 1)
	assert.Contains(t, strings.Join(storeRecords[0], ","), "store_id")
}
