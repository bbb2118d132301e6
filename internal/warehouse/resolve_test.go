package warehouse

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/retail-etl/internal/transform"
)

func testSale(salesID, customerID, productID, storeID int64, dateKey int) transform.Sale {
	return transform.Sale{
		SalesID:     salesID,
		CustomerID:  customerID,
		ProductID:   productID,
		StoreID:     storeID,
		DateKey:     dateKey,
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("50.00"),
		DiscountPct: decimal.Zero,
		Revenue:     decimal.RequireFromString("100.00"),
		TotalAmount: decimal.RequireFromString("100.00"),
		Profit:      decimal.RequireFromString("40.00"),
	}
}

func TestResolveFactRows(t *testing.T) {
	customers := map[int64]int32{5: 1}
	products := map[int64]int32{10: 7}
	stores := map[int64]int32{3: 2}
	dates := map[int]struct{}{20240615: {}}

	rows, err := resolveFactRows(
		[]transform.Sale{testSale(1, 5, 10, 3, 20240615)},
		customers, products, stores, dates)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, int64(1), rows[0][0])
	assert.Equal(t, int32(1), rows[0][1], "customer surrogate key")
	assert.Equal(t, int32(7), rows[0][2], "product surrogate key")
	assert.Equal(t, int32(2), rows[0][3], "store surrogate key")
	assert.Equal(t, 20240615, rows[0][4])
}

func TestResolveFactRowsMissingKeys(t *testing.T) {
	customers := map[int64]int32{5: 1}
	products := map[int64]int32{10: 7}
	stores := map[int64]int32{3: 2}
	dates := map[int]struct{}{20240615: {}}

	tests := []struct {
		name string
		sale transform.Sale
		want string
	}{
		{"unknown customer", testSale(1, 99, 10, 3, 20240615), "unknown customer_id 99"},
		{"unknown product", testSale(2, 5, 99, 3, 20240615), "unknown product_id 99"},
		{"unknown store", testSale(3, 5, 10, 99, 20240615), "unknown store_id 99"},
		{"unknown date", testSale(4, 5, 10, 3, 19990101), "unknown date_key 19990101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveFactRows([]transform.Sale{tt.sale},
				customers, products, stores, dates)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
