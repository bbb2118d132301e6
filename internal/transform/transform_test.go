package transform

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/retail-etl/internal/extract"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCustomersCleaning(t *testing.T) {
	raw := []extract.RawCustomer{
		{CustomerID: "1", FirstName: "  Asha ", LastName: " Rao ", Gender: "Female", Age: "34", City: "Pune", State: "Maharashtra", MembershipLevel: "Gold"},
		{CustomerID: "2", FirstName: "Ben", LastName: "Okafor", Age: "17"},   // under age
		{CustomerID: "3", FirstName: "Cleo", LastName: "Im", Age: "101"},     // over age
		{CustomerID: "4", FirstName: "Dee", LastName: "Nunes", Age: "forty"}, // unparseable age
		{CustomerID: "", FirstName: "Eve", LastName: "Liu", Age: "30"},       // missing id
		{CustomerID: "6", FirstName: "Raj", LastName: "Shah", Age: "85.0"},   // float-formatted age
	}

	got, dropped := Customers(raw)
	require.Len(t, got, 2)
	assert.Equal(t, 4, dropped)

	assert.Equal(t, "Asha", got[0].FirstName)
	assert.Equal(t, "Rao", got[0].LastName)
	assert.Equal(t, 34, got[0].Age)
	assert.Equal(t, int64(6), got[1].CustomerID)
	assert.Equal(t, 85, got[1].Age)
}

func TestProductsCleaning(t *testing.T) {
	raw := []extract.RawProduct{
		{ProductID: "1", ProductName: "Trail Shoe", Category: "Sports", Price: "1999.00", Cost: "1200.50", Size: "L"},
		{ProductID: "2", ProductName: "Loss Leader", Price: "100.00", Cost: "100.00"}, // cost == price
		{ProductID: "3", ProductName: "Bad Margin", Price: "50.00", Cost: "80.00"},    // cost > price
		{ProductID: "4", ProductName: "No Price", Price: "", Cost: "10.00"},
	}

	got, dropped := Products(raw)
	require.Len(t, got, 1)
	assert.Equal(t, 3, dropped)
	assert.True(t, got[0].Price.Equal(dec("1999.00")))
	assert.True(t, got[0].Cost.Equal(dec("1200.50")))
	assert.Equal(t, "L", got[0].SizeLabel)
}

func TestStoresCleaning(t *testing.T) {
	raw := []extract.RawStore{
		{StoreID: "7", StoreName: "  Central Market  ", City: "Chennai", Region: "South", StoreType: "Mall"},
		{StoreID: "x", StoreName: "Ghost"},
	}

	got, dropped := Stores(raw)
	require.Len(t, got, 1)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "Central Market", got[0].StoreName)
}

func TestSalesCleaningAndDerivedColumns(t *testing.T) {
	products := []Product{
		{ProductID: 10, Price: dec("200.00"), Cost: dec("120.00")},
	}
	raw := []extract.RawSale{
		{SalesID: "1", CustomerID: "5", ProductID: "10", StoreID: "3", Quantity: "2", SalesDate: "15-06-2024", DiscountPct: "10", UnitPrice: "200.00"},
		{SalesID: "2", CustomerID: "5", ProductID: "10", StoreID: "3", Quantity: "0", SalesDate: "15-06-2024", UnitPrice: "200.00"},  // quantity <= 0
		{SalesID: "3", CustomerID: "5", ProductID: "10", StoreID: "3", Quantity: "1", SalesDate: "31-02-2024", UnitPrice: "200.00"},  // impossible date
		{SalesID: "4", CustomerID: "5", ProductID: "99", StoreID: "3", Quantity: "1", SalesDate: "15-06-2024", UnitPrice: "200.00"},  // unknown product
		{SalesID: "5", CustomerID: "5", ProductID: "10", StoreID: "3", Quantity: "3", SalesDate: "01-01-2025", DiscountPct: "", UnitPrice: "200.00"}, // discount defaults to 0
	}

	got, dropped := Sales(raw, products)
	require.Len(t, got, 2)
	assert.Equal(t, 3, dropped)

	s := got[0]
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), s.SoldAt)
	assert.Equal(t, 20240615, s.DateKey)
	assert.True(t, s.Revenue.Equal(dec("400.00")), "revenue = 2 * 200")
	assert.True(t, s.TotalAmount.Equal(dec("360.00")), "total = 400 * 0.9")
	assert.True(t, s.Profit.Equal(dec("160.00")), "profit = 400 - 2*120")

	s = got[1]
	assert.True(t, s.DiscountPct.IsZero())
	assert.True(t, s.TotalAmount.Equal(dec("600.00")))
	assert.True(t, s.Revenue.Equal(s.TotalAmount), "no discount: total equals revenue")
}

func TestSalesTotalAmountFormula(t *testing.T) {
	// total_amount must equal quantity * unit_price * (1 - discount_pct/100)
	// for every surviving row, whatever the CSV claimed.
	products := []Product{{ProductID: 1, Price: dec("99.99"), Cost: dec("40.00")}}
	raw := []extract.RawSale{
		{SalesID: "1", CustomerID: "1", ProductID: "1", StoreID: "1", Quantity: "5",
			SalesDate: "07-03-2023", DiscountPct: "25", UnitPrice: "99.99", TotalAmount: "1.00"},
	}

	got, dropped := Sales(raw, products)
	require.Len(t, got, 1)
	require.Zero(t, dropped)

	want := dec("99.99").Mul(decimal.NewFromInt(5)).
		Mul(decimal.NewFromInt(1).Sub(dec("25").Div(decimal.NewFromInt(100)))).
		Round(2)
	assert.True(t, got[0].TotalAmount.Equal(want), "got %s want %s", got[0].TotalAmount, want)
}

func TestDateRows(t *testing.T) {
	products := []Product{{ProductID: 1, Price: dec("10"), Cost: dec("5")}}
	raw := []extract.RawSale{
		{SalesID: "1", CustomerID: "1", ProductID: "1", StoreID: "1", Quantity: "1", SalesDate: "02-01-2023", UnitPrice: "10"},
		{SalesID: "2", CustomerID: "1", ProductID: "1", StoreID: "1", Quantity: "1", SalesDate: "02-01-2023", UnitPrice: "10"},
		{SalesID: "3", CustomerID: "1", ProductID: "1", StoreID: "1", Quantity: "1", SalesDate: "25-12-2022", UnitPrice: "10"},
	}
	sales, dropped := Sales(raw, products)
	require.Zero(t, dropped)

	rows := DateRows(sales)
	require.Len(t, rows, 2, "duplicate dates collapse")

	// Sorted by key.
	assert.Equal(t, 20221225, rows[0].DateKey)
	assert.Equal(t, 20230102, rows[1].DateKey)

	xmas := rows[0]
	assert.Equal(t, 25, xmas.Day)
	assert.Equal(t, 12, xmas.Month)
	assert.Equal(t, 2022, xmas.Year)
	assert.Equal(t, 4, xmas.Quarter)
	assert.Equal(t, 7, xmas.Weekday, "2022-12-25 was a Sunday")

	jan2 := rows[1]
	assert.Equal(t, 1, jan2.Quarter)
	assert.Equal(t, 1, jan2.Weekday, "2023-01-02 was a Monday")
}

func TestDateHelpers(t *testing.T) {
	d := time.Date(2024, 8, 23, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 20240823, DateKey(d))
	assert.Equal(t, 3, Quarter(d))
	assert.Equal(t, 5, ISOWeekday(d), "2024-08-23 was a Friday")

	assert.Equal(t, 1, Quarter(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, Quarter(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDayFirstDate(t *testing.T) {
	for _, in := range []string{"15-06-2024", "15/06/2024", "2024-06-15"} {
		got, ok := parseDayFirstDate(in)
		require.True(t, ok, in)
		assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), got, in)
	}

	_, ok := parseDayFirstDate("06-15-2024") // month-first rejected
	assert.False(t, ok)
	_, ok = parseDayFirstDate("")
	assert.False(t, ok)
}
