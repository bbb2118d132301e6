//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package transform cleans raw CSV records and derives the warehouse
// columns: revenue, profit, total_amount and the date dimension.
//
// Cleaning never fails a run: rows that violate a rule are dropped and
// counted. Type errors on individual cells count as violations of the
// rule that reads them.
package transform

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a cleaned dim_customer row (surrogate key assigned on load).
type Customer struct {
	CustomerID      int64  `csv:"customer_id"`
	FirstName       string `csv:"first_name"`
	LastName        string `csv:"last_name"`
	Gender          string `csv:"gender"`
	Age             int    `csv:"age"`
	City            string `csv:"city"`
	State           string `csv:"state"`
	MembershipLevel string `csv:"membership_level"`
}

// Product is a cleaned dim_product row.
type Product struct {
	ProductID   int64           `csv:"product_id"`
	ProductName string          `csv:"product_name"`
	Category    string          `csv:"category"`
	SubCategory string          `csv:"sub_category"`
	Brand       string          `csv:"brand"`
	Price       decimal.Decimal `csv:"price"`
	Cost        decimal.Decimal `csv:"cost"`
	Color       string          `csv:"color"`
	SizeLabel   string          `csv:"size_label"`
}

// Store is a cleaned dim_store row.
type Store struct {
	StoreID   int64  `csv:"store_id"`
	StoreName string `csv:"store_name"`
	City      string `csv:"city"`
	State     string `csv:"state"`
	Region    string `csv:"region"`
	StoreType string `csv:"store_type"`
}

// Sale is a cleaned fact row with all derived columns computed and the
// natural keys still in place; the loader resolves them to surrogate keys.
type Sale struct {
	SalesID     int64           `csv:"sales_id"`
	CustomerID  int64           `csv:"customer_id"`
	ProductID   int64           `csv:"product_id"`
	StoreID     int64           `csv:"store_id"`
	DateKey     int             `csv:"date_key"`
	SoldAt      time.Time       `csv:"sales_date"`
	Quantity    int             `csv:"quantity"`
	UnitPrice   decimal.Decimal `csv:"unit_price"`
	DiscountPct decimal.Decimal `csv:"discount_pct"`
	Revenue     decimal.Decimal `csv:"revenue"`
	TotalAmount decimal.Decimal `csv:"total_amount"`
	Profit      decimal.Decimal `csv:"profit"`
}

// DateRow is a dim_date row. Its key is deterministic (YYYYMMDD), so it
// carries its own key rather than relying on a sequence.
type DateRow struct {
	DateKey      int       `csv:"date_key"`
	CalendarDate time.Time `csv:"calendar_date"`
	Day          int       `csv:"day"`
	Month        int       `csv:"month"`
	Year         int       `csv:"year"`
	Quarter      int       `csv:"quarter"`
	Weekday      int       `csv:"weekday"`
}

// Customer age bounds; rows outside are dropped.
const (
	minAge = 18
	maxAge = 100
)

var oneHundred = decimal.NewFromInt(100)

// dayFirstLayouts are the accepted sales_date formats, day first.
var dayFirstLayouts = []string{"02-01-2006", "02/01/2006", "2006-01-02"}
