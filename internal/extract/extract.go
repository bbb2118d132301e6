//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package extract reads the raw retail CSV files into memory.
//
// All fields are decoded as strings: input files routinely carry blank or
// malformed cells, and type coercion is the transform step's job.
package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/retailops/retail-etl/internal/logging"
)

// Input file names, fixed by convention with the upstream export.
const (
	CustomersFile = "customers.csv"
	ProductsFile  = "products.csv"
	StoresFile    = "stores.csv"
	SalesFile     = "sales.csv"
)

// RawCustomer is one row of customers.csv.
type RawCustomer struct {
	CustomerID      string `csv:"customer_id"`
	FirstName       string `csv:"first_name"`
	LastName        string `csv:"last_name"`
	Gender          string `csv:"gender"`
	Age             string `csv:"age"`
	City            string `csv:"city"`
	State           string `csv:"state"`
	MembershipLevel string `csv:"membership_level"`
}

// RawProduct is one row of products.csv.
type RawProduct struct {
	ProductID   string `csv:"product_id"`
	ProductName string `csv:"product_name"`
	Category    string `csv:"category"`
	SubCategory string `csv:"sub_category"`
	Brand       string `csv:"brand"`
	Price       string `csv:"price"`
	Cost        string `csv:"cost"`
	Color       string `csv:"color"`
	Size        string `csv:"size"`
}

// RawStore is one row of stores.csv.
type RawStore struct {
	StoreID   string `csv:"store_id"`
	StoreName string `csv:"store_name"`
	City      string `csv:"city"`
	State     string `csv:"state"`
	Region    string `csv:"region"`
	StoreType string `csv:"store_type"`
}

// RawSale is one row of sales.csv. The total_amount column is carried
// through for staging snapshots but the warehouse value is recomputed.
type RawSale struct {
	SalesID     string `csv:"sales_id"`
	CustomerID  string `csv:"customer_id"`
	ProductID   string `csv:"product_id"`
	StoreID     string `csv:"store_id"`
	Quantity    string `csv:"quantity"`
	SalesDate   string `csv:"sales_date"`
	DiscountPct string `csv:"discount_pct"`
	UnitPrice   string `csv:"unit_price"`
	TotalAmount string `csv:"total_amount"`
}

// Customers reads customers.csv from the source.
func Customers(ctx context.Context, src Source) ([]RawCustomer, error) {
	return readAll[RawCustomer](ctx, src, CustomersFile)
}

// Products reads products.csv from the source.
func Products(ctx context.Context, src Source) ([]RawProduct, error) {
	return readAll[RawProduct](ctx, src, ProductsFile)
}

// Stores reads stores.csv from the source.
func Stores(ctx context.Context, src Source) ([]RawStore, error) {
	return readAll[RawStore](ctx, src, StoresFile)
}

// Sales reads sales.csv from the source.
func Sales(ctx context.Context, src Source) ([]RawSale, error) {
	return readAll[RawSale](ctx, src, SalesFile)
}

func readAll[T any](ctx context.Context, src Source, name string) ([]T, error) {
	logging.Info().Str("file", src.Location(name)).Msg("Reading input file")

	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(rc))
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", src.Location(name), err)
	}

	var records []T
	for {
		var rec T
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode %s row %d: %w",
				src.Location(name), len(records)+2, err)
		}
		records = append(records, rec)
	}

	logging.Info().
		Str("file", src.Location(name)).
		Int("rows", len(records)).
		Msg("Input file read")

	return records, nil
}
