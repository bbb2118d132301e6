//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package etl orchestrates one full run: extract the CSVs, transform
// them, write staging snapshots, and load the warehouse. The run is
// strictly sequential and stops at the first error.
package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailops/retail-etl/internal/db"
	"github.com/retailops/retail-etl/internal/extract"
	"github.com/retailops/retail-etl/internal/logging"
	"github.com/retailops/retail-etl/internal/staging"
	"github.com/retailops/retail-etl/internal/transform"
	"github.com/retailops/retail-etl/internal/warehouse"
)

// Config holds everything a run needs.
type Config struct {
	Pool       *pgxpool.Pool
	Source     extract.Source
	StagingDir string

	// BatchSize is the number of rows per COPY chunk during the load.
	// Zero means the loader default.
	BatchSize int
}

// StepCounts tracks rows through one pipeline stage.
type StepCounts struct {
	Extracted int
	Dropped   int
	Loaded    int64
}

// Summary reports the outcome of a completed run.
type Summary struct {
	Customers StepCounts
	Products  StepCounts
	Stores    StepCounts
	Sales     StepCounts
	DateRows  int64
	Elapsed   time.Duration
}

// Run executes one full ETL run and records its row counts in the
// warehouse metadata.
func Run(ctx context.Context, cfg Config) (*Summary, error) {
	start := time.Now()
	logging.Info().Msg("ETL run starting")

	// Extract
	rawCustomers, err := extract.Customers(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("extract customers: %w", err)
	}
	rawProducts, err := extract.Products(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("extract products: %w", err)
	}
	rawStores, err := extract.Stores(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("extract stores: %w", err)
	}
	rawSales, err := extract.Sales(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("extract sales: %w", err)
	}

	// Transform
	customers, droppedCustomers := transform.Customers(rawCustomers)
	products, droppedProducts := transform.Products(rawProducts)
	stores, droppedStores := transform.Stores(rawStores)
	sales, droppedSales := transform.Sales(rawSales, products)
	dates := transform.DateRows(sales)

	logging.Info().
		Int("customers", len(customers)).
		Int("products", len(products)).
		Int("stores", len(stores)).
		Int("sales", len(sales)).
		Int("dates", len(dates)).
		Int("dropped_customers", droppedCustomers).
		Int("dropped_products", droppedProducts).
		Int("dropped_stores", droppedStores).
		Int("dropped_sales", droppedSales).
		Msg("Transform complete")

	// Stage
	if err := staging.WriteSnapshots(cfg.StagingDir, customers, products, stores, dates, sales); err != nil {
		return nil, fmt.Errorf("stage snapshots: %w", err)
	}

	// Load
	counts, err := warehouse.NewLoader(cfg.Pool, cfg.BatchSize).LoadAll(ctx, customers, products, stores, dates, sales)
	if err != nil {
		return nil, fmt.Errorf("load warehouse: %w", err)
	}

	if err := db.SaveRunMetadata(ctx, cfg.Pool, counts); err != nil {
		return nil, fmt.Errorf("record run metadata: %w", err)
	}

	summary := &Summary{
		Customers: StepCounts{len(rawCustomers), droppedCustomers, counts["dim_customer"]},
		Products:  StepCounts{len(rawProducts), droppedProducts, counts["dim_product"]},
		Stores:    StepCounts{len(rawStores), droppedStores, counts["dim_store"]},
		Sales:     StepCounts{len(rawSales), droppedSales, counts["fact_sales"]},
		DateRows:  counts["dim_date"],
		Elapsed:   time.Since(start),
	}

	logging.Info().
		Int64("fact_rows", summary.Sales.Loaded).
		Dur("elapsed", summary.Elapsed).
		Msg("ETL run complete")

	return summary, nil
}
