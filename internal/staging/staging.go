//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package staging writes the cleaned, transformed rows to staging CSV
// snapshots before they are loaded. The snapshots exist for manual
// inspection and replay; the loader does not read them back.
package staging

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"github.com/retailops/retail-etl/internal/logging"
	"github.com/retailops/retail-etl/internal/transform"
)

// Snapshot file names, one per warehouse table.
const (
	CustomerFile = "stg_customer.csv"
	ProductFile  = "stg_product.csv"
	StoreFile    = "stg_store.csv"
	DateFile     = "stg_date.csv"
	SalesFile    = "stg_sales.csv"
)

// WriteSnapshots writes all staging CSVs into dir, creating it if needed.
func WriteSnapshots(
	dir string,
	customers []transform.Customer,
	products []transform.Product,
	stores []transform.Store,
	dates []transform.DateRow,
	sales []transform.Sale,
) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory %s: %w", dir, err)
	}

	if err := writeFile(filepath.Join(dir, CustomerFile), customers); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, ProductFile), products); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, StoreFile), stores); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, DateFile), dates); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, SalesFile), sales)
}

func writeFile[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create staging file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	if len(rows) == 0 {
		// Still emit the header so empty snapshots stay parseable.
		var zero T
		if err := enc.EncodeHeader(zero); err != nil {
			return fmt.Errorf("failed to encode staging header in %s: %w", path, err)
		}
	}
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return fmt.Errorf("failed to encode staging row in %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write staging file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close staging file %s: %w", path, err)
	}

	logging.Info().
		Str("file", path).
		Int("rows", len(rows)).
		Msg("Wrote staging snapshot")

	return nil
}
