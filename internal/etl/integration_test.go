//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// End-to-end pipeline test.
// Run with: go test -tags=integration ./internal/etl/...
// Requires PostgreSQL to be available.
// Set RETAIL_ETL_TEST_CONN environment variable to override connection string.

package etl_test

import (
	"context"
	"testing"

	"github.com/retailops/retail-etl/internal/datagen"
	"github.com/retailops/retail-etl/internal/db"
	"github.com/retailops/retail-etl/internal/etl"
	"github.com/retailops/retail-etl/internal/extract"
	"github.com/retailops/retail-etl/internal/testutil"
	"github.com/retailops/retail-etl/internal/warehouse"
)

// TestPipelineIntegration runs the full pipeline against a disposable
// database: init, generate, run, verify, and a second run to confirm
// the reload is idempotent.
func TestPipelineIntegration(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)

	testConnStr := testutil.CreateTestDB(t, baseConnStr, "pipeline")
	dbName := testutil.GetDBNameFromConnStr(testConnStr)

	cleanup := testutil.NewTestCleanup(t, baseConnStr, dbName)
	t.Cleanup(cleanup.Cleanup)

	pool := testutil.ConnectTestDB(t, testConnStr)
	cleanup.SetPool(pool)

	ctx := context.Background()
	dataDir := t.TempDir()
	stagingDir := t.TempDir()

	t.Run("CreateSchema", func(t *testing.T) {
		if err := warehouse.CreateSchema(ctx, pool); err != nil {
			t.Fatalf("CreateSchema failed: %v", err)
		}
		if err := db.SaveSchemaMetadata(ctx, pool); err != nil {
			t.Fatalf("SaveSchemaMetadata failed: %v", err)
		}
	})

	t.Run("GenerateData", func(t *testing.T) {
		_, err := datagen.NewGenerator(1).Generate(datagen.Config{
			OutDir: dataDir,
			Rows:   100,
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
	})

	var firstRun *etl.Summary
	t.Run("FirstRun", func(t *testing.T) {
		summary, err := etl.Run(ctx, etl.Config{
			Pool:       pool,
			Source:     &extract.DirSource{Dir: dataDir},
			StagingDir: stagingDir,
			// Small batches so the chunked COPY path is exercised.
			BatchSize: 37,
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if summary.Sales.Loaded == 0 {
			t.Fatal("expected fact rows to be loaded")
		}
		if summary.Customers.Loaded != 100 {
			t.Fatalf("expected 100 customers loaded, got %d", summary.Customers.Loaded)
		}
		firstRun = summary
	})

	t.Run("Verify", func(t *testing.T) {
		results, err := warehouse.RunChecks(ctx, pool)
		if err != nil {
			t.Fatalf("RunChecks failed: %v", err)
		}
		for _, r := range results {
			if !r.OK() {
				t.Errorf("check %s failed with %d violations: %s",
					r.Name, r.Violations, r.Detail)
			}
		}
	})

	t.Run("SecondRunIsIdempotent", func(t *testing.T) {
		summary, err := etl.Run(ctx, etl.Config{
			Pool:       pool,
			Source:     &extract.DirSource{Dir: dataDir},
			StagingDir: stagingDir,
		})
		if err != nil {
			t.Fatalf("second Run failed: %v", err)
		}
		if summary.Sales.Loaded != firstRun.Sales.Loaded {
			t.Errorf("fact row count changed across reloads: %d then %d",
				firstRun.Sales.Loaded, summary.Sales.Loaded)
		}
		if summary.DateRows != firstRun.DateRows {
			t.Errorf("date dimension changed across reloads: %d then %d",
				firstRun.DateRows, summary.DateRows)
		}

		// Re-run the consistency checks after the reload.
		results, err := warehouse.RunChecks(ctx, pool)
		if err != nil {
			t.Fatalf("RunChecks failed: %v", err)
		}
		for _, r := range results {
			if !r.OK() {
				t.Errorf("check %s failed with %d violations: %s",
					r.Name, r.Violations, r.Detail)
			}
		}
	})
}
