package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/retailops/retail-etl/internal/db"
	"github.com/retailops/retail-etl/internal/etl"
	"github.com/retailops/retail-etl/internal/extract"
	"github.com/retailops/retail-etl/internal/logging"
)

var runStagingDir string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ETL pipeline against an initialized warehouse",
	Long: `Run one full ETL pass: extract the four CSV files from the data
directory, clean and enrich the rows, write staging snapshots, and
reload the warehouse. Dimension and fact tables are truncated and
rebuilt from the input files; the date dimension only ever grows.

The warehouse must have been initialized with the 'init' command.

Example:
  retail-etl run --data-dir ./data --connection "postgres://..."
  retail-etl run --data-dir s3://retail-exports/daily`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runStagingDir, "staging-dir", "",
		"local directory for staging CSV snapshots")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if runStagingDir != "" {
		cfg.ETL.StagingDir = runStagingDir
	}

	// Validate configuration
	if err := cfg.ValidateRun(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Check that the warehouse was initialized
	schemaVersion, err := db.GetMetadataValue(ctx, pool, "schema_version")
	if err != nil {
		return fmt.Errorf(
			"warehouse has not been initialized; run 'retail-etl init' first")
	}
	if schemaVersion != db.SchemaVersion {
		return fmt.Errorf(
			"warehouse schema version is '%s' but this build expects '%s'; "+
				"re-run 'retail-etl init --drop-existing'",
			schemaVersion, db.SchemaVersion)
	}

	source, err := extract.NewSource(ctx, cfg.ETL.DataDir)
	if err != nil {
		return err
	}

	logging.Info().
		Str("data_dir", cfg.ETL.DataDir).
		Str("staging_dir", cfg.ETL.StagingDir).
		Msg("Starting ETL run")

	// Handle shutdown signals
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	summary, err := etl.Run(ctx, etl.Config{
		Pool:       pool,
		Source:     source,
		StagingDir: cfg.ETL.StagingDir,
		BatchSize:  cfg.ETL.BatchSize,
	})
	if err != nil {
		return err
	}

	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, s *etl.Summary) {
	cmd.Println("ETL run complete")
	cmd.Println()
	cmd.Printf("  %-10s %9s %9s %9s\n", "entity", "extracted", "dropped", "loaded")
	printStep(cmd, "customers", s.Customers)
	printStep(cmd, "products", s.Products)
	printStep(cmd, "stores", s.Stores)
	printStep(cmd, "sales", s.Sales)
	cmd.Println()
	cmd.Printf("  date dimension rows: %d\n", s.DateRows)
	cmd.Printf("  elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
}

func printStep(cmd *cobra.Command, name string, c etl.StepCounts) {
	cmd.Printf("  %-10s %9d %9d %9d\n", name, c.Extracted, c.Dropped, c.Loaded)
}
