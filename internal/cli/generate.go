package cli

import (
	"github.com/spf13/cobra"

	"github.com/retailops/retail-etl/internal/datagen"
	"github.com/retailops/retail-etl/internal/logging"
)

var (
	generateRows int
	generateSeed uint64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic input CSV files",
	Long: `Generate the four input CSV files (customers, products, stores,
sales) with synthetic retail data, written to the data directory.
Useful for trying out the pipeline without real exports.

The --rows flag sets the customer and product counts; store and sales
counts are derived from it. A fixed --seed makes output reproducible.

Example:
  retail-etl generate --data-dir ./data --rows 10000 --seed 42`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateRows, "rows", 0,
		"base row count for customers and products")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0,
		"random seed for reproducible output (0 = random)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if generateRows > 0 {
		cfg.Generate.Rows = generateRows
	}
	if generateSeed != 0 {
		cfg.Generate.Seed = generateSeed
	}

	// Validate configuration
	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}

	logging.Info().
		Str("out_dir", cfg.ETL.DataDir).
		Int("rows", cfg.Generate.Rows).
		Msg("Generating synthetic data")

	report, err := datagen.NewGenerator(cfg.Generate.Seed).Generate(datagen.Config{
		OutDir: cfg.ETL.DataDir,
		Rows:   cfg.Generate.Rows,
	})
	if err != nil {
		return err
	}

	cmd.Println("Generated:")
	cmd.Printf("  customers: %d\n", report.Customers)
	cmd.Printf("  products:  %d\n", report.Products)
	cmd.Printf("  stores:    %d\n", report.Stores)
	cmd.Printf("  sales:     %d\n", report.Sales)
	return nil
}
