package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retailops/retail-etl/internal/db"
	"github.com/retailops/retail-etl/internal/warehouse"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check warehouse consistency after a load",
	Long: `Verify the loaded warehouse: every fact row's total_amount must
match the discount formula, every fact row must resolve to existing
dimension rows, and table row counts must match the counts recorded
by the last run.

Exits with an error if any check finds violations.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if _, err := db.GetMetadataValue(ctx, pool, "schema_version"); err != nil {
		return fmt.Errorf(
			"warehouse has not been initialized; run 'retail-etl init' first")
	}

	results, err := warehouse.RunChecks(ctx, pool)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = fmt.Sprintf("FAILED (%d violations)", r.Violations)
			failed++
		}
		cmd.Printf("  %-24s %s\n", r.Name, status)
		if r.Detail != "" && !r.OK() {
			cmd.Printf("    %s\n", r.Detail)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	cmd.Printf("All %d checks passed\n", len(results))
	return nil
}
