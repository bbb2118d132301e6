//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailops/retail-etl/internal/db"
	"github.com/retailops/retail-etl/internal/logging"
)

// CheckResult is the outcome of one consistency check.
type CheckResult struct {
	Name       string
	Violations int64
	Detail     string
}

// OK reports whether the check passed.
func (r CheckResult) OK() bool {
	return r.Violations == 0
}

// RunChecks executes all warehouse consistency checks: the total_amount
// formula, dangling dimension keys, and row counts against the last run's
// metadata.
func RunChecks(ctx context.Context, pool *pgxpool.Pool) ([]CheckResult, error) {
	var results []CheckResult

	r, err := checkTotals(ctx, pool)
	if err != nil {
		return nil, err
	}
	results = append(results, r)

	danglers, err := checkDanglingKeys(ctx, pool)
	if err != nil {
		return nil, err
	}
	results = append(results, danglers...)

	counts, err := checkRowCounts(ctx, pool)
	if err != nil {
		return nil, err
	}
	results = append(results, counts...)

	for _, res := range results {
		ev := logging.Info()
		if !res.OK() {
			ev = logging.Error()
		}
		ev.Str("check", res.Name).
			Int64("violations", res.Violations).
			Str("detail", res.Detail).
			Msg("Consistency check")
	}

	return results, nil
}

// checkTotals verifies total_amount = round(quantity * unit_price *
// (1 - discount_pct/100), 2) for every fact row.
func checkTotals(ctx context.Context, pool *pgxpool.Pool) (CheckResult, error) {
	var violations int64
	err := pool.QueryRow(ctx, `
        SELECT count(*) FROM fact_sales
        WHERE total_amount <> round(quantity * unit_price * (1 - discount_pct / 100), 2)
    `).Scan(&violations)
	if err != nil {
		return CheckResult{}, fmt.Errorf("total_amount check failed: %w", err)
	}
	return CheckResult{
		Name:       "total_amount_formula",
		Violations: violations,
		Detail:     "fact rows where total_amount deviates from the discount formula",
	}, nil
}

// checkDanglingKeys probes each fact foreign key with a LEFT JOIN. The
// database constraints should make these impossible; the checks exist to
// prove it.
func checkDanglingKeys(ctx context.Context, pool *pgxpool.Pool) ([]CheckResult, error) {
	probes := []struct {
		name string
		sql  string
	}{
		{"fk_customer", `SELECT count(*) FROM fact_sales f
            LEFT JOIN dim_customer d ON d.customer_key = f.customer_key
            WHERE d.customer_key IS NULL`},
		{"fk_product", `SELECT count(*) FROM fact_sales f
            LEFT JOIN dim_product d ON d.product_key = f.product_key
            WHERE d.product_key IS NULL`},
		{"fk_store", `SELECT count(*) FROM fact_sales f
            LEFT JOIN dim_store d ON d.store_key = f.store_key
            WHERE d.store_key IS NULL`},
		{"fk_date", `SELECT count(*) FROM fact_sales f
            LEFT JOIN dim_date d ON d.date_key = f.date_key
            WHERE d.date_key IS NULL`},
	}

	results := make([]CheckResult, 0, len(probes))
	for _, p := range probes {
		var violations int64
		if err := pool.QueryRow(ctx, p.sql).Scan(&violations); err != nil {
			return nil, fmt.Errorf("%s check failed: %w", p.name, err)
		}
		results = append(results, CheckResult{
			Name:       p.name,
			Violations: violations,
			Detail:     "fact rows with no matching dimension row",
		})
	}
	return results, nil
}

// checkRowCounts compares live table counts with the counts the last run
// recorded in etl_metadata.
func checkRowCounts(ctx context.Context, pool *pgxpool.Pool) ([]CheckResult, error) {
	metadata, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to read run metadata: %w", err)
	}

	results := make([]CheckResult, 0, len(Tables))
	for _, table := range Tables {
		recorded, ok := metadata["rows_"+table]
		if !ok {
			results = append(results, CheckResult{
				Name:       "row_count_" + table,
				Violations: 1,
				Detail:     "no recorded row count; has a run completed?",
			})
			continue
		}
		want, err := strconv.ParseInt(recorded, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt row count metadata for %s: %w", table, err)
		}

		var got int64
		if err := pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&got); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}

		violations := got - want
		if violations < 0 {
			violations = -violations
		}
		results = append(results, CheckResult{
			Name:       "row_count_" + table,
			Violations: violations,
			Detail:     fmt.Sprintf("recorded %d, found %d", want, got),
		})
	}
	return results, nil
}
