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
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailops/retail-etl/internal/logging"
	"github.com/retailops/retail-etl/internal/transform"
)

// DefaultBatchSize is the COPY chunk size used when none is configured.
const DefaultBatchSize = 5000

// Loader performs the staged load: each table gets an UNLOGGED staging
// table filled via COPY in batchSize chunks, then an INSERT ... SELECT
// into the warehouse table where the sequence assigns the surrogate key.
type Loader struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewLoader creates a Loader on the given pool. A batchSize below 1
// falls back to DefaultBatchSize.
func NewLoader(pool *pgxpool.Pool, batchSize int) *Loader {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Loader{pool: pool, batchSize: batchSize}
}

// LoadAll truncates the reloadable tables and loads the full run:
// dimensions first, then the fact table with resolved surrogate keys.
// It returns the number of rows loaded per warehouse table.
func (l *Loader) LoadAll(
	ctx context.Context,
	customers []transform.Customer,
	products []transform.Product,
	stores []transform.Store,
	dates []transform.DateRow,
	sales []transform.Sale,
) (map[string]int64, error) {
	if err := TruncateForReload(ctx, l.pool); err != nil {
		return nil, fmt.Errorf("failed to truncate warehouse tables: %w", err)
	}
	logging.Info().Msg("Truncated warehouse tables for full reload")

	counts := make(map[string]int64, len(Tables))

	n, err := l.loadDimCustomer(ctx, customers)
	if err != nil {
		return nil, fmt.Errorf("failed to load dim_customer: %w", err)
	}
	counts["dim_customer"] = n

	n, err = l.loadDimProduct(ctx, products)
	if err != nil {
		return nil, fmt.Errorf("failed to load dim_product: %w", err)
	}
	counts["dim_product"] = n

	n, err = l.loadDimStore(ctx, stores)
	if err != nil {
		return nil, fmt.Errorf("failed to load dim_store: %w", err)
	}
	counts["dim_store"] = n

	if _, err = l.loadDimDate(ctx, dates); err != nil {
		return nil, fmt.Errorf("failed to load dim_date: %w", err)
	}
	// dim_date is upserted, so the insert tag only counts new dates.
	// Record the full table count instead.
	if err := l.pool.QueryRow(ctx, "SELECT count(*) FROM dim_date").Scan(&n); err != nil {
		return nil, fmt.Errorf("failed to count dim_date: %w", err)
	}
	counts["dim_date"] = n

	n, err = l.loadFactSales(ctx, sales)
	if err != nil {
		return nil, fmt.Errorf("failed to load fact_sales: %w", err)
	}
	counts["fact_sales"] = n

	return counts, nil
}

func (l *Loader) loadDimCustomer(ctx context.Context, rows []transform.Customer) (int64, error) {
	data := make([][]any, len(rows))
	for i, c := range rows {
		data[i] = []any{c.CustomerID, c.FirstName, c.LastName, c.Gender, c.Age,
			c.City, c.State, c.MembershipLevel}
	}
	return l.stageAndInsert(ctx, stagedLoad{
		target:   "dim_customer",
		staging:  "stg_customer",
		createStaging: `CREATE UNLOGGED TABLE stg_customer (
            customer_id BIGINT, first_name TEXT, last_name TEXT, gender TEXT,
            age INTEGER, city TEXT, state TEXT, membership_level TEXT)`,
		columns: []string{"customer_id", "first_name", "last_name", "gender",
			"age", "city", "state", "membership_level"},
		insert: `INSERT INTO dim_customer
            (customer_id, first_name, last_name, gender, age, city, state, membership_level)
            SELECT customer_id, first_name, last_name, gender, age, city, state, membership_level
            FROM stg_customer`,
		rows: data,
	})
}

func (l *Loader) loadDimProduct(ctx context.Context, rows []transform.Product) (int64, error) {
	data := make([][]any, len(rows))
	for i, p := range rows {
		data[i] = []any{p.ProductID, p.ProductName, p.Category, p.SubCategory,
			p.Brand, p.Price, p.Cost, p.Color, p.SizeLabel}
	}
	return l.stageAndInsert(ctx, stagedLoad{
		target:  "dim_product",
		staging: "stg_product",
		createStaging: `CREATE UNLOGGED TABLE stg_product (
            product_id BIGINT, product_name TEXT, category TEXT, sub_category TEXT,
            brand TEXT, price NUMERIC(12,2), cost NUMERIC(12,2), color TEXT, size_label TEXT)`,
		columns: []string{"product_id", "product_name", "category", "sub_category",
			"brand", "price", "cost", "color", "size_label"},
		insert: `INSERT INTO dim_product
            (product_id, product_name, category, sub_category, brand, price, cost, color, size_label)
            SELECT product_id, product_name, category, sub_category, brand, price, cost, color, size_label
            FROM stg_product`,
		rows: data,
	})
}

func (l *Loader) loadDimStore(ctx context.Context, rows []transform.Store) (int64, error) {
	data := make([][]any, len(rows))
	for i, s := range rows {
		data[i] = []any{s.StoreID, s.StoreName, s.City, s.State, s.Region, s.StoreType}
	}
	return l.stageAndInsert(ctx, stagedLoad{
		target:  "dim_store",
		staging: "stg_store",
		createStaging: `CREATE UNLOGGED TABLE stg_store (
            store_id BIGINT, store_name TEXT, city TEXT, state TEXT,
            region TEXT, store_type TEXT)`,
		columns: []string{"store_id", "store_name", "city", "state", "region", "store_type"},
		insert: `INSERT INTO dim_store
            (store_id, store_name, city, state, region, store_type)
            SELECT store_id, store_name, city, state, region, store_type
            FROM stg_store`,
		rows: data,
	})
}

// loadDimDate upserts: date keys are deterministic and survive re-runs,
// so only missing dates are inserted.
func (l *Loader) loadDimDate(ctx context.Context, rows []transform.DateRow) (int64, error) {
	data := make([][]any, len(rows))
	for i, d := range rows {
		data[i] = []any{d.DateKey, d.CalendarDate, d.Day, d.Month, d.Year, d.Quarter, d.Weekday}
	}
	return l.stageAndInsert(ctx, stagedLoad{
		target:  "dim_date",
		staging: "stg_date",
		createStaging: `CREATE UNLOGGED TABLE stg_date (
            date_key INTEGER, calendar_date DATE, day INTEGER, month INTEGER,
            year INTEGER, quarter INTEGER, weekday INTEGER)`,
		columns: []string{"date_key", "calendar_date", "day", "month", "year", "quarter", "weekday"},
		insert: `INSERT INTO dim_date
            (date_key, calendar_date, day, month, year, quarter, weekday)
            SELECT date_key, calendar_date, day, month, year, quarter, weekday
            FROM stg_date
            ON CONFLICT (date_key) DO NOTHING`,
		rows: data,
	})
}

func (l *Loader) loadFactSales(ctx context.Context, sales []transform.Sale) (int64, error) {
	customerKeys, err := l.dimensionKeys(ctx, "dim_customer", "customer_id", "customer_key")
	if err != nil {
		return 0, err
	}
	productKeys, err := l.dimensionKeys(ctx, "dim_product", "product_id", "product_key")
	if err != nil {
		return 0, err
	}
	storeKeys, err := l.dimensionKeys(ctx, "dim_store", "store_id", "store_key")
	if err != nil {
		return 0, err
	}
	dateKeys, err := l.dateKeys(ctx)
	if err != nil {
		return 0, err
	}

	data, err := resolveFactRows(sales, customerKeys, productKeys, storeKeys, dateKeys)
	if err != nil {
		return 0, err
	}

	return l.stageAndInsert(ctx, stagedLoad{
		target:  "fact_sales",
		staging: "stg_sales",
		createStaging: `CREATE UNLOGGED TABLE stg_sales (
            sales_id BIGINT, customer_key INTEGER, product_key INTEGER,
            store_key INTEGER, date_key INTEGER, quantity INTEGER,
            unit_price NUMERIC(12,2), discount_pct NUMERIC(5,2),
            total_amount NUMERIC(14,2), revenue NUMERIC(14,2), profit NUMERIC(14,2))`,
		columns: []string{"sales_id", "customer_key", "product_key", "store_key",
			"date_key", "quantity", "unit_price", "discount_pct",
			"total_amount", "revenue", "profit"},
		insert: `INSERT INTO fact_sales
            (sales_id, customer_key, product_key, store_key, date_key, quantity,
             unit_price, discount_pct, total_amount, revenue, profit)
            SELECT sales_id, customer_key, product_key, store_key, date_key, quantity,
                   unit_price, discount_pct, total_amount, revenue, profit
            FROM stg_sales`,
		rows: data,
	})
}

// stagedLoad describes one staging-table load step.
type stagedLoad struct {
	target        string
	staging       string
	createStaging string
	columns       []string
	insert        string
	rows          [][]any
}

func (l *Loader) stageAndInsert(ctx context.Context, load stagedLoad) (int64, error) {
	start := time.Now()

	if _, err := l.pool.Exec(ctx, "DROP TABLE IF EXISTS "+load.staging); err != nil {
		return 0, fmt.Errorf("failed to drop stale staging table %s: %w", load.staging, err)
	}
	if _, err := l.pool.Exec(ctx, load.createStaging); err != nil {
		return 0, fmt.Errorf("failed to create staging table %s: %w", load.staging, err)
	}

	var copied int64
	for low := 0; low < len(load.rows); low += l.batchSize {
		high := min(low+l.batchSize, len(load.rows))
		n, err := l.pool.CopyFrom(ctx, pgx.Identifier{load.staging}, load.columns,
			pgx.CopyFromRows(load.rows[low:high]))
		if err != nil {
			return 0, fmt.Errorf("failed to copy into %s: %w", load.staging, err)
		}
		copied += n
		logging.Debug().
			Str("table", load.staging).
			Int64("staged", copied).
			Int("total", len(load.rows)).
			Msg("Copied batch")
	}

	tag, err := l.pool.Exec(ctx, load.insert)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", load.target, err)
	}

	if _, err := l.pool.Exec(ctx, "DROP TABLE "+load.staging); err != nil {
		return 0, fmt.Errorf("failed to drop staging table %s: %w", load.staging, err)
	}

	logging.Info().
		Str("table", load.target).
		Int64("staged", copied).
		Int64("inserted", tag.RowsAffected()).
		Dur("elapsed", time.Since(start)).
		Msg("Loaded warehouse table")

	return tag.RowsAffected(), nil
}

// dimensionKeys fetches the natural-key to surrogate-key mapping for a
// loaded dimension table.
func (l *Loader) dimensionKeys(ctx context.Context, table, naturalCol, keyCol string) (map[int64]int32, error) {
	rows, err := l.pool.Query(ctx,
		fmt.Sprintf("SELECT %s, %s FROM %s", naturalCol, keyCol, table))
	if err != nil {
		return nil, fmt.Errorf("failed to read keys from %s: %w", table, err)
	}
	defer rows.Close()

	keys := make(map[int64]int32)
	for rows.Next() {
		var natural int64
		var key int32
		if err := rows.Scan(&natural, &key); err != nil {
			return nil, fmt.Errorf("failed to scan keys from %s: %w", table, err)
		}
		keys[natural] = key
	}
	return keys, rows.Err()
}

// dateKeys fetches the set of loaded date keys.
func (l *Loader) dateKeys(ctx context.Context) (map[int]struct{}, error) {
	rows, err := l.pool.Query(ctx, "SELECT date_key FROM dim_date")
	if err != nil {
		return nil, fmt.Errorf("failed to read keys from dim_date: %w", err)
	}
	defer rows.Close()

	keys := make(map[int]struct{})
	for rows.Next() {
		var key int
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan keys from dim_date: %w", err)
		}
		keys[key] = struct{}{}
	}
	return keys, rows.Err()
}
