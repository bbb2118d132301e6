//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailops/retail-etl/internal/logging"
	"github.com/retailops/retail-etl/pkg/version"
)

const metadataTable = "etl_metadata"

// SchemaVersion identifies the warehouse schema layout. Bumped whenever
// the DDL changes incompatibly.
const SchemaVersion = "1"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS etl_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// SaveSchemaMetadata records that the warehouse schema has been created.
func SaveSchemaMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	metadata := map[string]string{
		"schema_version": SchemaVersion,
		"version":        version.Short(),
		"initialized_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := setValues(ctx, pool, metadata); err != nil {
		return err
	}

	logging.Debug().
		Str("schema_version", SchemaVersion).
		Msg("Saved schema metadata")

	return nil
}

// SaveRunMetadata records the outcome of an ETL run: the completion
// timestamp and the row count loaded into each warehouse table.
func SaveRunMetadata(ctx context.Context, pool *pgxpool.Pool, counts map[string]int64) error {
	metadata := map[string]string{
		"last_run_at": time.Now().UTC().Format(time.RFC3339),
	}
	for table, n := range counts {
		metadata["rows_"+table] = fmt.Sprintf("%d", n)
	}
	if err := setValues(ctx, pool, metadata); err != nil {
		return err
	}

	logging.Debug().
		Int("tables", len(counts)).
		Msg("Saved run metadata")

	return nil
}

func setValues(ctx context.Context, pool *pgxpool.Pool, values map[string]string) error {
	if _, err := pool.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	for key, value := range values {
		_, err := pool.Exec(ctx, `
            INSERT INTO etl_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}
	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, pool *pgxpool.Pool, key string) (string, error) {
	var value string
	err := pool.QueryRow(ctx, `
        SELECT value FROM etl_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	rows, err := pool.Query(ctx, `SELECT key, value FROM etl_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}
