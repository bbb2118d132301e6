//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for retail-etl.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for retail-etl.
type Config struct {
	// Connection is the PostgreSQL connection string for the warehouse.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFile, when set, records every step's success or failure to
	// the named file in addition to the console.
	LogFile string `mapstructure:"log_file"`

	// ETL holds configuration for the run subcommand.
	ETL ETLConfig `mapstructure:"etl"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// ETLConfig holds configuration for an ETL run.
type ETLConfig struct {
	// DataDir is where the input CSV files live. It is either a local
	// directory or an s3://bucket/prefix URL.
	DataDir string `mapstructure:"data_dir"`

	// StagingDir is the local directory for staging CSV snapshots.
	StagingDir string `mapstructure:"staging_dir"`

	// BatchSize is the number of rows per COPY chunk during bulk loads.
	BatchSize int `mapstructure:"batch_size"`
}

// InitConfig holds configuration for schema initialization.
type InitConfig struct {
	// DropExisting drops the existing warehouse schema before
	// initialization.
	DropExisting bool `mapstructure:"drop_existing"`
}

// GenerateConfig holds configuration for synthetic CSV generation.
type GenerateConfig struct {
	// Rows is the base row count for the customer and product files.
	// Store and sales counts are derived from it.
	Rows int `mapstructure:"rows"`

	// Seed makes generation reproducible when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		ETL: ETLConfig{
			DataDir:    "./data",
			StagingDir: "./staging",
			BatchSize:  5000,
		},
		Init: InitConfig{
			DropExisting: false,
		},
		Generate: GenerateConfig{
			Rows: 50000,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./retail-etl.yaml
// 3. ~/.config/retail-etl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("retail-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "retail-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateRun checks configuration required for the run command.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ETL.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.ETL.StagingDir == "" {
		return fmt.Errorf("staging_dir is required")
	}
	if c.ETL.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	return nil
}

// ValidateInit checks configuration required for the init command.
func (c *Config) ValidateInit() error {
	return c.Validate()
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if c.ETL.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if strings.HasPrefix(c.ETL.DataDir, "s3://") {
		return fmt.Errorf("generate writes to a local directory, not S3")
	}
	if c.Generate.Rows < 1 {
		return fmt.Errorf("rows must be at least 1")
	}
	return nil
}
