package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trackline/trackline/core"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/internal/metricstore"
	"github.com/trackline/trackline/schema"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("output-file")

	// Initialize the run store with the loaded config
	if err := metricstore.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func storeMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeMigrateSetupWrapper wraps storeMigrateSetup to provide PreRunE for migrate command.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMigrateSetup()
}

// storeCmd focused on run store management.
//
// Note: Most store subcommands use minimal initialization (storeSetup) instead
// of the full sharedSetup used by analysis commands. This avoids profile and
// tracker validation for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage persisted metric runs and exports",
	Long: `Manage the run store that keeps every computed metrics run for trends.

When enabled, trackline records each run with its full series and age
rows, enabling longitudinal queries and data export for BI tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run store statistics
  runs    - List recently persisted runs
  export  - Export data to Parquet for analytics
  clear   - Remove all persisted runs
  migrate - Run database schema migrations

Examples:
  # Check run store status
  trackline store status --store-backend sqlite

  # Export for analysis in pandas/DuckDB
  trackline store export --store-backend sqlite --output-file metrics-data`,
}

// storeStatusCmd shows run store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run store statistics and connection details",
	Long: `Show detailed information about the run store.

Displays:
- Backend type and connection status
- Total number of persisted runs
- Current migration version and dirty flag

Use this to:
- Verify persistence is enabled and working
- Check database connection health
- Confirm the schema version after migrations

Examples:
  # Check run store status
  trackline store status --store-backend sqlite`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := metricstore.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		metricstore.PrintStoreStatus(status)
	},
}

// storeRunsCmd lists persisted runs. It uses the full shared setup because
// listing honors the regular output flags (format, precision, color).
var storeRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recently persisted metric runs",
	Long: `List persisted runs, newest first, with their key parameters.

Each line shows the run id, when it ran, what population it covered,
and how many issues and data points it produced. Run ids feed the
HTTP API and export tooling.

Examples:
  # Last 25 runs from the default SQLite store
  trackline store runs --store-backend sqlite

  # More rows, machine readable
  trackline store runs --store-backend sqlite -l 100 --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRuns(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot list runs", err)
		}
	},
}

// storeExportCmd exports run store data to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export persisted runs to Parquet for BI tools and analytics",
	Long: `Export all stored metric data to Parquet format for analytics tools.

Exports three datasets:
- Runs - metadata about each metrics execution
- Series - per-checkpoint severity and status counts
- Ages - average days per status group and severity

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output-file parameter (used as the prefix for the three files)

Examples:
  # Export all data
  trackline store export --store-backend sqlite --output-file metrics-data

  # Use with DuckDB for analysis
  trackline store export --store-backend sqlite --output-file data
  duckdb -c "SELECT * FROM read_parquet('data.runs.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := metricstore.ExecuteStoreExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export store data", err)
		}
	},
}

// storeClearCmd clears the run store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all persisted metric runs",
	Long: `Delete all stored runs with their series and age rows.

WARNING: This action cannot be undone. Consider exporting data first.

Use this when:
- Resetting trend tracking
- Database storage is full
- Testing persistence features

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the metric tables

Examples:
  # Export before clearing
  trackline store export --store-backend sqlite --output-file backup
  trackline store clear --store-backend sqlite

  # Clear a MySQL store (set connection string via env variable)
  TRACKLINE_STORE_BACKEND=mysql TRACKLINE_STORE_DB_CONNECT="..." trackline store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := metricstore.ClearStore(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Run store cleared successfully.")
	},
}

// storeMigrateCmd runs database migrations for the run store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

Migrations allow:
- Upgrading to new schema versions when trackline is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  trackline store migrate --store-backend sqlite

  # Migrate to specific version
  trackline store migrate --store-backend sqlite --target-version 2

  # Rollback to initial state
  trackline store migrate --store-backend sqlite --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := metricstore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
