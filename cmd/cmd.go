// Package cmd defines the command-line interface for trackline.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trackline/trackline/internal/contract"
	"github.com/trackline/trackline/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(agingCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeRunsCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("source", string(schema.JiraSource), "Issue source: jira or clearquest")
	rootCmd.PersistentFlags().StringP("project", "p", "", "Project key to analyze (empty means every project in a snapshot file)")
	rootCmd.PersistentFlags().String("issue-type", schema.DefectType, "Issue type to analyze")
	rootCmd.PersistentFlags().String("strategy", string(schema.AggBaseline), "Aggregation strategy: baseline or project or classification")
	rootCmd.PersistentFlags().String("as-of", "", "Snapshot instant in ISO8601 (defaults to now)")
	rootCmd.PersistentFlags().String("extraction-day", contract.DefaultExtractionDay, "Weekday the tracker extracts snapshots on")
	rootCmd.PersistentFlags().String("override-file", "", "Path to a YAML override for statuses, priorities, and classes")
	rootCmd.PersistentFlags().Bool("skip-ages", false, "Skip age table computation")
	rootCmd.PersistentFlags().String("output", string(schema.TableOut), "Output format: table or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emoji markers in table output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("tracker-backend", string(schema.SQLiteBackend), "Issue tracker backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("tracker-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("tracker-file", "", "Path to a JSON issue snapshot (takes precedence over tracker-backend)")
	rootCmd.PersistentFlags().String("store-backend", "", "Run store backend: sqlite or mysql or postgresql or none (empty disables persistence)")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for the run store (must differ from tracker-db-connect)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultRunLimit, "Number of runs to display")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServeAddr, "HTTP listen address")
	serveCmd.Flags().String("refresh-cron", "", "Cron expression for background report refreshes (e.g. '0 6 * * MON')")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
