package cmd

import (
	"github.com/spf13/cobra"
	"github.com/trackline/trackline/core"
	"github.com/trackline/trackline/internal/contract"
)

// seriesCmd computes weekly severity and status count series.
var seriesCmd = &cobra.Command{
	Use:   "series [project]",
	Short: "Show weekly severity and status counts for a project.",
	Long: `Replay sparse status histories into weekly snapshots and count issues
per severity and per status group at every checkpoint.

Each issue's recorded transitions are expanded into a timeline, then the
timeline is sampled on the extraction weekday, helping you:
- See how the open backlog grows or shrinks week over week
- Track closed counts by severity across a release cycle
- Spot status groups where issues pile up and stall
- Feed dashboards with evenly spaced data points

Counts follow the configured aggregation strategy (baseline, project,
classification), and every run can be persisted for trend tracking.

Examples:
  # Series for one project from the default SQLite tracker mirror
  trackline series PLAT

  # Series as of a past instant with two decimals
  trackline series PLAT --as-of 2024-03-08T12:00:00Z --precision 2

  # Segment counts by override class rules
  trackline series PLAT --strategy classification --override-file rules.yaml

  # Persist the run for later inspection with 'store runs'
  trackline series PLAT --store-backend sqlite

  # Export the series to CSV for spreadsheets
  trackline series PLAT --output csv --output-file series.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSeries(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run series analysis", err)
		}
	},
}
