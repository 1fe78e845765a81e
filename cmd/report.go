package cmd

import (
	"github.com/spf13/cobra"
	"github.com/trackline/trackline/core"
	"github.com/trackline/trackline/internal/contract"
)

// reportCmd runs the multi-project report with group rollups.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full report across project groups with age rollups.",
	Long: `Compute metrics for every project and issue type in the configured
groups, then roll up age tables per group and overall.

Groups come from the config file when present, otherwise from the issue
source itself. Every non-empty population gets its own run, and when a
run store is enabled each run is persisted individually. Use it to:
- Produce the weekly metrics drop for a whole organization
- Compare age profiles across teams and issue types
- Seed the run store with one command instead of many

Populations whose data fails validation are skipped with a warning so a
single ragged history cannot sink the whole report.

Examples:
  # Report over groups from .trackline.yaml
  trackline report

  # Report over groups derived from the tracker, persisting runs
  trackline report --store-backend sqlite

  # Summary as JSON for automation
  trackline report --output json --output-file report.json

  # Counts only, skip the age rollups
  trackline report --skip-ages`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run report", err)
		}
	},
}
