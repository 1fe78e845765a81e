package cmd

import (
	"github.com/spf13/cobra"
	"github.com/trackline/trackline/core"
	"github.com/trackline/trackline/internal/contract"
)

// agingCmd computes duration-weighted age averages.
var agingCmd = &cobra.Command{
	Use:   "aging [project]",
	Short: "Show average days spent per status group and severity.",
	Long: `Measure how long issues actually sit in each status group, averaged
per severity.

Consecutive stays in the same group are merged before averaging, so an
issue that bounces between two development statuses counts as one stay.
The overall row measures full lifetime: creation to last transition for
closed issues, creation to now for open ones. Use it to:
- Find the status groups where issues spend the most days
- Compare turnaround time across severities
- Watch lifetime averages drift release over release

Examples:
  # Age table for one project
  trackline aging PLAT

  # Ages as seen at the end of a quarter
  trackline aging PLAT --as-of 2024-03-29T00:00:00Z

  # Export ages to JSON for downstream tooling
  trackline aging PLAT --output json --output-file ages.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAging(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run aging analysis", err)
		}
	},
}
