package cmd

import (
	"github.com/spf13/cobra"
	"github.com/trackline/trackline/core"
	"github.com/trackline/trackline/internal/contract"
)

// checkCmd audits raw tracker data for quality problems.
var checkCmd = &cobra.Command{
	Use:   "check [project]",
	Short: "Audit tracker data for unmapped statuses and missing fields.",
	Long: `Scan raw issues for data problems that would distort the metrics,
without computing any series.

Reports:
- Statuses that no status group absorbs
- Issues missing a priority when the profile expects one
- Histories with mismatched transition arrays

Exits non-zero when anything is flagged, so it can gate imports in CI.
Run it after extending a workflow or importing a snapshot so a new
status does not silently vanish from the counts.

Examples:
  # Audit one project
  trackline check PLAT

  # Audit a snapshot file before using it
  trackline check --tracker-file issues.json

  # Audit against an override taxonomy
  trackline check PLAT --override-file rules.yaml`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg); err != nil {
			contract.LogFatal("Data check failed", err)
		}
	},
}
