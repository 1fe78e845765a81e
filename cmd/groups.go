package cmd

import (
	"github.com/spf13/cobra"
	"github.com/trackline/trackline/core"
	"github.com/trackline/trackline/internal/contract"
)

// groupsCmd describes the status taxonomy in effect.
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Describe the status groups for the selected source and issue type.",
	Long: `Print the status taxonomy that series and aging calculations use,
one line per group with the raw statuses it absorbs.

Handy for verifying what an override file actually changed before
running a full analysis.

Examples:
  # Default jira Defect taxonomy
  trackline groups

  # Taxonomy for another source and type
  trackline groups --source clearquest --issue-type Enhancement

  # Taxonomy with an override applied
  trackline groups --override-file rules.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGroups(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot describe groups", err)
		}
	},
}
