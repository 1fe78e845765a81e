package cmd

import (
	"github.com/spf13/cobra"
	"github.com/trackline/trackline/internal/webapi"
)

// serveCmd runs the HTTP API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trackline HTTP API server.",
	Long: `Serve issue metrics over HTTP for dashboards and automation.

Endpoints cover projects, groups, per-project metrics, and persisted
runs. A POST to the refresh endpoint recomputes the configured report,
and --refresh-cron schedules the same refresh in the background.

The server shares the CLI configuration, so the same flags, env
variables, and .trackline.yaml select the tracker and run store.

Examples:
  # Serve on the default address
  trackline serve

  # Serve with persistence and a Monday 06:00 refresh
  trackline serve --store-backend sqlite --refresh-cron "0 6 * * MON"

  # Serve on another port
  trackline serve --addr :9090`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return webapi.StartServer(rootCtx, cfg)
	},
}
