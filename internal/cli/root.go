package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "ptt",
	Short: "PTT Risk Tracker - analytics for Priority Technical Topics",
	Long: `PTT Risk Tracker (ptt) tracks Priority Technical Topics: engineering risks
scored as consequence x likelihood, each with an append-only change history.

It reconstructs historical exposure from that history and derives the
dashboard analytics: exposure waterfall, status entropy, effort/risk Pareto
frontier, Bayesian delivery confidence and weekly stability. Results are
available as CLI reports, a terminal dashboard, a Prometheus exporter and an
MCP server.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ptt %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
