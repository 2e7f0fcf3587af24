package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	pttmcp "github.com/valter-silva-au/ptt-tracker/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the ptt MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ptt MCP server on stdio",
	Long: `Start the ptt MCP server on stdio transport.

The server exposes the tracker as MCP tools that AI assistants can call:
get_topic, list_topics, update_topic_status, get_metrics, get_summary,
get_insights, get_topic_history, get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TopicMgr == nil {
			return fmt.Errorf("topic manager not initialized")
		}
		if Insights == nil {
			return fmt.Errorf("insight engine not initialized")
		}

		srv := pttmcp.NewServer(TopicMgr, Insights, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
