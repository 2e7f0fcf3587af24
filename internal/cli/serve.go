package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the risk analytics as Prometheus metrics",
	Long: `Serve GET /metrics in the Prometheus exposition format. Every scrape
rebuilds the analytics from the current topics, so the gauges always match
'ptt metrics'.

The listen address defaults to exporter.addr in .pttconfig.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Exporter == nil {
			return fmt.Errorf("metrics exporter not initialized")
		}

		addr := serveAddr
		if addr == "" {
			addr = ExporterAddr
		}
		if addr == "" {
			return fmt.Errorf("no listen address: pass --addr or set exporter.addr")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("Serving metrics on %s/metrics (Ctrl+C to stop)\n", addr)
		if err := Exporter.Serve(ctx, addr); err != nil {
			return fmt.Errorf("serving metrics: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides exporter.addr)")
	rootCmd.AddCommand(serveCmd)
}
