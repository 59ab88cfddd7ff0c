package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/crossview/cmd/crossview/commands"
	"github.com/teranos/crossview/logger"
)

var rootCmd = &cobra.Command{
	Use:   "crossview",
	Short: "crossview - linked map, timeline and flow panels over transaction data",
	Long: `crossview - cross-panel linking and filter coordination.

Serves a dashboard's map, time and flow panels over WebSocket: hovering an
entity in one panel draws connector lines to the same entity in the others,
and drag-and-drop between panels builds highlights and filters.

Available commands:
  server  - Start the WebSocket server
  db      - Migrate and inspect the transaction database
  am      - Show configuration ("I am")
  version - Show version information

Examples:
  crossview server                 # Start on the configured port
  crossview server --port 9000     # Start on a specific port
  crossview db stats               # Show dataset statistics
  crossview am show --format yaml  # Show configuration as YAML`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 'am show' prints config to stdout and stays quiet
		if cmd.Name() == "show" {
			return nil
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if cmd.Name() == "server" && verbosity == 0 {
			verbosity = 1 // the server reports at Info by default
		}
		if err := logger.InitializeWithLevel(false, logger.VerbosityToLevel(verbosity)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
