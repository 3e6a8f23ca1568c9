// Package cli wires the refdesk commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"refdesk/internal/version"
)

// Global flags
var (
	configPath string
	baseURL    string
	tokenFlag  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "refdesk [resource]",
	Short: "Reference data console",
	Long: `refdesk edits reference data (recommended questions, app schemes) through
the backend API. Every change is filed as an approval request.

Without a subcommand it starts the interactive console.`,
	Version: version.Full(),
	Example: `  # Start the console against a local backend
  refdesk --base-url http://localhost:8080

  # Show the pending approval queue
  refdesk queue recommended-questions

  # Approve two requests
  refdesk approve recommended-questions 41 42`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runConsole,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Access token (overrides the stored token)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "refdesk %s\n", version.Full())
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
