package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes. Hook-invoked commands (review, completion) always exit 0:
// the host contract is "never hard-crash the caller's flow". Maintenance
// commands may report real failures.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "quorum",
	Short: "Multi-agent review consensus engine",
	Long:  "Quorum aggregates opinions from several automated code-review agents into one continuation decision for the host's hook protocol.",
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(quotaCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print quorum version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "quorum version %s\n", version)
	},
}
