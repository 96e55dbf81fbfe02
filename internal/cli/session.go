package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage per-session state",
}

var sessionCleanupCmd = &cobra.Command{
	Use:   "cleanup <session-id>",
	Short: "Remove all stored state for a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := buildComponents()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}

		if err := c.store.Cleanup(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}

		fmt.Fprintf(os.Stdout, "Cleaned up state for session %s\n", args[0])
	},
}

func init() {
	sessionCmd.AddCommand(sessionCleanupCmd)
}
