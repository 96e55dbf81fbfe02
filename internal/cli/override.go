package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var overrideCount int

var overrideCmd = &cobra.Command{
	Use:   "override <session-id>",
	Short: "Skip the next N reviews for a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if overrideCount < 1 {
			fmt.Fprintln(os.Stderr, "Error: --count must be at least 1")
			exitCode = ExitUsageError
			return
		}

		c, err := buildComponents()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}

		if err := c.store.SetOverride(args[0], overrideCount); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}

		fmt.Fprintf(os.Stdout, "Override set: next %d review(s) will be skipped for session %s\n", overrideCount, args[0])
	},
}

func init() {
	overrideCmd.Flags().IntVar(&overrideCount, "count", 1, "number of reviews to skip")
}
