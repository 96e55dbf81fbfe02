package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Inspect agent quota health",
}

var quotaStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print today's per-agent quota health as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := buildComponents()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c.monitor.Summary()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
	},
}

var quotaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard today's quota records for all agents",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := buildComponents()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}

		if err := c.monitor.Reset(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}

		fmt.Fprintln(os.Stdout, "Quota records reset")
	},
}

func init() {
	quotaCmd.AddCommand(quotaStatusCmd)
	quotaCmd.AddCommand(quotaResetCmd)
}
