package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/quorum/internal/completion"
	"github.com/dshills/quorum/internal/hook"
)

var completionCmd = &cobra.Command{
	Use:   "completion",
	Short: "Run the todo-completion review from hook input on stdin",
	Long: `Reads a TodoWrite hook event from stdin and, when the task list has
just transitioned to fully completed, runs the completion review.
Always exits 0.`,
	Run: func(cmd *cobra.Command, args []string) {
		runHook(os.Stdin, os.Stdout, func(ctx context.Context, c *components, in hook.Input) hook.Output {
			orch := completion.New(c.cfg, c.agents, c.store, c.monitor, c.auditor, c.debater)
			return orch.Run(ctx, in)
		})
	},
}
