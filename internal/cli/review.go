package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/quorum/internal/hook"
	"github.com/dshills/quorum/internal/review"
)

var reviewStage string

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run one review cycle from hook input on stdin",
	Long: `Reads a hook event from stdin, dispatches it to the configured
reviewer agents, and writes the continuation decision to stdout.
Always exits 0: a broken review must never break the caller's flow.`,
	Run: func(cmd *cobra.Command, args []string) {
		runHook(os.Stdin, os.Stdout, func(ctx context.Context, c *components, in hook.Input) hook.Output {
			stage := reviewStage
			if stage == "" {
				stage = in.Stage
			}
			if stage == "" {
				stage = "code"
			}
			orch := review.New(c.cfg, c.agents, c.store, c.monitor, c.auditor, c.debater)
			return orch.Run(ctx, stage, in)
		})
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewStage, "stage", "", "review stage (plan, code, test, final); defaults to the stage in the hook input")
}

// runHook is the shared harness for hook-invoked commands. Whatever goes
// wrong, it writes a valid continuation decision to w and leaves the exit
// code at 0.
func runHook(r io.Reader, w io.Writer, fn func(context.Context, *components, hook.Input) hook.Output) {
	out := hook.Continue("")
	defer func() {
		if rec := recover(); rec != nil {
			out = hook.Continue("")
		}
		_ = hook.Write(w, out)
	}()

	in, err := hook.Read(r)
	if err != nil {
		return
	}

	c, err := buildComponents()
	if err != nil {
		return
	}

	out = fn(context.Background(), c, in)
}
