package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/thicket"
)

var flagTaken []string

var hoistCmd = &cobra.Command{
	Use:   "hoist <preferred> [path]",
	Short: "Pick a free loop-hoist variable name",
	Long:  "Resolves a hoisted-variable name that does not collide with the names passed via --taken: the preferred name if free, else preferred_1, preferred_2, and so on up to a fixed bound. Exhausting the bound is reported, not invented around.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runHoist,
}

func init() {
	hoistCmd.Flags().StringSliceVar(&flagTaken, "taken", nil, "local names the hoisted variable must not collide with")
}

func runHoist(cmd *cobra.Command, args []string) error {
	ctx, target, cleanup, err := contextFor(args, 1)
	if err != nil {
		return err
	}
	defer cleanup()
	if ctx == nil || !ctx.Has(thicket.CapLoopHoist) {
		return reportNoContext(target)
	}

	preferred := args[0]
	resolved, ok := ctx.ResolveLoopHoistIdentifier(preferred, flagTaken)
	return outputResult(flagFormat, CLIHoist{
		Preferred: preferred,
		Resolved:  resolved,
		Exhausted: !ok,
	})
}
