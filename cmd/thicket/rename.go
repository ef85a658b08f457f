package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/thicket"
)

var renameCmd = &cobra.Command{
	Use:   "rename <identifier> <preferred> [path]",
	Short: "Check whether a suggested rename is safe against the project",
	Long:  "Classifies the rename of identifier to preferred against the project owning the given path: a case-insensitive no-op or a collision with any occupied name is unsafe, everything else is safe. Multiple identifier/preferred pairs may be given; the optional path is the last odd argument.",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 {
			return fmt.Errorf("requires an identifier and a preferred name")
		}
		return nil
	},
	RunE: runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	pairs := args
	pathIndex := len(args)
	if len(args)%2 == 1 {
		pairs = args[:len(args)-1]
		pathIndex = len(args) - 1
	}

	ctx, target, cleanup, err := contextFor(args, pathIndex)
	if err != nil {
		return err
	}
	defer cleanup()
	if ctx == nil || !ctx.Has(thicket.CapRenamePlanning) {
		return reportNoContext(target)
	}

	reqs := make([]thicket.RenameRequest, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		reqs = append(reqs, thicket.RenameRequest{
			Identifier: pairs[i],
			Preferred:  pairs[i+1],
		})
	}

	plans := ctx.PlanFeatherRenames(reqs)
	out := make([]CLIRenamePlan, len(plans))
	for i, p := range plans {
		out[i] = CLIRenamePlan{
			Identifier: p.Identifier,
			Preferred:  p.Preferred,
			Safe:       p.Safe,
			Reason:     p.Reason.String(),
		}
	}
	return outputResult(flagFormat, out)
}
