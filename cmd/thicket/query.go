package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/thicket"
)

var occupancyCmd = &cobra.Command{
	Use:   "occupancy <name> [path]",
	Short: "Report whether a name is occupied anywhere in the project",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runOccupancy,
}

var occurrencesCmd = &cobra.Command{
	Use:   "occurrences <name> [path]",
	Short: "List the files where a name occurs",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runOccurrences,
}

// contextFor resolves the project context owning the path argument at
// argIndex. A nil context with a nil error means the path is outside any
// project: commands report the degraded outcome instead of failing.
func contextFor(args []string, argIndex int) (*thicket.Context, string, func(), error) {
	target, err := resolveTargetPath(args, argIndex)
	if err != nil {
		return nil, "", nil, err
	}

	projectRoot := findProjectRoot(dirOf(target))
	cfg, err := loadConfig(flagConfig, projectRoot)
	if err != nil {
		return nil, "", nil, err
	}
	cfg = mergeFlags(cfg)

	reg, cleanup, err := newRegistry(cfg, resolveDBPath(cfg, projectRoot))
	if err != nil {
		return nil, "", nil, err
	}
	ctx, err := reg.Context(target)
	if err != nil {
		cleanup()
		return nil, "", nil, err
	}
	return ctx, target, cleanup, nil
}

// reportNoContext emits the degraded outcome for a path with no owning
// project or a missing capability. The run is not an error.
func reportNoContext(path string) error {
	return outputResult(flagFormat, CLINoContext{
		Path:   path,
		Reason: thicket.ReasonMissingProjectContext.String(),
	})
}

func runOccupancy(cmd *cobra.Command, args []string) error {
	ctx, target, cleanup, err := contextFor(args, 1)
	if err != nil {
		return err
	}
	defer cleanup()
	if ctx == nil || !ctx.Has(thicket.CapOccupancy) {
		return reportNoContext(target)
	}

	name := args[0]
	return outputResult(flagFormat, CLIOccupancy{
		Name:     name,
		Occupied: ctx.IsNameOccupied(name),
	})
}

func runOccurrences(cmd *cobra.Command, args []string) error {
	ctx, target, cleanup, err := contextFor(args, 1)
	if err != nil {
		return err
	}
	defer cleanup()
	if ctx == nil || !ctx.Has(thicket.CapOccurrences) {
		return reportNoContext(target)
	}

	name := args[0]
	return outputResult(flagFormat, CLIOccurrences{
		Name:  name,
		Files: ctx.OccurrenceFiles(name),
	})
}
