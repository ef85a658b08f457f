package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	flagFormat  string
	flagConfig  string
	flagDB      string
	flagRoot    string
	flagExclude []string
	flagAllow   []string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "thicket",
	Short:         "Project-aware semantic safety for GameMaker Language",
	Long:          "Thicket scans a GML project into an identifier occupancy index and answers occupancy, rename-safety, and loop-hoist queries without ever calling an unsafe rewrite safe.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: thicket.yml at the project root)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "snapshot database path (default: .thicket/index.db under the project root)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "forced project root: files outside it get no context")
	rootCmd.PersistentFlags().StringSliceVar(&flagExclude, "exclude", nil, "extra excluded directory names (case-insensitive)")
	rootCmd.PersistentFlags().StringSliceVar(&flagAllow, "allow", nil, "absolute path prefixes that override exclusion")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(occupancyCmd)
	rootCmd.AddCommand(occurrencesCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(hoistCmd)
}

// resolveTargetPath returns the absolute path of the file or directory the
// command operates on: the positional arg at argIndex, or ".".
func resolveTargetPath(args []string, argIndex int) (string, error) {
	path := "."
	if len(args) > argIndex {
		path = args[argIndex]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("path not found: %s", abs)
	}
	return abs, nil
}
