package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/thicket"
)

var flagForce bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Scan the project and persist its identifier occupancy snapshot",
	Long:  "Walks the GameMaker project owning the given path (default: current directory), extracts every identifier-shaped token from .gml sources, and stores the frozen snapshot in the local database for warm starts.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "discard any existing snapshot before scanning")
}

func runIndex(cmd *cobra.Command, args []string) error {
	target, err := resolveTargetPath(args, 0)
	if err != nil {
		return err
	}

	projectRoot := findProjectRoot(dirOf(target))
	cfg, err := loadConfig(flagConfig, projectRoot)
	if err != nil {
		return err
	}
	cfg = mergeFlags(cfg)
	if cfg.Root != "" {
		projectRoot = cfg.Root
	}

	dbPath := resolveDBPath(cfg, projectRoot)
	if err := os.MkdirAll(dirOf(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dirOf(dbPath), err)
	}
	store, err := thicket.OpenSnapshotStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagForce {
		if err := store.DeleteSnapshot(projectRoot); err != nil {
			return fmt.Errorf("discarding snapshot: %w", err)
		}
	}
	prior, err := store.SnapshotChecksum(projectRoot)
	if err != nil {
		return fmt.Errorf("reading snapshot checksum: %w", err)
	}

	var builderOpts []thicket.IndexBuilderOption
	if len(cfg.ExcludedDirs) > 0 {
		builderOpts = append(builderOpts, thicket.WithIndexExcludedDirs(cfg.ExcludedDirs...))
	}
	if len(cfg.AllowedDirs) > 0 {
		builderOpts = append(builderOpts, thicket.WithIndexAllowedDirs(cfg.AllowedDirs...))
	}
	builder := thicket.NewIndexBuilder(builderOpts...)

	start := time.Now()
	idx, err := builder.Build(projectRoot)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", projectRoot, err)
	}
	if err := store.SaveSnapshot(idx); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Indexed %d files in %s\n", idx.FileCount(), time.Since(start).Round(time.Millisecond))

	return outputResult(flagFormat, CLIIndexStats{
		Root:        idx.Root(),
		Files:       idx.FileCount(),
		Identifiers: idx.NameCount(),
		Checksum:    idx.Checksum(),
		Changed:     prior != idx.Checksum(),
	})
}

func dirOf(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}
