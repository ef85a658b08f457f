package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jward/thicket"
	"github.com/jward/thicket/internal/gml"
)

// configFileName is looked up at the project root when --config is not set.
const configFileName = "thicket.yml"

// config is the optional per-project policy file. Flags override it.
type config struct {
	Root         string   `yaml:"root"`
	ExcludedDirs []string `yaml:"excluded_dirs"`
	AllowedDirs  []string `yaml:"allowed_dirs"`
	DB           string   `yaml:"db"`
}

// loadConfig reads the explicit --config file, or searchDir/thicket.yml if
// present. A missing default file yields a zero config, not an error.
func loadConfig(explicit, searchDir string) (config, error) {
	path := explicit
	if path == "" {
		path = filepath.Join(searchDir, configFileName)
		if _, err := os.Stat(path); err != nil {
			return config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// mergeFlags lays the command-line flags over the config file values.
func mergeFlags(cfg config) config {
	if flagRoot != "" {
		cfg.Root = flagRoot
	}
	if flagDB != "" {
		cfg.DB = flagDB
	}
	cfg.ExcludedDirs = append(cfg.ExcludedDirs, flagExclude...)
	cfg.AllowedDirs = append(cfg.AllowedDirs, flagAllow...)
	return cfg
}

// findProjectRoot walks up from startDir looking for a GameMaker project
// marker (*.yyp manifest or .git directory). Returns startDir if none is
// found.
func findProjectRoot(startDir string) string {
	if root, ok := gml.FindProjectRoot(startDir); ok {
		return root
	}
	return startDir
}

// resolveDBPath returns the snapshot database path from config or the
// default under the project root.
func resolveDBPath(cfg config, projectRoot string) string {
	if cfg.DB != "" {
		if filepath.IsAbs(cfg.DB) {
			return cfg.DB
		}
		return filepath.Join(projectRoot, cfg.DB)
	}
	return filepath.Join(projectRoot, ".thicket", "index.db")
}

// newRegistry builds a Registry from the merged policy, attaching the
// snapshot store at dbPath. The returned cleanup closes the store.
func newRegistry(cfg config, dbPath string) (*thicket.Registry, func(), error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	store, err := thicket.OpenSnapshotStore(dbPath)
	if err != nil {
		return nil, nil, err
	}

	opts := []thicket.Option{thicket.WithSnapshotStore(store)}
	if cfg.Root != "" {
		opts = append(opts, thicket.WithForcedRoot(cfg.Root))
	}
	if len(cfg.ExcludedDirs) > 0 {
		opts = append(opts, thicket.WithExcludedDirs(cfg.ExcludedDirs...))
	}
	if len(cfg.AllowedDirs) > 0 {
		opts = append(opts, thicket.WithAllowedDirs(cfg.AllowedDirs...))
	}

	reg, err := thicket.NewRegistry(opts...)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return reg, func() { store.Close() }, nil
}
