// Package gml holds the language facts for GameMaker Language: which files
// are GML source, how identifiers look, and how a GameMaker project root is
// recognized on disk.
package gml

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Extension is the GML source file extension.
const Extension = ".gml"

// ManifestExtension is the GameMaker project manifest extension. A directory
// containing a *.yyp file is a project root.
const ManifestExtension = ".yyp"

// identifierRe matches identifier-shaped tokens: a letter or underscore
// followed by letters, digits, or underscores. It deliberately matches inside
// strings and comments too — the index over-approximates occupancy so that
// conflict detection never misses a real occurrence.
var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// IsSourceFile reports whether path names a GML source file.
func IsSourceFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// Identifiers extracts all identifier-shaped tokens from src, in order of
// appearance. Tokens are returned raw; callers normalize with Normalize.
func Identifiers(src []byte) []string {
	matches := identifierRe.FindAll(src, -1)
	tokens := make([]string, len(matches))
	for i, m := range matches {
		tokens[i] = string(m)
	}
	return tokens
}

// Normalize canonicalizes an identifier for index keys and occupancy
// queries: whitespace trimmed, case folded. GML identifier comparisons in
// the index are case-insensitive.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DefaultExcludedDirs returns the directory names skipped during index
// construction: version control, dependency, build, and vendor directories.
// Names are lowercase; matching is case-insensitive.
func DefaultExcludedDirs() map[string]bool {
	return map[string]bool{
		".git":         true,
		".svn":         true,
		".hg":          true,
		"node_modules": true,
		"vendor":       true,
		"build":        true,
		"out":          true,
		"dist":         true,
		"__pycache__":  true,
	}
}

// IsProjectRoot reports whether dir contains a GameMaker project manifest
// (*.yyp) or a .git directory.
func IsProjectRoot(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			if e.Name() == ".git" {
				return true
			}
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ManifestExtension) {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up from startDir looking for a project root.
// Returns ("", false) if the filesystem root is reached without a match.
func FindProjectRoot(startDir string) (string, bool) {
	dir := startDir
	for {
		if IsProjectRoot(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
