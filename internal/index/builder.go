package index

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/jward/thicket/internal/gml"
)

// Builder walks a project root and produces an Index. Zero value is not
// usable; construct with NewBuilder.
type Builder struct {
	excludedDirs map[string]bool
	allowedDirs  []string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithExcludedDirs adds directory names (case-insensitive) to the exclusion
// set on top of the defaults.
func WithExcludedDirs(names ...string) BuilderOption {
	return func(b *Builder) {
		for _, n := range names {
			b.excludedDirs[strings.ToLower(n)] = true
		}
	}
}

// WithAllowedDirs sets absolute path prefixes under which exclusion is
// overridden: a directory inside an allowed prefix is walked even when its
// name is excluded.
func WithAllowedDirs(paths ...string) BuilderOption {
	return func(b *Builder) {
		b.allowedDirs = append(b.allowedDirs, paths...)
	}
}

// NewBuilder returns a Builder with the default excluded directory names.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{excludedDirs: gml.DefaultExcludedDirs()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build scans every eligible GML file under root and returns the frozen
// Index. The walk is an iterative directory stack, not recursive calls.
// Files and directories that fail to read are silently skipped — the index
// is best-effort, not all-or-nothing. A .gitignore at root, when present,
// is honored the same way git-aware discovery would.
func (b *Builder) Build(root string) (*Index, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	if _, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}

	gi := loadIgnoreFile(absRoot)

	names := make(map[string]map[string]struct{})
	type indexedFile struct {
		path string
		hash [32]byte
	}
	var files []indexedFile

	stack := []string{absRoot}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue // unreadable directory, best-effort
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			if entry.IsDir() {
				if b.excludedDirs[strings.ToLower(entry.Name())] && !b.underAllowed(path) {
					continue
				}
				if gi != nil && gi.MatchesPath(relTo(absRoot, path)) {
					continue
				}
				stack = append(stack, path)
				continue
			}

			if !gml.IsSourceFile(path) {
				continue
			}
			if gi != nil && gi.MatchesPath(relTo(absRoot, path)) {
				continue
			}

			content, err := os.ReadFile(path)
			if err != nil {
				continue // unreadable file, best-effort
			}
			files = append(files, indexedFile{path: path, hash: sha256.Sum256(content)})

			for _, tok := range gml.Identifiers(content) {
				key := gml.Normalize(tok)
				set, ok := names[key]
				if !ok {
					set = make(map[string]struct{})
					names[key] = set
				}
				set[path] = struct{}{}
			}
		}
	}

	// Checksum over the sorted (path, content hash) pairs, so reordering the
	// walk never changes the digest.
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	h := sha256.New()
	for _, f := range files {
		h.Write([]byte(f.path))
		h.Write(f.hash[:])
	}

	return &Index{
		root:      absRoot,
		names:     names,
		fileCount: len(files),
		checksum:  fmt.Sprintf("%x", h.Sum(nil)),
		builtAt:   time.Now(),
	}, nil
}

// underAllowed reports whether path is inside any allowed directory prefix.
func (b *Builder) underAllowed(path string) bool {
	for _, allowed := range b.allowedDirs {
		if path == allowed || strings.HasPrefix(path, allowed+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// relTo returns path relative to root for ignore-pattern matching.
func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// loadIgnoreFile compiles root/.gitignore, or returns nil if absent.
func loadIgnoreFile(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
