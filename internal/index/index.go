// Package index builds and holds the lexical project index: a snapshot of
// which identifier names appear in which GML files under a project root.
//
// The index is a deliberate over-approximation of occupancy. Tokens are
// extracted with a word-boundary pattern, so identifier-looking substrings
// inside strings and comments count too. That keeps the false-negative rate
// for conflict detection at zero; the occasional false positive only makes
// rename planning more conservative, never less safe.
package index

import (
	"sort"
	"time"

	"github.com/jward/thicket/internal/gml"
)

// Index is one lexical occupancy snapshot for a project root. It is frozen
// once built: queries are read-only and safe for concurrent use.
type Index struct {
	root      string
	names     map[string]map[string]struct{} // normalized name -> set of absolute paths
	fileCount int
	checksum  string
	builtAt   time.Time
}

// New constructs a frozen Index from already-normalized data. Used by the
// snapshot store to rehydrate a persisted index; Builder.Build is the normal
// construction path.
func New(root string, names map[string][]string, fileCount int, checksum string, builtAt time.Time) *Index {
	frozen := make(map[string]map[string]struct{}, len(names))
	for name, paths := range names {
		set := make(map[string]struct{}, len(paths))
		for _, p := range paths {
			set[p] = struct{}{}
		}
		frozen[gml.Normalize(name)] = set
	}
	return &Index{
		root:      root,
		names:     frozen,
		fileCount: fileCount,
		checksum:  checksum,
		builtAt:   builtAt,
	}
}

// Root returns the project root this index was built from.
func (x *Index) Root() string { return x.root }

// FileCount returns how many source files contributed to the index.
func (x *Index) FileCount() int { return x.fileCount }

// NameCount returns how many distinct normalized identifiers the index holds.
func (x *Index) NameCount() int { return len(x.names) }

// Checksum returns a digest of the indexed file set and contents, used by
// the snapshot store to detect staleness across CLI invocations.
func (x *Index) Checksum() string { return x.checksum }

// BuiltAt returns when the index was built.
func (x *Index) BuiltAt() time.Time { return x.builtAt }

// Occupied reports whether the normalized form of name appears anywhere in
// the project.
func (x *Index) Occupied(name string) bool {
	_, ok := x.names[gml.Normalize(name)]
	return ok
}

// Files returns the sorted absolute paths of files containing the normalized
// form of name, or nil if the name is unoccupied. The slice is a copy; the
// index itself stays frozen.
func (x *Index) Files(name string) []string {
	set, ok := x.names[gml.Normalize(name)]
	if !ok {
		return nil
	}
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Names returns all normalized identifier names in the index, sorted.
// Used by the snapshot store when persisting.
func (x *Index) Names() []string {
	names := make([]string, 0, len(x.names))
	for n := range x.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
