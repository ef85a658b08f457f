package thicket

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jward/thicket/internal/gml"
	"github.com/jward/thicket/internal/index"
	"github.com/jward/thicket/internal/refactor"
	"github.com/jward/thicket/internal/store"
)

// rootCacheSize bounds the canonical-path→owning-root memoization. Root
// cardinality is small but path cardinality is not, hence an LRU rather
// than a plain map.
const rootCacheSize = 4096

// Registry resolves, caches, and boundary-checks which project context
// applies to a file path. It is constructed once per process invocation
// with its policy fixed; it is the single gate through which every
// project-aware rule passes, which is what lets a single-file run degrade
// to "no project context" instead of crashing or guessing.
type Registry struct {
	forcedRoot string
	excluded   map[string]bool
	allowed    []string
	bridge     refactor.Bridge
	snapshots  *store.Store
	builder    *index.Builder

	mu         sync.Mutex
	builds     map[string]*contextBuild // keyed by canonical root
	buildCount int

	rootCache *lru.Cache[string, string] // canonical dir -> owning root ("" = none)
}

// contextBuild is a cache entry that may still be in flight. Concurrent
// requests for the same root attach to the same build instead of scanning
// twice.
type contextBuild struct {
	done chan struct{}
	ctx  *Context
}

// Option configures a Registry.
type Option func(*Registry)

// WithForcedRoot sets a single absolute boundary: no file outside it ever
// yields a context, and it is always the owning root for files inside it.
func WithForcedRoot(root string) Option {
	return func(r *Registry) {
		r.forcedRoot = root
	}
}

// WithExcludedDirs adds directory names (case-insensitive) to the hard
// exclusion set on top of the defaults.
func WithExcludedDirs(names ...string) Option {
	return func(r *Registry) {
		for _, n := range names {
			r.excluded[strings.ToLower(n)] = true
		}
	}
}

// WithAllowedDirs sets absolute path prefixes under which exclusion is
// overridden.
func WithAllowedDirs(paths ...string) Option {
	return func(r *Registry) {
		r.allowed = append(r.allowed, paths...)
	}
}

// WithBridge attaches a semantic bridge to every context the registry
// builds.
func WithBridge(b refactor.Bridge) Option {
	return func(r *Registry) {
		r.bridge = b
	}
}

// WithSnapshotStore lets the registry warm-start contexts from persisted
// index snapshots instead of re-walking unchanged projects.
func WithSnapshotStore(s *store.Store) Option {
	return func(r *Registry) {
		r.snapshots = s
	}
}

// NewRegistry creates a Registry with its policy fixed for the process
// invocation.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		excluded: gml.DefaultExcludedDirs(),
		builds:   make(map[string]*contextBuild),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.forcedRoot != "" {
		r.forcedRoot = canonicalPath(r.forcedRoot)
	}

	cache, err := lru.New[string, string](rootCacheSize)
	if err != nil {
		return nil, fmt.Errorf("thicket: root cache: %w", err)
	}
	r.rootCache = cache

	var builderOpts []index.BuilderOption
	var extra []string
	for name := range r.excluded {
		extra = append(extra, name)
	}
	builderOpts = append(builderOpts, index.WithExcludedDirs(extra...))
	if len(r.allowed) > 0 {
		builderOpts = append(builderOpts, index.WithAllowedDirs(r.allowed...))
	}
	r.builder = index.NewBuilder(builderOpts...)

	return r, nil
}

// ForcedRoot returns the configured boundary, or "" when none is set.
func (r *Registry) ForcedRoot() string {
	return r.forcedRoot
}

// IsOutOfForcedRoot reports whether path falls outside a configured forced
// root. Callers use it to short-circuit whole-file processing before any
// analysis begins. Always false when no forced root is set.
func (r *Registry) IsOutOfForcedRoot(path string) bool {
	if r.forcedRoot == "" {
		return false
	}
	return !within(r.forcedRoot, canonicalPath(path))
}

// BuildCount returns how many context builds the registry has started.
// Used by tests to verify single-flight behavior.
func (r *Registry) BuildCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildCount
}

// Reset clears all cached contexts and root resolutions. Test and CLI
// isolation hook; policy is not reset.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.builds = make(map[string]*contextBuild)
	r.mu.Unlock()
	r.rootCache.Purge()
}

// Context resolves the project context owning path. A nil context (with a
// nil error) means the path is out of bounds, excluded, or has no owning
// project — the caller degrades to single-file behavior.
func (r *Registry) Context(path string) (*Context, error) {
	canon := canonicalPath(path)

	if r.forcedRoot != "" && !within(r.forcedRoot, canon) {
		return nil, nil
	}
	if r.pathExcluded(canon) {
		return nil, nil
	}

	root, ok := r.owningRoot(canon)
	if !ok {
		return nil, nil
	}
	return r.contextForRoot(root), nil
}

// contextForRoot returns the cached context for root, building it first if
// absent. The cache stores the in-flight build, so a concurrent request for
// the same uncached root attaches to the same scan.
func (r *Registry) contextForRoot(root string) *Context {
	r.mu.Lock()
	if b, ok := r.builds[root]; ok {
		r.mu.Unlock()
		<-b.done
		return b.ctx
	}
	b := &contextBuild{done: make(chan struct{})}
	r.builds[root] = b
	r.buildCount++
	r.mu.Unlock()

	defer close(b.done)
	if idx := r.loadOrBuildIndex(root); idx != nil {
		b.ctx = NewContext(idx, WithContextBridge(r.bridge))
	}
	return b.ctx
}

// loadOrBuildIndex tries a persisted snapshot first, then a fresh walk.
// Any failure degrades to nil — no context, never an error surfaced to a
// file-processing run.
func (r *Registry) loadOrBuildIndex(root string) *index.Index {
	if r.snapshots != nil {
		if idx, err := r.snapshots.LoadSnapshot(root); err == nil && idx != nil {
			return idx
		}
	}
	idx, err := r.builder.Build(root)
	if err != nil {
		return nil
	}
	if r.snapshots != nil {
		_ = r.snapshots.SaveSnapshot(idx)
	}
	return idx
}

// owningRoot resolves the project root owning the canonical path: the
// forced root when configured, else the nearest ancestor directory holding
// a project marker. Resolutions are memoized per directory.
func (r *Registry) owningRoot(canon string) (string, bool) {
	if r.forcedRoot != "" {
		return r.forcedRoot, true
	}

	dir := canon
	if info, err := os.Stat(canon); err != nil || !info.IsDir() {
		dir = filepath.Dir(canon)
	}

	if root, ok := r.rootCache.Get(dir); ok {
		return root, root != ""
	}
	root, found := gml.FindProjectRoot(dir)
	if !found {
		root = ""
	}
	r.rootCache.Add(dir, root)
	return root, found
}

// pathExcluded reports whether any directory segment of canon is hard
// excluded and the path is not covered by an allowed prefix.
func (r *Registry) pathExcluded(canon string) bool {
	if r.underAllowed(canon) {
		return false
	}
	dir := filepath.Dir(canon)
	for _, seg := range strings.Split(dir, string(filepath.Separator)) {
		if r.excluded[strings.ToLower(seg)] {
			return true
		}
	}
	return false
}

func (r *Registry) underAllowed(path string) bool {
	for _, allowed := range r.allowed {
		if path == allowed || strings.HasPrefix(path, allowed+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// RenamePlanner wires a rename planner to an external refactor engine,
// sharing the registry's semantic bridge.
func (r *Registry) RenamePlanner(engine refactor.Engine) *refactor.Planner {
	return refactor.NewPlanner(engine, r.bridge)
}

// canonicalPath resolves symlinks where possible and normalizes away
// trailing separators. Paths that do not exist are still normalized.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return filepath.Clean(abs)
}

// within reports whether path is root itself or inside it.
func within(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}
