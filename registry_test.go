package thicket

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProject creates a GameMaker-shaped project: a root with a .yyp
// manifest and a few .gml sources. Returns the canonical root path.
func newTestProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "game.yyp"), []byte("{}"), 0o644))
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return canonicalPath(root)
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := NewRegistry(opts...)
	require.NoError(t, err)
	return r
}

func TestContext_ResolvesOwningRoot(t *testing.T) {
	t.Parallel()
	root := newTestProject(t, map[string]string{
		"objects/player/Step_0.gml": "player_hp -= damage;",
	})
	r := newTestRegistry(t)

	ctx, err := r.Context(filepath.Join(root, "objects", "player", "Step_0.gml"))
	require.NoError(t, err)
	require.NotNil(t, ctx)
	assert.Equal(t, root, ctx.Root())
	assert.True(t, ctx.IsNameOccupied("player_hp"))
	assert.True(t, ctx.IsNameOccupied("damage"))
}

func TestContext_NoProjectMarker(t *testing.T) {
	t.Parallel()
	// No .yyp, no .git anywhere under the temp dir.
	dir := t.TempDir()
	file := filepath.Join(dir, "loose.gml")
	require.NoError(t, os.WriteFile(file, []byte("x = 1;"), 0o644))
	r := newTestRegistry(t)

	ctx, err := r.Context(file)
	require.NoError(t, err)
	assert.Nil(t, ctx, "no owning root must degrade to no context")
}

func TestContext_ForcedRootBoundary(t *testing.T) {
	t.Parallel()
	inside := newTestProject(t, map[string]string{"a.gml": "alpha = 1;"})
	outside := newTestProject(t, map[string]string{"b.gml": "beta = 1;"})
	r := newTestRegistry(t, WithForcedRoot(inside))

	ctx, err := r.Context(filepath.Join(outside, "b.gml"))
	require.NoError(t, err)
	assert.Nil(t, ctx)

	ctx, err = r.Context(filepath.Join(inside, "a.gml"))
	require.NoError(t, err)
	require.NotNil(t, ctx)
	assert.Equal(t, inside, ctx.Root())

	assert.Equal(t, inside, r.ForcedRoot())
	assert.True(t, r.IsOutOfForcedRoot(filepath.Join(outside, "b.gml")))
	assert.False(t, r.IsOutOfForcedRoot(filepath.Join(inside, "a.gml")))
}

func TestContext_ExcludedPathSegments(t *testing.T) {
	t.Parallel()
	root := newTestProject(t, map[string]string{
		"vendor/pack/util.gml": "vendored = 1;",
		"src/game.gml":         "score = 0;",
	})
	r := newTestRegistry(t)

	ctx, err := r.Context(filepath.Join(root, "vendor", "pack", "util.gml"))
	require.NoError(t, err)
	assert.Nil(t, ctx, "files under excluded directory names get no context")

	ctx, err = r.Context(filepath.Join(root, "src", "game.gml"))
	require.NoError(t, err)
	assert.NotNil(t, ctx)
}

func TestContext_AllowedDirOverridesExclusion(t *testing.T) {
	t.Parallel()
	root := newTestProject(t, map[string]string{
		"vendor/pack/util.gml": "vendored = 1;",
	})
	vendorDir := filepath.Join(root, "vendor")
	r := newTestRegistry(t, WithAllowedDirs(vendorDir))

	ctx, err := r.Context(filepath.Join(root, "vendor", "pack", "util.gml"))
	require.NoError(t, err)
	require.NotNil(t, ctx)
	assert.True(t, ctx.IsNameOccupied("vendored"))
}

func TestContext_CachedPerRoot(t *testing.T) {
	t.Parallel()
	root := newTestProject(t, map[string]string{
		"a.gml": "alpha = 1;",
		"b.gml": "beta = 2;",
	})
	r := newTestRegistry(t)

	first, err := r.Context(filepath.Join(root, "a.gml"))
	require.NoError(t, err)
	second, err := r.Context(filepath.Join(root, "b.gml"))
	require.NoError(t, err)

	assert.Same(t, first, second, "one context per root")
	assert.Equal(t, 1, r.BuildCount())
}

func TestContext_SingleFlightBuild(t *testing.T) {
	t.Parallel()
	root := newTestProject(t, map[string]string{"a.gml": "alpha = 1;"})
	r := newTestRegistry(t)
	target := filepath.Join(root, "a.gml")

	const callers = 16
	var wg sync.WaitGroup
	contexts := make([]*Context, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			ctx, err := r.Context(target)
			assert.NoError(t, err)
			contexts[slot] = ctx
		}(i)
	}
	wg.Wait()

	require.NotNil(t, contexts[0])
	for _, ctx := range contexts[1:] {
		assert.Same(t, contexts[0], ctx)
	}
	assert.Equal(t, 1, r.BuildCount(), "concurrent callers must share one build")
}

func TestReset_ClearsCaches(t *testing.T) {
	t.Parallel()
	root := newTestProject(t, map[string]string{"a.gml": "alpha = 1;"})
	r := newTestRegistry(t)
	target := filepath.Join(root, "a.gml")

	_, err := r.Context(target)
	require.NoError(t, err)
	require.Equal(t, 1, r.BuildCount())

	r.Reset()

	_, err = r.Context(target)
	require.NoError(t, err)
	assert.Equal(t, 2, r.BuildCount(), "reset forces a rebuild")
}

func TestContext_WarmStartsFromSnapshot(t *testing.T) {
	t.Parallel()
	root := newTestProject(t, map[string]string{"a.gml": "alpha = 1;"})
	dbPath := filepath.Join(t.TempDir(), "index.db")

	s, err := OpenSnapshotStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// First registry builds and persists.
	first := newTestRegistry(t, WithSnapshotStore(s))
	ctx, err := first.Context(filepath.Join(root, "a.gml"))
	require.NoError(t, err)
	require.NotNil(t, ctx)
	checksum := ctx.Index().Checksum()

	// A later "invocation" rehydrates the same snapshot.
	second := newTestRegistry(t, WithSnapshotStore(s))
	ctx2, err := second.Context(filepath.Join(root, "a.gml"))
	require.NoError(t, err)
	require.NotNil(t, ctx2)
	assert.Equal(t, checksum, ctx2.Index().Checksum())
	assert.True(t, ctx2.IsNameOccupied("alpha"))
}

func TestRenamePlanner_SharesBridge(t *testing.T) {
	t.Parallel()
	bridge := &stubBridge{symbols: map[string]string{"hp": "sym:hp"}}
	r := newTestRegistry(t, WithBridge(bridge))

	engine := &recordingEngine{}
	p := r.RenamePlanner(engine)
	out := p.Plan("/proj/a.gml", "hp", "health")
	require.True(t, out.Accepted)
	assert.Equal(t, ModeProject, out.Mode)
	assert.Equal(t, []string{"health"}, engine.calls)
}

// recordingEngine accepts every candidate with a single-file edit set.
type recordingEngine struct {
	calls []string
}

func (e *recordingEngine) PrepareRenamePlan(symbolID, newName string) (*RefactorPlan, error) {
	e.calls = append(e.calls, newName)
	return &RefactorPlan{
		Validation: RefactorValidation{Valid: true},
		Edits:      []RefactorEdit{{Path: "/proj/a.gml", NewText: newName}},
	}, nil
}
