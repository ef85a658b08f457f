package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file under dir, making parent directories as needed.
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuild_OccupancyScenario(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "a.gml", "var foo = 1;")
	pathB := writeFile(t, root, "b.gml", "foo_bar += 2;")

	idx, err := NewBuilder().Build(root)
	require.NoError(t, err)

	assert.True(t, idx.Occupied("foo"))
	assert.False(t, idx.Occupied("baz"))
	assert.Equal(t, []string{pathB}, idx.Files("foo_bar"))
	assert.Equal(t, 2, idx.FileCount())
}

func TestBuild_NormalizesCase(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "player.gml", "global.Player_HP = 100;")

	idx, err := NewBuilder().Build(root)
	require.NoError(t, err)

	assert.True(t, idx.Occupied("Player_HP"))
	assert.True(t, idx.Occupied("player_hp"))
	assert.Equal(t, idx.Files("Player_HP"), idx.Files("player_hp"))
}

func TestBuild_SkipsNonSourceFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "notes.txt", "secret_token")
	writeFile(t, root, "scripts/init.gml", "room_speed = 60;")

	idx, err := NewBuilder().Build(root)
	require.NoError(t, err)

	assert.False(t, idx.Occupied("secret_token"))
	assert.True(t, idx.Occupied("room_speed"))
	assert.Equal(t, 1, idx.FileCount())
}

func TestBuild_ExcludedDirs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "src/game.gml", "score = 0;")
	writeFile(t, root, "node_modules/dep/lib.gml", "hidden_name = 1;")
	// Exclusion matching is case-insensitive against segment names.
	writeFile(t, root, "Build/gen.gml", "generated_name = 1;")

	idx, err := NewBuilder().Build(root)
	require.NoError(t, err)

	assert.True(t, idx.Occupied("score"))
	assert.False(t, idx.Occupied("hidden_name"))
	assert.False(t, idx.Occupied("generated_name"))
}

func TestBuild_AllowedDirOverridesExclusion(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	vendorDir := filepath.Join(root, "vendor")
	writeFile(t, root, "vendor/pack/util.gml", "vendored_name = 1;")

	idx, err := NewBuilder(WithAllowedDirs(vendorDir)).Build(root)
	require.NoError(t, err)

	assert.True(t, idx.Occupied("vendored_name"))
}

func TestBuild_ExtraExcludedDirs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "datafiles/gen.gml", "packed_name = 1;")

	idx, err := NewBuilder(WithExcludedDirs("DataFiles")).Build(root)
	require.NoError(t, err)

	assert.False(t, idx.Occupied("packed_name"))
}

func TestBuild_HonorsIgnoreFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\n*.tmp.gml\n")
	writeFile(t, root, "generated/out.gml", "ignored_dir_name = 1;")
	writeFile(t, root, "scratch.tmp.gml", "ignored_file_name = 1;")
	writeFile(t, root, "main.gml", "kept_name = 1;")

	idx, err := NewBuilder().Build(root)
	require.NoError(t, err)

	assert.True(t, idx.Occupied("kept_name"))
	assert.False(t, idx.Occupied("ignored_dir_name"))
	assert.False(t, idx.Occupied("ignored_file_name"))
}

func TestBuild_MissingRoot(t *testing.T) {
	t.Parallel()
	_, err := NewBuilder().Build(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestBuild_ChecksumStableAcrossRebuilds(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "a.gml", "alpha = 1;")
	writeFile(t, root, "b.gml", "beta = 2;")

	first, err := NewBuilder().Build(root)
	require.NoError(t, err)
	second, err := NewBuilder().Build(root)
	require.NoError(t, err)
	assert.Equal(t, first.Checksum(), second.Checksum())

	writeFile(t, root, "b.gml", "beta = 3;")
	third, err := NewBuilder().Build(root)
	require.NoError(t, err)
	assert.NotEqual(t, first.Checksum(), third.Checksum())
}

func TestNew_RehydratesFrozenIndex(t *testing.T) {
	t.Parallel()
	built := time.Now().Truncate(time.Second)
	idx := New("/proj", map[string][]string{
		"Foo": {"/proj/a.gml", "/proj/b.gml"},
	}, 2, "digest", built)

	assert.True(t, idx.Occupied("foo"))
	assert.Equal(t, []string{"/proj/a.gml", "/proj/b.gml"}, idx.Files("FOO"))
	assert.Equal(t, "digest", idx.Checksum())
	assert.Equal(t, built, idx.BuiltAt())
	assert.Equal(t, []string{"foo"}, idx.Names())
}
