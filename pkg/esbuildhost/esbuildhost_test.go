package esbuildhost

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/githash/pkg/filesystem"
	"github.com/arthur-debert/githash/pkg/plugin"
	"github.com/arthur-debert/githash/pkg/types"
)

func newPlugin(t *testing.T, opts plugin.Options) *plugin.Plugin {
	t.Helper()
	p, err := plugin.New(context.Background(), opts, plugin.Deps{FS: filesystem.NewOS()})
	require.NoError(t, err)
	return p
}

func readDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestBuildStampsAndCleans(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	entry := filepath.Join(src, "app.js")
	require.NoError(t, os.WriteFile(entry, []byte("console.log('hello')\n"), 0644))
	for _, stale := range []string{"app-0000000.js", "app-1111111.js", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(out, stale), []byte("old"), 0644))
	}

	var version string
	var deleted []string
	var stats types.Stats
	p := newPlugin(t, plugin.Options{
		SkipHash: "abc1234",
		Cleanup:  true,
		Callback: func(v string, d []string, s types.Stats) {
			version, deleted, stats = v, d, s
		},
	})

	result := api.Build(api.BuildOptions{
		EntryPoints: []string{entry},
		EntryNames:  "[name]-[githash]",
		Outdir:      out,
		Bundle:      true,
		Write:       true,
		LogLevel:    api.LogLevelSilent,
		Plugins:     []api.Plugin{New(p, filesystem.NewOS())},
	})
	require.Empty(t, result.Errors)

	assert.Equal(t, []string{"app-abc1234.js", "notes.txt"}, readDir(t, out))
	assert.Equal(t, "abc1234", version)
	assert.Equal(t, []string{"app-0000000.js", "app-1111111.js"}, deleted)
	assert.Equal(t, 1, stats.Assets)
	assert.Positive(t, stats.Bytes)

	require.Len(t, result.OutputFiles, 1)
	assert.Equal(t, filepath.Join(out, "app-abc1234.js"), result.OutputFiles[0].Path)
}

func TestFailedBuildStillCompletes(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	entry := filepath.Join(src, "app.js")
	require.NoError(t, os.WriteFile(entry, []byte("import './missing'\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "app-0000000.js"), []byte("old"), 0644))

	calls := 0
	var deleted []string
	var stats types.Stats
	p := newPlugin(t, plugin.Options{
		SkipHash: "abc1234",
		Cleanup:  true,
		Callback: func(_ string, d []string, s types.Stats) {
			calls++
			deleted, stats = d, s
		},
	})

	result := api.Build(api.BuildOptions{
		EntryPoints: []string{entry},
		EntryNames:  "[name]-[githash]",
		Outdir:      out,
		Bundle:      true,
		Write:       true,
		LogLevel:    api.LogLevelSilent,
		Plugins:     []api.Plugin{New(p, filesystem.NewOS())},
	})
	require.NotEmpty(t, result.Errors)

	assert.Equal(t, 1, calls)
	assert.Empty(t, deleted)
	assert.Equal(t, len(result.Errors), stats.Errors)
	assert.Zero(t, stats.Assets)
	assert.Equal(t, []string{"app-0000000.js"}, readDir(t, out), "failed builds clean nothing")
}

func TestBuildWithContentHashes(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	entry := filepath.Join(src, "app.js")
	require.NoError(t, os.WriteFile(filepath.Join(out, "app-DEADBEEF-0000000.js"), []byte("old"), 0644))

	p := newPlugin(t, plugin.Options{SkipHash: "abc1234", Cleanup: true})
	build := func(content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(entry, []byte(content), 0644))
		result := api.Build(api.BuildOptions{
			EntryPoints: []string{entry},
			EntryNames:  "[name]-[hash]-[githash]",
			Outdir:      out,
			Bundle:      true,
			Write:       true,
			LogLevel:    api.LogLevelSilent,
			Plugins:     []api.Plugin{New(p, filesystem.NewOS())},
		})
		require.Empty(t, result.Errors)
	}

	build("console.log(1)\n")
	assert.Equal(t, []string{"app-DEADBEEF-0000000.js"}, p.Engine().DeletedFiles())

	build("console.log(2)\n")
	matchers := p.Engine().Matchers()
	assert.Len(t, matchers, 1, "rebuilds reuse the template matcher")
	assert.Contains(t, matchers, "entryNames")

	files := readDir(t, out)
	require.Len(t, files, 2)
	for _, name := range files {
		assert.True(t, strings.HasSuffix(name, "-abc1234.js"), name)
	}
}

func TestBuildWithoutWrite(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	entry := filepath.Join(src, "main.js")
	require.NoError(t, os.WriteFile(entry, []byte("export const x = 1\n"), 0644))

	p := newPlugin(t, plugin.Options{SkipHash: "1234"})

	result := api.Build(api.BuildOptions{
		EntryPoints: []string{entry},
		EntryNames:  "[name].[githash]",
		Outdir:      out,
		LogLevel:    api.LogLevelSilent,
		Plugins:     []api.Plugin{New(p, filesystem.NewOS())},
	})
	require.Empty(t, result.Errors)

	require.Len(t, result.OutputFiles, 1)
	assert.Equal(t, "main.1234.js", filepath.Base(result.OutputFiles[0].Path))
	assert.Empty(t, readDir(t, out))
}

func TestRelativeName(t *testing.T) {
	assert.Equal(t, "chunks/a.js", relativeName("/out", "/out/chunks/a.js"))
	assert.Equal(t, "a.js", relativeName("", "a.js"))
}

func TestWriteAssets(t *testing.T) {
	fsys := filesystem.NewMemory()
	err := writeAssets(fsys, "/out", types.Assets{"chunks/a.js": []byte("a"), "b.js": []byte("bb")})
	require.NoError(t, err)

	info, err := fsys.Stat("/out/chunks/a.js")
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Size())
	info, err = fsys.Stat("/out/b.js")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Size())
}
