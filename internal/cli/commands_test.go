package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/githash/pkg/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func createFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0644))
	}
}

func assertExists(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "%s should exist", name)
	}
}

func assertMissing(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err), "%s should be deleted", name)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "githash version dev")
}

func TestHashCmd(t *testing.T) {
	t.Setenv("GITHASH_SKIP_HASH", "abc1234")

	out, err := execute(t, "hash")
	require.NoError(t, err)
	assert.Equal(t, "abc1234\n", out)
}

func TestCleanCmd(t *testing.T) {
	t.Setenv("GITHASH_SKIP_HASH", "abc1234")

	t.Run("text", func(t *testing.T) {
		dir := t.TempDir()
		createFiles(t, dir, "main.0000000.js", "main.1111111.js", "main.abc1234.js", "robots.txt")

		out, err := execute(t, "clean", "-o", dir, "main.[githash].js")
		require.NoError(t, err)

		assertMissing(t, dir, "main.0000000.js", "main.1111111.js")
		assertExists(t, dir, "main.abc1234.js", "robots.txt")
		assert.Contains(t, out, "abc1234")
		assert.Contains(t, out, MsgDeletedHeader)
		assert.Contains(t, out, "main.0000000.js")
		assert.Contains(t, out, "main.1111111.js")
	})

	t.Run("stamped_name_and_json", func(t *testing.T) {
		dir := t.TempDir()
		createFiles(t, dir, "app-0000000.css", "js/app-1111111.css", "app-abc1234.css")

		out, err := execute(t, "clean", "-o", dir, "--format", "json", "app-abc1234.css")
		require.NoError(t, err)

		var result cleanResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "abc1234", result.Version)
		assert.Len(t, result.RunID, 36)
		assert.Equal(t, 3, result.Scanned)
		assert.Equal(t, []string{"app-0000000.css", "js/app-1111111.css"}, result.Deleted)
		assert.False(t, result.DryRun)
		assertExists(t, dir, "app-abc1234.css")
	})

	t.Run("dry_run_yaml", func(t *testing.T) {
		dir := t.TempDir()
		createFiles(t, dir, "main.0000000.js", "main.abc1234.js")

		out, err := execute(t, "clean", "-o", dir, "--dry-run", "--format", "yaml", "main.[githash].js")
		require.NoError(t, err)

		var result cleanResult
		require.NoError(t, yaml.Unmarshal([]byte(out), &result))
		assert.True(t, result.DryRun)
		assert.Equal(t, []string{"main.0000000.js"}, result.Stale)
		assert.Empty(t, result.Deleted)
		assertExists(t, dir, "main.0000000.js")
	})

	t.Run("keep_glob", func(t *testing.T) {
		dir := t.TempDir()
		createFiles(t, dir, "main.0000000.js", "legacy/main.1111111.js")

		out, err := execute(t, "clean", "-o", dir, "--keep", "legacy/**", "--format", "json", "main.[githash].js")
		require.NoError(t, err)

		var result cleanResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, []string{"main.0000000.js"}, result.Deleted)
		assert.Equal(t, []string{"legacy/main.1111111.js"}, result.Kept)
		assertExists(t, dir, "legacy/main.1111111.js")
	})

	t.Run("nothing_stale", func(t *testing.T) {
		dir := t.TempDir()
		createFiles(t, dir, "main.abc1234.js")

		out, err := execute(t, "clean", "-o", dir, "main.[githash].js")
		require.NoError(t, err)
		assert.Contains(t, out, MsgNoStaleFiles)
	})
}

func TestCleanCmdErrors(t *testing.T) {
	t.Setenv("GITHASH_SKIP_HASH", "abc1234")

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"no output path", []string{"clean", "main.[githash].js"}, errors.ErrInvalidInput},
		{"no names", []string{"clean", "-o", "dist"}, errors.ErrInvalidInput},
		{"bad format", []string{"clean", "-o", "dist", "--format", "xml", "a.[githash].js"}, errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetErrorCode(err))
		})
	}

	t.Run("missing directory", func(t *testing.T) {
		_, err := execute(t, "clean", "-o", filepath.Join(t.TempDir(), "missing"), "a.[githash].js")
		assert.True(t, errors.IsErrorCode(err, errors.ErrCleanupScanFailed))
	})
}

func TestCleanCmdLocked(t *testing.T) {
	t.Setenv("GITHASH_SKIP_HASH", "abc1234")
	dir := t.TempDir()
	createFiles(t, dir, "main.0000000.js")

	lock, err := lockOutput(dir)
	require.NoError(t, err)
	defer func() { _ = lock.Unlock() }()

	_, err = execute(t, "clean", "-o", dir, "main.[githash].js")
	assert.True(t, errors.IsErrorCode(err, errors.ErrLocked))
	assertExists(t, dir, "main.0000000.js")
}

func TestBuildCmd(t *testing.T) {
	t.Setenv("GITHASH_SKIP_HASH", "abc1234")
	t.Setenv("GITHASH_CLEANUP", "true")

	src := t.TempDir()
	out := t.TempDir()
	entry := filepath.Join(src, "app.js")
	require.NoError(t, os.WriteFile(entry, []byte("console.log('app')\n"), 0644))
	createFiles(t, out, "app-0000000.js", "index.html")

	stdout, err := execute(t, "build", "--outdir", out, entry)
	require.NoError(t, err)

	assertExists(t, out, "app-abc1234.js", "index.html")
	assertMissing(t, out, "app-0000000.js")
	assert.Contains(t, stdout, "abc1234")
	assert.Contains(t, stdout, "app-0000000.js")
}

func TestBuildCmdSplitting(t *testing.T) {
	t.Setenv("GITHASH_SKIP_HASH", "abc1234")

	src := t.TempDir()
	out := t.TempDir()
	entry := filepath.Join(src, "app.js")
	require.NoError(t, os.WriteFile(entry, []byte("export const app = 1\n"), 0644))

	_, err := execute(t, "build", "--outdir", out, "--splitting", "--sourcemap", entry)
	require.NoError(t, err)

	assertExists(t, out, "app-abc1234.js", "app-abc1234.js.map")
	content, err := os.ReadFile(filepath.Join(out, "app-abc1234.js"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "export")
}

func TestBuildCmdNoEntryPoints(t *testing.T) {
	_, err := execute(t, "build")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestGenConfigCmd(t *testing.T) {
	t.Run("effective", func(t *testing.T) {
		t.Setenv("GITHASH_HASH_LENGTH", "12")

		out, err := execute(t, "genconfig")
		require.NoError(t, err)
		assert.Contains(t, out, "placeholder")
		assert.Contains(t, out, "hash_length = 12")
	})

	t.Run("template", func(t *testing.T) {
		out, err := execute(t, "genconfig", "--template")
		require.NoError(t, err)
		assert.Contains(t, out, "# cleanup = false")
	})

	t.Run("diff", func(t *testing.T) {
		t.Setenv("GITHASH_CLEANUP", "true")

		out, err := execute(t, "genconfig", "--diff")
		require.NoError(t, err)
		assert.Contains(t, out, "+cleanup = true")
		assert.NotContains(t, out, "+placeholder")
	})

	t.Run("write", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		out, err := execute(t, "genconfig", "--template", "-w")
		require.NoError(t, err)
		assert.Contains(t, out, "githash.toml")
		assertExists(t, ".", "githash.toml")

		_, err = execute(t, "genconfig", "-w")
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
	})
}

func TestManCmd(t *testing.T) {
	out, err := execute(t, "man")
	require.NoError(t, err)
	assert.Contains(t, out, "GITHASH")

	dir := t.TempDir()
	_, err = execute(t, "man", dir)
	require.NoError(t, err)
	assertExists(t, dir, "githash.1", "githash-clean.1")
}
