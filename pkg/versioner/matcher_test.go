package versioner

import (
	"testing"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustVersioner(t *testing.T, token string) *Versioner {
	t.Helper()
	v, err := New(token)
	require.NoError(t, err)
	return v
}

func TestBuildStaleMatcherPattern(t *testing.T) {
	v := mustVersioner(t, "1234567")

	m, err := v.BuildStaleMatcher("js/[name]-chunk.1234567.min.js")
	require.NoError(t, err)

	assert.Equal(t, `(?:^|[\\/])\w+-chunk\.(?!1234567)\w{7}\.min\.js$`, m.String())
	assert.Equal(t, "js/[name]-chunk.1234567.min.js", m.Source())
}

func TestBuildStaleMatcherMatches(t *testing.T) {
	v := mustVersioner(t, "abcdefg")

	m, err := v.BuildStaleMatcher("file-abcdefg.min.js")
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"file-hijklmn.min.js", true},
		{"file-1234567.min.js", true},
		{"file-890wxyz.min.js", true},
		{"nested/dir/file-1234567.min.js", true},
		{`nested\file-1234567.min.js`, true},
		{"file-abcdefg.min.js", false},
		{"nested/file-abcdefg.min.js", false},
		{"file-123456.min.js", false},
		{"file-12345678.min.js", false},
		{"file-1234567.min.js.map", false},
		{"xfile-1234567.min.js", false},
		{"file-1234567xmin.js", false},
		{"file-12-4567.min.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.path))
		})
	}
}

func TestBuildStaleMatcherProperty(t *testing.T) {
	templates := []string{
		"app.[githash].js",
		"[githash].bundle.js",
		"static/js/main-[githash].chunk.css",
		"vendor~[githash]+(1).js",
		"file with spaces [githash].txt",
		"[githash]",
	}
	pairs := [][2]string{
		{"abcdefg", "hijklmn"},
		{"1234567", "890wxyz"},
		{"a_b", "a_c"},
	}

	for _, tmpl := range templates {
		for _, pair := range pairs {
			v1 := mustVersioner(t, pair[0])
			v2 := mustVersioner(t, pair[1])

			s1, ok := v1.Substitute(tmpl)
			require.True(t, ok)
			s2, ok := v2.Substitute(tmpl)
			require.True(t, ok)

			m, err := v1.BuildStaleMatcher(s1)
			require.NoError(t, err, tmpl)

			assert.True(t, m.Match(s2), "%s should match %s", m, s2)
			assert.False(t, m.Match(s1), "%s should not match %s", m, s1)
		}
	}
}

func TestTemplateMatcherProperty(t *testing.T) {
	templates := []string{
		"app.[githash].js",
		"v1-[githash].js",
		"app2-[githash].js",
		"build42-[githash].js",
		"42-[githash]-42.js",
		"static/1/main-[githash].chunk.css",
		"[githash]",
	}
	pairs := [][2]string{
		{"1", "2"},
		{"2", "3"},
		{"42", "43"},
		{"abcdefg", "hijklmn"},
	}

	for _, tmpl := range templates {
		for _, pair := range pairs {
			v1 := mustVersioner(t, pair[0])
			v2 := mustVersioner(t, pair[1])

			s1, _ := v1.Substitute(tmpl)
			s2, _ := v2.Substitute(tmpl)

			m, err := v1.TemplateMatcher(tmpl)
			require.NoError(t, err, tmpl)

			assert.Equal(t, s1, m.Source())
			assert.True(t, m.Match(s2), "%s should match %s", m, s2)
			assert.False(t, m.Match(s1), "%s should not match %s", m, s1)
			assert.True(t, m.Covers(s1), "%s should cover %s", m, s1)
		}
	}
}

func TestTemplateMatcherIgnoresTokenInStaticPart(t *testing.T) {
	v := mustVersioner(t, "2")

	m, err := v.TemplateMatcher("app2-[githash].js")
	require.NoError(t, err)

	assert.Equal(t, `(?:^|[\\/])app2-(?!2)\w{1}\.js$`, m.String())
	assert.True(t, m.Match("app2-1.js"))
	assert.False(t, m.Match("app2-2.js"))
	assert.False(t, m.Match("app3-2.js"), "a different asset is never stale")
}

func TestTemplateMatcherBundlerPlaceholders(t *testing.T) {
	v := mustVersioner(t, "abc1234")

	m, err := v.TemplateMatcher("chunks/[name]-[hash]-[githash].[ext]")
	require.NoError(t, err)

	assert.True(t, m.Match("chunks/vendor-QWERTY12-0000000.js"))
	assert.True(t, m.Match("vendor-ASDF-0000000.js.map"))
	assert.False(t, m.Match("vendor-QWERTY12-abc1234.js"))
	assert.True(t, m.Covers("vendor-QWERTY12-abc1234.js"))
	assert.False(t, m.Covers("index.html"))
}

func TestTemplateMatcherWithoutPlaceholder(t *testing.T) {
	v := mustVersioner(t, "abc1234")

	// stamped names fall back to the token's last occurrence
	m, err := v.TemplateMatcher("abc1234-app-abc1234.js")
	require.NoError(t, err)
	assert.True(t, m.Match("abc1234-app-0000000.js"))
	assert.False(t, m.Match("0000000-app-abc1234.js"))

	_, err = v.TemplateMatcher("index.html")
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateMismatch))

	// a placeholder in the directory part leaves the file name unversioned
	_, err = v.TemplateMatcher("[githash]/index.js")
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateMismatch))
}

func TestCompiledMatcherCoversNothing(t *testing.T) {
	m, err := CompileMatcher(`app-\w+\.js`)
	require.NoError(t, err)
	assert.False(t, m.Covers("app-abc.js"))
}

func TestBuildStaleMatcherWithoutToken(t *testing.T) {
	v := mustVersioner(t, "abcdefg")

	_, err := v.BuildStaleMatcher("index.html")
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateMismatch))

	// token only in the directory part does not count
	_, err = v.BuildStaleMatcher("abcdefg/index.html")
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateMismatch))
}

func TestCompileMatcher(t *testing.T) {
	m, err := CompileMatcher(`file-(?!abcdefg)\w{7}\.min\.js`)
	require.NoError(t, err)
	assert.True(t, m.Match("file-hijklmn.min.js"))
	assert.False(t, m.Match("file-abcdefg.min.js"))

	_, err = CompileMatcher(`file-(`)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPattern))
}
