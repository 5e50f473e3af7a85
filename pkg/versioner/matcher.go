package versioner

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/logging"
)

// MatchTimeout bounds a single match so a pathological pre-seeded pattern
// cannot stall a cleanup pass.
const MatchTimeout = time.Second

// bundler placeholders that may survive substitution, e.g. [name] or [hash]
var bracketPlaceholder = regexp.MustCompile(`\[\w+\]`)

// extPlaceholder spans multi-part extensions such as .js.map
const extPlaceholder = "[ext]"

// StaleMatcher recognises filenames that share a stamped name's shape but
// carry a different version token.
type StaleMatcher struct {
	source string
	re     *regexp2.Regexp

	// shape is re without the lookahead; nil for compiled matchers
	shape *regexp2.Regexp
}

// CompileMatcher compiles a caller-supplied pattern, e.g. one pre-seeded
// through configuration. The pattern is used as-is.
func CompileMatcher(pattern string) (*StaleMatcher, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidPattern, "invalid stale pattern %q", pattern)
	}
	re.MatchTimeout = MatchTimeout
	return &StaleMatcher{source: pattern, re: re}, nil
}

// BuildStaleMatcher derives the matcher for a substituted name. Only the
// basename is considered. Literal characters are escaped, leftover bundler
// placeholders become \w+, and the token becomes a run of exactly Length()
// word characters that is not the token. The pattern is anchored at the end
// and at a path separator (or the start) before the basename.
//
// Without the template the token position is ambiguous when the static part
// of the name also contains the token; the last occurrence is used. Prefer
// TemplateMatcher when the template is known.
//
// It fails with ErrTemplateMismatch when the basename does not carry the
// token, so unversioned names never get a matcher.
func (v *Versioner) BuildStaleMatcher(substitutedName string) (*StaleMatcher, error) {
	base := basename(substitutedName)

	idx := strings.LastIndex(base, v.token)
	if idx < 0 {
		return nil, errors.Newf(errors.ErrTemplateMismatch, "%q does not contain version token %q", base, v.token).
			WithDetail("name", substitutedName)
	}
	return v.buildMatcher(substitutedName, base[:idx], base[idx+len(v.token):])
}

// TemplateMatcher derives the matcher from a template, placing the token
// exactly where the first placeholder sits. A template without placeholder
// is treated as an already substituted name (see BuildStaleMatcher).
//
// It fails with ErrTemplateMismatch when the placeholder is only in the
// directory part.
func (v *Versioner) TemplateMatcher(template string) (*StaleMatcher, error) {
	idx := strings.Index(template, v.placeholder)
	if idx < 0 {
		return v.BuildStaleMatcher(template)
	}

	start := strings.LastIndexAny(template, `/\`) + 1
	if idx < start {
		return nil, errors.Newf(errors.ErrTemplateMismatch, "placeholder of %q is not part of the file name", template).
			WithDetail("template", template)
	}

	stamped, _ := v.Substitute(template)
	base := template[start:]
	idx -= start
	return v.buildMatcher(stamped, base[:idx], base[idx+len(v.placeholder):])
}

// buildMatcher assembles the stale pattern around the token position given
// by the literal prefix and suffix of the basename.
func (v *Versioner) buildMatcher(source, prefix, suffix string) (*StaleMatcher, error) {
	head := `(?:^|[\\/])` + escapeSegment(prefix)
	tail := escapeSegment(suffix) + `$`

	m, err := CompileMatcher(fmt.Sprintf(`%s(?!%s)\w{%d}%s`, head, v.token, len(v.token), tail))
	if err != nil {
		return nil, err
	}
	shape, err := regexp2.Compile(fmt.Sprintf(`%s\w{%d}%s`, head, len(v.token), tail), regexp2.None)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidPattern, "invalid name shape for %q", source)
	}
	shape.MatchTimeout = MatchTimeout
	m.source = source
	m.shape = shape

	logger := logging.GetLogger("versioner")
	logger.Trace().
		Str("name", source).
		Str("pattern", m.String()).
		Msg("Built stale matcher")
	return m, nil
}

// Match reports whether path is stale. Paths use either separator. A match
// that errors (timeout) counts as no match.
func (m *StaleMatcher) Match(path string) bool {
	return m.match(m.re, path)
}

// Covers reports whether path has the matcher's shape with any token,
// the current one included. Compiled matchers cover nothing.
func (m *StaleMatcher) Covers(path string) bool {
	if m.shape == nil {
		return false
	}
	return m.match(m.shape, path)
}

func (m *StaleMatcher) match(re *regexp2.Regexp, path string) bool {
	ok, err := re.MatchString(path)
	if err != nil {
		logger := logging.GetLogger("versioner")
		logger.Warn().
			Err(err).
			Str("pattern", re.String()).
			Str("path", path).
			Msg("Stale matcher failed, treating as no match")
		return false
	}
	return ok
}

// String returns the regular expression.
func (m *StaleMatcher) String() string {
	return m.re.String()
}

// Source returns the name the matcher was built from, or the pattern for
// compiled matchers.
func (m *StaleMatcher) Source() string {
	return m.source
}

func basename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

func escapeSegment(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range bracketPlaceholder.FindAllStringIndex(s, -1) {
		b.WriteString(regexp2.Escape(s[last:loc[0]]))
		if s[loc[0]:loc[1]] == extPlaceholder {
			b.WriteString(`[\w.]+`)
		} else {
			b.WriteString(`\w+`)
		}
		last = loc[1]
	}
	b.WriteString(regexp2.Escape(s[last:]))
	return b.String()
}
