// Package versioner stamps filename templates with a version token and
// derives, for every stamped name, a matcher recognising the same name
// carrying any other token of the same length.
package versioner

import (
	"context"
	"regexp"
	"strings"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/logging"
	"github.com/arthur-debert/githash/pkg/types"
)

const (
	// DefaultPlaceholder is replaced by the version token in templates
	DefaultPlaceholder = "[githash]"

	// DefaultHashLength is the requested short hash length
	DefaultHashLength = 7
)

var tokenPattern = regexp.MustCompile(`^\w+$`)

// Versioner owns the placeholder and the version token.
type Versioner struct {
	placeholder string
	token       string
}

// Option configures a Versioner.
type Option func(*Versioner)

// WithPlaceholder overrides DefaultPlaceholder. An empty value is ignored.
func WithPlaceholder(placeholder string) Option {
	return func(v *Versioner) {
		if placeholder != "" {
			v.placeholder = placeholder
		}
	}
}

// New creates a Versioner for token. The token must be made of word
// characters since it is matched with \w in stale matchers.
func New(token string, opts ...Option) (*Versioner, error) {
	if !tokenPattern.MatchString(token) {
		return nil, errors.Newf(errors.ErrInvalidInput, "version token %q must be non-empty and contain only word characters", token)
	}

	v := &Versioner{
		placeholder: DefaultPlaceholder,
		token:       token,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Resolve picks the version token. A non-empty explicit token is used
// verbatim and src is never consulted. Otherwise src is asked for a short
// hash of lengthHint characters (DefaultHashLength when lengthHint <= 0).
func Resolve(ctx context.Context, src types.VersionSource, explicit string, lengthHint int) (string, error) {
	logger := logging.GetLogger("versioner")

	if explicit != "" {
		logger.Debug().Str("token", explicit).Msg("Using explicit version token")
		return explicit, nil
	}

	if lengthHint <= 0 {
		lengthHint = DefaultHashLength
	}
	if src == nil {
		return "", errors.New(errors.ErrVersionUnavailable, "no version source configured and no explicit token given")
	}

	token, err := src.ShortHash(ctx, lengthHint)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrVersionUnavailable) {
			return "", err
		}
		return "", errors.Wrap(err, errors.ErrVersionUnavailable, "cannot resolve version token")
	}
	if token == "" {
		return "", errors.New(errors.ErrVersionUnavailable, "version source returned an empty token")
	}

	logger.Debug().Str("token", token).Int("length", len(token)).Msg("Resolved version token")
	return token, nil
}

// Token returns the version token.
func (v *Versioner) Token() string { return v.token }

// Length returns the token length used in every stale matcher.
func (v *Versioner) Length() int { return len(v.token) }

// Placeholder returns the placeholder replaced by Substitute.
func (v *Versioner) Placeholder() string { return v.placeholder }

// Substitute replaces the first placeholder occurrence in template with the
// token. It returns template unchanged and false when the placeholder is
// absent, which includes already substituted names.
func (v *Versioner) Substitute(template string) (string, bool) {
	if !strings.Contains(template, v.placeholder) {
		return template, false
	}
	return strings.Replace(template, v.placeholder, v.token, 1), true
}
