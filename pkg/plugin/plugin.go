// Package plugin wires the versioner and the cleanup engine into a build
// host's lifecycle: templates are stamped when the plugin is applied, assets
// are stamped and stale files removed when the host reports its assets
// ready, and the completion callback fires when the build is done.
package plugin

import (
	"context"
	"sort"

	"github.com/arthur-debert/githash/pkg/cleanup"
	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/filesystem"
	"github.com/arthur-debert/githash/pkg/logging"
	"github.com/arthur-debert/githash/pkg/types"
	"github.com/arthur-debert/githash/pkg/vcs"
	"github.com/arthur-debert/githash/pkg/versioner"
)

// Options are the plugin's construction options.
type Options struct {
	// Placeholder replaced in templates (versioner.DefaultPlaceholder when empty)
	Placeholder string

	// Cleanup enables stale file deletion
	Cleanup bool

	// SkipHash is an explicit version token; the version source is not
	// consulted when it is set
	SkipHash string

	// HashLength is the requested short hash length (versioner.DefaultHashLength when <= 0)
	HashLength int

	// OutputPath is scanned for stale files; defaults to the host's output path
	OutputPath string

	// Regex pre-seeds stale matcher patterns keyed by asset name
	Regex map[string]string

	// Keep lists globs of files never deleted
	Keep []string

	// Concurrency bounds parallel deletions
	Concurrency int

	// DryRun reports stale files without deleting them
	DryRun bool

	// Callback receives the version, deleted files and stats when the build completes
	Callback types.CompletionFunc

	// OnError receives non-fatal cleanup errors
	OnError func(error)
}

// Deps are the plugin's collaborators. Zero values fall back to git in the
// working directory and the OS filesystem.
type Deps struct {
	Source types.VersionSource
	FS     types.FS
}

// Plugin stamps build output with a version token.
type Plugin struct {
	versioner *versioner.Versioner
	engine    *cleanup.Engine
	opts      Options
}

// New resolves the version token and builds the cleanup engine. It fails
// with ErrVersionUnavailable when no token can be resolved.
func New(ctx context.Context, opts Options, deps Deps) (*Plugin, error) {
	logger := logging.GetLogger("plugin")

	if deps.Source == nil {
		deps.Source = vcs.NewGit("")
	}
	if deps.FS == nil {
		deps.FS = filesystem.NewOS()
	}

	token, err := versioner.Resolve(ctx, deps.Source, opts.SkipHash, opts.HashLength)
	if err != nil {
		return nil, err
	}

	v, err := versioner.New(token, versioner.WithPlaceholder(opts.Placeholder))
	if err != nil {
		return nil, err
	}

	seeded := make(map[string]*versioner.StaleMatcher, len(opts.Regex))
	for key, pattern := range opts.Regex {
		m, err := versioner.CompileMatcher(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidPattern, "invalid regex for %q", key)
		}
		seeded[key] = m
	}

	engine, err := cleanup.New(v, deps.FS, cleanup.Options{
		Enabled:     opts.Cleanup,
		OutputPath:  opts.OutputPath,
		Matchers:    seeded,
		Keep:        opts.Keep,
		Concurrency: opts.Concurrency,
		DryRun:      opts.DryRun,
		OnError:     opts.OnError,
		OnComplete:  opts.Callback,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("version", v.Token()).
		Str("placeholder", v.Placeholder()).
		Bool("cleanup", opts.Cleanup).
		Msg("Plugin initialized")

	return &Plugin{versioner: v, engine: engine, opts: opts}, nil
}

// Version returns the version token.
func (p *Plugin) Version() string { return p.versioner.Token() }

// HashLength returns the token length.
func (p *Plugin) HashLength() int { return p.versioner.Length() }

// Placeholder returns the placeholder being replaced.
func (p *Plugin) Placeholder() string { return p.versioner.Placeholder() }

// CleanupEnabled reports whether stale files are deleted.
func (p *Plugin) CleanupEnabled() bool { return p.engine.Enabled() }

// Versioner exposes the underlying versioner.
func (p *Plugin) Versioner() *versioner.Versioner { return p.versioner }

// Engine exposes the cleanup engine.
func (p *Plugin) Engine() *cleanup.Engine { return p.engine }

// StampTemplates substitutes the placeholder in every named template and
// registers a stale matcher for each stamped one under its key. suffix is
// appended to the template for the matcher only, for hosts that add the
// extension themselves (e.g. ".[ext]"). Templates are updated in place; the
// keys that changed are returned sorted.
func (p *Plugin) StampTemplates(templates map[string]*string, suffix string) []string {
	logger := logging.GetLogger("plugin")

	var changed []string
	for key, tmpl := range templates {
		if tmpl == nil || *tmpl == "" {
			continue
		}
		stamped, ok := p.versioner.Substitute(*tmpl)
		if !ok {
			continue
		}
		p.engine.Register(key, *tmpl+suffix)
		*tmpl = stamped
		changed = append(changed, key)
		logger.Info().Str("option", key).Str("template", stamped).Msg("Stamped output template")
	}
	sort.Strings(changed)
	return changed
}
