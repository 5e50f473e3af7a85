// Package cleanup applies version stamping to the assets a build host is
// about to emit and removes previously emitted files that carry a stale
// version token.
package cleanup

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/semaphore"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/logging"
	"github.com/arthur-debert/githash/pkg/types"
	"github.com/arthur-debert/githash/pkg/versioner"
)

// DefaultConcurrency bounds parallel deletions during a cleanup pass.
const DefaultConcurrency = 8

// State is the engine's position in the per-build lifecycle.
type State int

const (
	StateIdle State = iota
	StateSubstituting
	StateMatchersRegistered
	StateScanning
	StateDeleting
	StateDone
)

var stateNames = map[State]string{
	StateIdle:               "idle",
	StateSubstituting:       "substituting",
	StateMatchersRegistered: "matchers-registered",
	StateScanning:           "scanning",
	StateDeleting:           "deleting",
	StateDone:               "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Options configures an Engine. Enabled is fixed for the engine's lifetime.
type Options struct {
	// Enabled turns on stale-file deletion
	Enabled bool

	// OutputPath is the directory scanned for stale files
	OutputPath string

	// Matchers are pre-seeded stale matchers keyed by asset name. They take
	// precedence over matchers registered at runtime for the same key.
	Matchers map[string]*versioner.StaleMatcher

	// Keep lists doublestar globs for files that are never deleted
	Keep []string

	// Concurrency bounds parallel deletions (DefaultConcurrency when <= 0)
	Concurrency int

	// DryRun reports stale files without removing them
	DryRun bool

	// OnError receives every non-fatal scan and deletion error
	OnError func(error)

	// OnComplete is invoked by OnBuildComplete
	OnComplete types.CompletionFunc
}

// Engine owns the stale matcher registry and the per-build deletion record.
type Engine struct {
	versioner *versioner.Versioner
	fs        types.FS
	opts      Options
	sem       *semaphore.Weighted

	mu       sync.Mutex
	seeded   map[string]*versioner.StaleMatcher
	matchers map[string]*versioner.StaleMatcher
	deleted  []string
	errs     []error
	state    State
}

// New creates an Engine. It fails when a keep glob is malformed.
func New(v *versioner.Versioner, fsys types.FS, opts Options) (*Engine, error) {
	for _, pattern := range opts.Keep {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf(errors.ErrInvalidPattern, "invalid keep glob %q", pattern)
		}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	seeded := make(map[string]*versioner.StaleMatcher, len(opts.Matchers))
	for key, m := range opts.Matchers {
		if m != nil {
			seeded[key] = m
		}
	}

	return &Engine{
		versioner: v,
		fs:        fsys,
		opts:      opts,
		sem:       semaphore.NewWeighted(int64(opts.Concurrency)),
		seeded:    seeded,
		matchers:  make(map[string]*versioner.StaleMatcher),
	}, nil
}

// Enabled reports whether cleanup passes delete files.
func (e *Engine) Enabled() bool { return e.opts.Enabled }

// OutputPath returns the scanned directory.
func (e *Engine) OutputPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts.OutputPath
}

// SetOutputPath sets the scanned directory when none was configured.
func (e *Engine) SetOutputPath(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.opts.OutputPath == "" {
		e.opts.OutputPath = path
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// OnAssetsReady stamps every asset name, keeps assets consistent with the
// new names, registers one matcher per original asset name and, when
// enabled, runs a cleanup pass. finalize is called exactly once, after all
// renames and deletions are complete.
func (e *Engine) OnAssetsReady(ctx context.Context, assets types.Assets, finalize func()) {
	logger := logging.GetLogger("cleanup")

	e.mu.Lock()
	e.deleted = nil
	e.errs = nil
	e.mu.Unlock()

	e.setState(StateSubstituting)
	for _, name := range assets.Names() {
		final, changed := e.versioner.Substitute(name)
		if changed {
			assets.Rename(name, final)
			logger.Debug().Str("from", name).Str("to", final).Msg("Stamped asset")
		} else {
			logger.Trace().Str("asset", name).Msg("No placeholder in asset name")
		}
		e.Register(name, name)
	}
	e.setState(StateMatchersRegistered)

	if e.opts.Enabled {
		// errors are already reported through OnError and Errors()
		_, _ = e.Clean(ctx)
	}

	e.setState(StateDone)
	if finalize != nil {
		finalize()
	}
	e.setState(StateIdle)
}

// OnBuildComplete hands the version token, the files deleted during the
// last assets pass and stats to the completion callback.
func (e *Engine) OnBuildComplete(stats types.Stats) {
	deleted := e.DeletedFiles()

	logger := logging.GetLogger("cleanup")
	logger.Info().
		Str("version", e.versioner.Token()).
		Int("deleted", len(deleted)).
		Int("assets", stats.Assets).
		Msg("Build complete")

	if e.opts.OnComplete != nil {
		e.opts.OnComplete(e.versioner.Token(), deleted, stats)
	}
}

// OnBuildFailed completes a build that never reached the assets pass. The
// callback receives no deleted files, whatever the previous build removed.
func (e *Engine) OnBuildFailed(stats types.Stats) {
	e.mu.Lock()
	e.deleted = nil
	e.errs = nil
	e.mu.Unlock()

	e.OnBuildComplete(stats)
}

// Register records the stale matcher for key, built from template. The
// template is the name before substitution when known, otherwise the stamped
// name. An existing matcher for key is kept, and a stamped name already
// covered by a registered template matcher adds nothing. Names that do not
// carry the version token get no matcher. It reports whether the name is
// now matched.
func (e *Engine) Register(key, template string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	logger := logging.GetLogger("cleanup")

	if m, ok := e.seeded[key]; ok && m != nil {
		return true
	}
	if m, ok := e.matchers[key]; ok {
		return m != nil
	}
	if !strings.Contains(template, e.versioner.Placeholder()) && e.coveredLocked(template) {
		logger.Trace().Str("asset", key).Msg("Asset already covered by a template matcher")
		return true
	}

	m, err := e.versioner.TemplateMatcher(template)
	if err != nil {
		logger.Debug().
			Err(err).
			Str("asset", key).
			Msg("Asset is not versioned, no stale matcher registered")
		// remember the miss so repeated builds do not rebuild it
		e.matchers[key] = nil
		return false
	}
	e.matchers[key] = m
	return true
}

func (e *Engine) coveredLocked(name string) bool {
	for _, m := range e.matchers {
		if m != nil && m.Covers(name) {
			return true
		}
	}
	return false
}

// Matchers returns the active matchers, pre-seeded ones included, keyed by
// asset name.
func (e *Engine) Matchers() map[string]*versioner.StaleMatcher {
	e.mu.Lock()
	defer e.mu.Unlock()

	all := make(map[string]*versioner.StaleMatcher, len(e.seeded)+len(e.matchers))
	for key, m := range e.matchers {
		if m != nil {
			all[key] = m
		}
	}
	for key, m := range e.seeded {
		all[key] = m
	}
	return all
}

// Reset drops runtime matchers. Pre-seeded matchers stay.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.matchers = make(map[string]*versioner.StaleMatcher)
}

// DeletedFiles returns the files removed since the last assets pass, in
// listing order.
func (e *Engine) DeletedFiles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.deleted...)
}

// Errors returns the non-fatal errors reported since the last assets pass.
func (e *Engine) Errors() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]error{}, e.errs...)
}

func (e *Engine) report(err error) {
	e.mu.Lock()
	e.errs = append(e.errs, err)
	e.mu.Unlock()

	if e.opts.OnError != nil {
		e.opts.OnError(err)
	}
}

// sortedMatchers returns the active matchers ordered by key.
func (e *Engine) sortedMatchers() []*versioner.StaleMatcher {
	all := e.Matchers()
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]*versioner.StaleMatcher, 0, len(keys))
	for _, key := range keys {
		out = append(out, all[key])
	}
	return out
}
