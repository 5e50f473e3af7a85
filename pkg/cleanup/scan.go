package cleanup

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/logging"
	"github.com/arthur-debert/githash/pkg/versioner"
)

// Report summarises one cleanup pass. Paths are relative to the output
// path and slash separated.
type Report struct {
	RunID   string   `json:"run_id" yaml:"run_id"`
	Scanned int      `json:"scanned" yaml:"scanned"`
	Stale   []string `json:"stale" yaml:"stale"`
	Deleted []string `json:"deleted" yaml:"deleted"`
	Kept    []string `json:"kept,omitempty" yaml:"kept,omitempty"`
	Errors  []error  `json:"-" yaml:"-"`
}

// Clean scans the output path recursively and deletes every file matched by
// a registered matcher, unless it matches a keep glob. Deletions run
// concurrently and all of them finish before Clean returns. A failed
// deletion is reported and the pass continues. When the output path cannot
// be listed nothing is deleted and an ErrCleanupScanFailed error is returned.
// A disabled engine returns an empty report.
func (e *Engine) Clean(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	if !e.opts.Enabled {
		return report, nil
	}

	logger := logging.GetLogger("cleanup").With().Str("run", report.RunID).Logger()
	done := logging.LogOperationStart(logger, "cleanup")
	defer done()

	root := e.OutputPath()
	e.setState(StateScanning)

	if root == "" {
		err := errors.New(errors.ErrCleanupScanFailed, "no output path configured")
		e.report(err)
		report.Errors = append(report.Errors, err)
		return report, err
	}

	logger.Info().
		Str("path", root).
		Str("version", e.versioner.Token()).
		Msg("Cleaning up stale files")

	files, err := e.list(root)
	if err != nil {
		scanErr := errors.Wrapf(err, errors.ErrCleanupScanFailed, "cannot list output path %s", root).
			WithDetail("path", root)
		logger.Error().Err(scanErr).Msg("Cleanup scan failed")
		e.report(scanErr)
		report.Errors = append(report.Errors, scanErr)
		return report, scanErr
	}

	matchers := e.sortedMatchers()
	for _, rel := range files {
		report.Scanned++
		if !matchesAny(matchers, rel) {
			continue
		}
		if e.keep(rel) {
			logger.Debug().Str("file", rel).Msg("Stale file protected by keep glob")
			report.Kept = append(report.Kept, rel)
			continue
		}
		report.Stale = append(report.Stale, rel)
	}

	if e.opts.DryRun {
		for _, rel := range report.Stale {
			logger.Info().Str("file", rel).Msg("Would delete stale file")
		}
		return report, nil
	}

	e.setState(StateDeleting)
	results := e.remove(ctx, root, report.Stale)

	for i, rel := range report.Stale {
		if results[i] != nil {
			delErr := errors.Wrapf(results[i], errors.ErrDeletionFailed, "cannot delete %s", rel).
				WithDetail("path", rel)
			logger.Warn().Err(delErr).Msg("Failed to delete stale file")
			e.report(delErr)
			report.Errors = append(report.Errors, delErr)
			continue
		}
		logger.Info().Str("file", rel).Msg("Deleted stale file")
		report.Deleted = append(report.Deleted, rel)
	}

	e.mu.Lock()
	e.deleted = append(e.deleted, report.Deleted...)
	e.mu.Unlock()

	return report, nil
}

// remove deletes files in parallel, bounded by the engine's semaphore, and
// returns one result per file.
func (e *Engine) remove(ctx context.Context, root string, files []string) []error {
	results := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)

	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			if err := e.sem.Acquire(gctx, 1); err != nil {
				results[i] = err
				return nil
			}
			defer e.sem.Release(1)

			results[i] = e.fs.Remove(filepath.Join(root, filepath.FromSlash(rel)))
			return nil
		})
	}

	// goroutines never return errors; per-file results carry failures
	_ = g.Wait()
	return results
}

// list returns every regular file under root, relative and slash separated,
// in lexical order.
func (e *Engine) list(root string) ([]string, error) {
	info, err := e.fs.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrFileAccess, "%s is not a directory", root)
	}

	var files []string
	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		entries, err := e.fs.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			childRel := path.Join(rel, entry.Name())
			if entry.IsDir() {
				if err := walk(filepath.Join(dir, entry.Name()), childRel); err != nil {
					return err
				}
				continue
			}
			files = append(files, childRel)
		}
		return nil
	}

	if err := walk(root, ""); err != nil {
		return nil, err
	}
	return files, nil
}

// keep reports whether rel matches a keep glob. Globs without a slash are
// also tried against the basename.
func (e *Engine) keep(rel string) bool {
	for _, pattern := range e.opts.Keep {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if matched, _ := doublestar.Match(pattern, path.Base(rel)); matched {
				return true
			}
		}
	}
	return false
}

func matchesAny(matchers []*versioner.StaleMatcher, rel string) bool {
	for _, m := range matchers {
		if m.Match(rel) {
			return true
		}
	}
	return false
}
