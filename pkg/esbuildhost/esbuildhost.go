// Package esbuildhost runs the githash plugin inside esbuild builds.
//
// The adapter stamps esbuild's entry, chunk and asset name templates during
// setup and takes over writing output files, so that stale files are removed
// before esbuild reports the build as finished.
package esbuildhost

import (
	"context"
	"path/filepath"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/logging"
	"github.com/arthur-debert/githash/pkg/plugin"
	"github.com/arthur-debert/githash/pkg/types"
)

// Name is the plugin name reported to esbuild.
const Name = "githash"

const extPlaceholder = "[ext]"

// New returns an esbuild plugin driving p. Output files are written to fsys
// when the build options ask for writing.
func New(p *plugin.Plugin, fsys types.FS) api.Plugin {
	return api.Plugin{
		Name: Name,
		Setup: func(build api.PluginBuild) {
			setup(p, fsys, build)
		},
	}
}

func setup(p *plugin.Plugin, fsys types.FS, build api.PluginBuild) {
	logger := logging.GetLogger("esbuildhost")
	opts := build.InitialOptions

	// esbuild appends the extension itself
	stamped := p.StampTemplates(map[string]*string{
		"entryNames": &opts.EntryNames,
		"chunkNames": &opts.ChunkNames,
		"assetNames": &opts.AssetNames,
	}, "."+extPlaceholder)
	logger.Debug().Strs("templates", stamped).Msg("Stamped esbuild name templates")

	outdir := opts.Outdir
	if outdir == "" && opts.Outfile != "" {
		outdir = filepath.Dir(opts.Outfile)
	}
	if outdir != "" {
		if abs, err := filepath.Abs(outdir); err == nil {
			outdir = abs
		}
	}
	p.Engine().SetOutputPath(outdir)

	write := opts.Write
	opts.Write = false

	var start time.Time
	build.OnStart(func() (api.OnStartResult, error) {
		start = time.Now()
		return api.OnStartResult{}, nil
	})

	build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
		if len(result.Errors) > 0 {
			// nothing is emitted or cleaned for failed builds
			logger.Warn().Int("errors", len(result.Errors)).Msg("Build failed, skipping stamping and cleanup")
			p.Engine().OnBuildFailed(types.Stats{
				Errors:   len(result.Errors),
				Warnings: len(result.Warnings),
				Duration: time.Since(start),
			})
			return api.OnEndResult{}, nil
		}
		return onEnd(p, fsys, outdir, write, start, result), nil
	})
}

func onEnd(p *plugin.Plugin, fsys types.FS, outdir string, write bool, start time.Time, result *api.BuildResult) api.OnEndResult {
	logger := logging.GetLogger("esbuildhost")
	engine := p.Engine()

	assets := make(types.Assets, len(result.OutputFiles))
	for _, file := range result.OutputFiles {
		assets[relativeName(outdir, file.Path)] = file.Contents
	}

	var writeErr error
	engine.OnAssetsReady(context.Background(), assets, func() {
		if write {
			writeErr = writeAssets(fsys, outdir, assets)
		}
	})

	// keep esbuild's view in sync with renamed assets
	for i, file := range result.OutputFiles {
		if stamped, ok := p.Versioner().Substitute(relativeName(outdir, file.Path)); ok {
			result.OutputFiles[i].Path = filepath.Join(outdir, filepath.FromSlash(stamped))
		}
	}

	stats := types.Stats{
		Assets:   len(assets),
		Errors:   len(result.Errors),
		Warnings: len(result.Warnings),
		Duration: time.Since(start),
	}
	for _, content := range assets {
		stats.Bytes += int64(len(content))
	}

	var end api.OnEndResult
	if writeErr != nil {
		logger.Error().Err(writeErr).Msg("Failed to write build output")
		end.Errors = append(end.Errors, api.Message{PluginName: Name, Text: writeErr.Error()})
		stats.Errors++
	}
	for _, err := range engine.Errors() {
		end.Warnings = append(end.Warnings, api.Message{PluginName: Name, Text: err.Error()})
	}

	engine.OnBuildComplete(stats)
	return end
}

func relativeName(outdir, path string) string {
	if outdir == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(outdir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func writeAssets(fsys types.FS, outdir string, assets types.Assets) error {
	for _, name := range assets.Names() {
		target := filepath.FromSlash(name)
		if !filepath.IsAbs(target) {
			target = filepath.Join(outdir, target)
		}
		if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot create directory for %s", name)
		}
		if err := fsys.WriteFile(target, assets[name], 0644); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", name)
		}
	}
	return nil
}
