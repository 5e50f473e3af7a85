package plugin

import (
	"context"

	"github.com/arthur-debert/githash/pkg/logging"
	"github.com/arthur-debert/githash/pkg/types"
)

// Output holds the host's output templates and directory.
type Output struct {
	Filename      string
	ChunkFilename string
	Path          string
}

// AssetsHook runs before the host writes assets. It may rename entries in
// assets and must call finalize exactly once when done.
type AssetsHook func(ctx context.Context, assets types.Assets, finalize func())

// DoneHook runs after the host finished a build.
type DoneHook func(stats types.Stats)

// Host is a bundler exposing webpack-style output options and lifecycle
// events.
type Host interface {
	// Output returns the mutable output options
	Output() *Output

	// OnAssetsReady registers a hook fired before assets are written
	OnAssetsReady(hook AssetsHook)

	// OnDone registers a hook fired when a build completes
	OnDone(hook DoneHook)
}

// Apply hooks the plugin into host. The filename and chunk filename
// templates are stamped immediately and the output path defaults to the
// host's.
func (p *Plugin) Apply(host Host) {
	out := host.Output()
	if out != nil {
		p.StampTemplates(map[string]*string{
			"filename":      &out.Filename,
			"chunkFilename": &out.ChunkFilename,
		}, "")
		p.engine.SetOutputPath(out.Path)
	}

	host.OnAssetsReady(func(ctx context.Context, assets types.Assets, finalize func()) {
		p.engine.OnAssetsReady(ctx, assets, finalize)
	})
	host.OnDone(func(stats types.Stats) {
		p.engine.OnBuildComplete(stats)
	})

	logger := logging.GetLogger("plugin")
	logger.Debug().
		Str("outputPath", p.engine.OutputPath()).
		Bool("cleanup", p.engine.Enabled()).
		Msg("Plugin applied")
}
