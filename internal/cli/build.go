package cli

import (
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/esbuildhost"
	"github.com/arthur-debert/githash/pkg/filesystem"
	"github.com/arthur-debert/githash/pkg/logging"
	"github.com/arthur-debert/githash/pkg/plugin"
	"github.com/arthur-debert/githash/pkg/style"
	"github.com/arthur-debert/githash/pkg/types"
)

type buildFlags struct {
	outdir     string
	entryNames string
	chunkNames string
	assetNames string
	minify     bool
	splitting  bool
	sourcemap  bool
}

func newBuildCmd(g *globalOptions) *cobra.Command {
	f := &buildFlags{}

	cmd := &cobra.Command{
		Use:     "build [entrypoints...]",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.build")

			if len(args) == 0 {
				return errors.New(errors.ErrInvalidInput, MsgErrNoEntryPoints)
			}

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			outdir := f.outdir
			if outdir == "" {
				outdir = cfg.OutputPath
			}
			if outdir == "" {
				outdir = "dist"
			}

			var deleted []string
			var stats types.Stats
			opts := cfg.PluginOptions()
			opts.OutputPath = outdir
			opts.DryRun = g.dryRun
			opts.Callback = func(_ string, d []string, s types.Stats) {
				deleted, stats = d, s
			}

			p, err := plugin.New(cmd.Context(), opts, plugin.Deps{})
			if err != nil {
				return err
			}

			lock, err := lockOutput(outdir)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn().Err(err).Msg("Failed to release output lock")
				}
			}()

			result := api.Build(f.options(args, outdir, p))
			if len(result.Errors) > 0 {
				for _, msg := range result.Errors {
					logger.Error().Str("plugin", msg.PluginName).Msg(msg.Text)
				}
				return errors.Newf(errors.ErrInternal, MsgErrBuildFailed, len(result.Errors)).
					WithDetail("first", result.Errors[0].Text)
			}
			for _, msg := range result.Warnings {
				logger.Warn().Str("plugin", msg.PluginName).Msg(msg.Text)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgVersionLine, style.VersionStyle.Render(p.Version()))
			fmt.Fprintf(out, MsgBuildOutputs, stats.Assets, stats.Bytes, style.MutedStyle.Render(outdir))
			if len(deleted) > 0 {
				fmt.Fprintln(out, style.TitleStyle.Render(MsgDeletedHeader))
				fmt.Fprint(out, list(deleted, style.SuccessStyle.Render))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.outdir, "outdir", "", MsgFlagOutdir)
	cmd.Flags().StringVar(&f.entryNames, "entry-names", "[name]-[githash]", MsgFlagEntryNames)
	cmd.Flags().StringVar(&f.chunkNames, "chunk-names", "chunks/[name]-[githash]", MsgFlagChunkNames)
	cmd.Flags().StringVar(&f.assetNames, "asset-names", "assets/[name]-[githash]", MsgFlagAssetNames)
	cmd.Flags().BoolVar(&f.minify, "minify", false, MsgFlagMinify)
	cmd.Flags().BoolVar(&f.splitting, "splitting", false, MsgFlagSplitting)
	cmd.Flags().BoolVar(&f.sourcemap, "sourcemap", false, MsgFlagSourcemap)
	return cmd
}

// options translates the flags into esbuild build options with the githash
// plugin attached.
func (f *buildFlags) options(entryPoints []string, outdir string, p *plugin.Plugin) api.BuildOptions {
	opts := api.BuildOptions{
		EntryPoints:       entryPoints,
		Outdir:            outdir,
		EntryNames:        f.entryNames,
		ChunkNames:        f.chunkNames,
		AssetNames:        f.assetNames,
		Bundle:            true,
		Write:             true,
		MinifyWhitespace:  f.minify,
		MinifyIdentifiers: f.minify,
		MinifySyntax:      f.minify,
		Splitting:         f.splitting,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{esbuildhost.New(p, filesystem.NewOS())},
	}
	if f.splitting {
		opts.Format = api.FormatESModule
	}
	if f.sourcemap {
		opts.Sourcemap = api.SourceMapLinked
	}
	return opts
}
