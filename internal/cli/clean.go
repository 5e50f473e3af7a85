package cli

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/logging"
	"github.com/arthur-debert/githash/pkg/plugin"
)

func newCleanCmd(g *globalOptions) *cobra.Command {
	var (
		output string
		format string
		keep   []string
	)

	cmd := &cobra.Command{
		Use:     "clean [names...]",
		Short:   MsgCleanShort,
		Long:    MsgCleanLong,
		Example: MsgCleanExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.clean")

			if err := validFormat(format); err != nil {
				return err
			}

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			opts := cfg.PluginOptions()
			opts.Cleanup = true
			opts.DryRun = g.dryRun
			opts.Keep = append(opts.Keep, keep...)
			if output != "" {
				opts.OutputPath = output
			}
			if opts.OutputPath == "" {
				return errors.New(errors.ErrInvalidInput, MsgErrNoOutputPath)
			}
			if len(args) == 0 && len(opts.Regex) == 0 {
				return errors.New(errors.ErrInvalidInput, MsgErrNoMatchers)
			}

			p, err := plugin.New(cmd.Context(), opts, plugin.Deps{})
			if err != nil {
				return err
			}

			engine := p.Engine()
			for _, name := range args {
				if !engine.Register(name, name) {
					logger.Warn().Str("name", name).Msg("Name does not carry the version, skipping")
				}
			}

			lock, err := lockOutput(opts.OutputPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn().Err(err).Msg("Failed to release output lock")
				}
			}()

			report, err := engine.Clean(cmd.Context())
			if err != nil {
				return err
			}

			result := newCleanResult(p.Version(), opts.OutputPath, opts.DryRun, report)
			if err := renderCleanResult(cmd.OutOrStdout(), format, result); err != nil {
				return err
			}

			if len(report.Errors) > 0 {
				return errors.Newf(errors.ErrDeletionFailed, MsgErrDeletions, len(report.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)
	cmd.Flags().StringVarP(&format, "format", "f", FormatText, MsgFlagFormat)
	cmd.Flags().StringArrayVar(&keep, "keep", nil, MsgFlagKeep)
	return cmd
}
