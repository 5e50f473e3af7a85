// Package cli implements the githash command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/githash/internal/version"
	"github.com/arthur-debert/githash/pkg/config"
	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/logging"
	"github.com/arthur-debert/githash/pkg/vcs"
	"github.com/arthur-debert/githash/pkg/versioner"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbosity  int
	configPath string
	dryRun     bool
}

func (g *globalOptions) loadConfig() (*config.Config, error) {
	return config.Load(g.configPath)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "githash",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Str("build", version.String()).Msg("Command started")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().BoolVar(&g.dryRun, "dry-run", false, MsgFlagDryRun)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetHelpCommandGroupID("misc")
	rootCmd.SetCompletionCommandGroupID("misc")

	rootCmd.AddCommand(newHashCmd(g))
	rootCmd.AddCommand(newCleanCmd(g))
	rootCmd.AddCommand(newBuildCmd(g))
	rootCmd.AddCommand(newGenConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Long:    MsgVersionLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "githash version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}

func newHashCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "hash",
		Short:   MsgHashShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			token, err := versioner.Resolve(cmd.Context(), vcs.NewGit(""), cfg.SkipHash, cfg.HashLength)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newGenConfigCmd(g *globalOptions) *cobra.Command {
	var (
		template bool
		diff     bool
		write    bool
	)

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.genconfig")

			var content []byte
			switch {
			case template:
				content = []byte(config.GenerateConfigContent())
			case diff:
				cfg, err := g.loadConfig()
				if err != nil {
					return err
				}
				out, err := config.Diff(cfg)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			default:
				cfg, err := g.loadConfig()
				if err != nil {
					return err
				}
				if content, err = config.Marshal(cfg); err != nil {
					return err
				}
			}

			if !write {
				_, err := cmd.OutOrStdout().Write(content)
				return err
			}

			target := config.FileNames[0]
			if _, err := os.Stat(target); err == nil {
				return errors.Newf(errors.ErrFileWrite, MsgErrConfigExists, target)
			}
			if err := os.WriteFile(target, content, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", target)
			}
			logger.Info().Str("path", target).Msg("Wrote config file")
			fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&template, "template", false, MsgFlagTemplate)
	cmd.Flags().BoolVar(&diff, "diff", false, MsgFlagDiff)
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	return cmd
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man [dir]",
		Short:   MsgManShort,
		Long:    "Write the githash man page to stdout, or one page per command into dir.",
		GroupID: "misc",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "GITHASH",
				Section: "1",
				Source:  "githash " + version.Version,
				Manual:  "githash manual",
			}
			if len(args) == 0 {
				return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
			}
			if err := os.MkdirAll(args[0], 0755); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", args[0])
			}
			return doc.GenManTree(cmd.Root(), header, args[0])
		},
	}
}
