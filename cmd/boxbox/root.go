package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/boxbox/internal/config"
	"github.com/okian/boxbox/pkg/logger"
)

// commandContext carries flag overrides and the loaded configuration to the
// subcommands.
type commandContext struct {
	configFlag    string
	yearFlag      int
	outputDirFlag string
	noCacheFlag   bool

	cfg *config.Config
}

// ensureConfig loads configuration once and applies flag overrides.
func (c *commandContext) ensureConfig(cmd *cobra.Command) error {
	if c.cfg != nil {
		return nil
	}
	if c.configFlag != "" {
		if err := os.Setenv("BOXBOX_CONFIG", c.configFlag); err != nil {
			return err
		}
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("year") {
		cfg.Year = c.yearFlag
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = c.outputDirFlag
	}
	if c.noCacheFlag {
		cfg.CachePath = ""
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c.cfg = cfg
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "boxbox",
		Short:         "F1 pit-stop and overtaking analytics pipeline",
		Long:          "boxbox fetches a season's race data from two providers,\ninfers pit-stop and overtaking events, and writes JSON analytics documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(); err != nil {
				return err
			}
			return ctx.ensureConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().IntVar(&ctx.yearFlag, "year", 0, "season year to process")
	rootCmd.PersistentFlags().StringVar(&ctx.outputDirFlag, "output-dir", "", "directory for export documents")
	rootCmd.PersistentFlags().BoolVar(&ctx.noCacheFlag, "no-cache", false, "bypass the fetch cache")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newPitStopsCommand(ctx))
	rootCmd.AddCommand(newOvertakesCommand(ctx))
	rootCmd.AddCommand(newRoundsCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))

	return rootCmd
}
