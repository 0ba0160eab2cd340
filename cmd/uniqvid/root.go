package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"uniqvid/internal/config"
)

type commandContext struct {
	configFlag *string
	cfg        *config.Config
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, _, _, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "uniqvid",
		Short:         "Generate randomized, visually identical variants of a video",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newSubmitCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	return rootCmd
}
