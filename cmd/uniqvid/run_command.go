package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"uniqvid/internal/logging"
	"uniqvid/internal/profile"
	"uniqvid/internal/variant"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		copies    int
		strength  string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Render variant copies locally, without the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("prepare directories: %w", err)
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			input, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve input path: %w", err)
			}
			if strength == "" {
				strength = cfg.Video.DefaultStrength
			}

			service, err := variant.NewService(cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			paths, err := service.UniqueVideo(cmd.Context(), input, copies, outputDir,
				profile.ParseStrength(strength),
				func(index int, path string) {
					fmt.Fprintf(out, "copy %d/%d done: %s\n", index, copies, filepath.Base(path))
				})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Rendered %d copies:\n", len(paths))
			for _, p := range paths {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&copies, "copies", "n", 5, "Number of variant copies to render")
	cmd.Flags().StringVarP(&strength, "strength", "s", "", "Randomization strength (low, medium, high)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: 'unique' beside the input)")
	return cmd
}
