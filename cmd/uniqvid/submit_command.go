package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"uniqvid/internal/api"
)

func daemonClient(ctx *commandContext, addrFlag string) (*api.Client, error) {
	addr := addrFlag
	if addr == "" {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return nil, err
		}
		addr = cfg.Paths.APIBind
	}
	return api.NewClient(addr)
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		copies   int
		strength string
		addr     string
	)

	cmd := &cobra.Command{
		Use:   "submit <video>",
		Short: "Upload a video to the daemon and queue a variant job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := daemonClient(ctx, addr)
			if err != nil {
				return err
			}

			upload, err := client.Upload(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			job, err := client.SubmitJob(cmd.Context(), api.SubmitJobRequest{
				UploadID: upload.UploadID,
				Copies:   copies,
				Strength: strength,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s queued: %d copies at %s strength\n", job.ID, job.Copies, job.Strength)
			return nil
		},
	}

	cmd.Flags().IntVarP(&copies, "copies", "n", 5, "Number of variant copies to render")
	cmd.Flags().StringVarP(&strength, "strength", "s", "", "Randomization strength (low, medium, high)")
	cmd.Flags().StringVar(&addr, "addr", "", "Daemon API address (default: api_bind from config)")
	return cmd
}
