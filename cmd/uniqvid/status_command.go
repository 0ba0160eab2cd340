package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"uniqvid/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status [job-id]",
		Short: "Show active jobs on the daemon",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := daemonClient(ctx, addr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				job, err := client.Job(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderJobTable([]api.JobView{*job}, shouldColorize(out)))
				return nil
			}

			jobs, err := client.Jobs(cmd.Context())
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No active jobs")
				return nil
			}
			fmt.Fprintln(out, renderJobTable(jobs, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Daemon API address (default: api_bind from config)")
	return cmd
}

func renderJobTable(jobs []api.JobView, colorize bool) string {
	headers := []string{"ID", "Source", "Status", "Copies", "Produced", "Strength", "Queued"}
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		status := job.Status
		if colorize {
			status = colorizeStatus(status)
		}
		rows = append(rows, []string{
			shortID(job.ID),
			job.OriginalName,
			status,
			strconv.Itoa(job.Copies),
			strconv.Itoa(job.Produced),
			job.Strength,
			job.CreatedAt.Local().Format("15:04:05"),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}
	return renderTable(headers, rows, aligns)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
