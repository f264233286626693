package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/service"
)

func newStopCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer",
		Long:  "Stop the running timer and record the end time, optionally with a description.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			entry, err := timesheetService.StopTimer(ctx, description)
			if err != nil {
				return err
			}

			fmt.Printf("Stopped timer for %s\n", entry.ProjectName)
			fmt.Printf("Duration: %s\n", timesheetService.FormatDuration(entry.Duration()))
			fmt.Printf("Started: %s, Ended: %s\n",
				timesheetService.FormatTime(ctx, entry.StartTime),
				timesheetService.FormatTime(ctx, *entry.EndTime))

			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the work")

	return cmd
}
