package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/service"
)

func newStatusCmd(timesheetService *service.TimesheetService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running timer and recent totals",
		Long:  "Display the running timer, if any, and the time tracked today, this week and this month.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			entry, err := timesheetService.ActiveEntry(ctx)
			if err != nil {
				return err
			}

			if entry == nil {
				fmt.Println("No running timer.")
			} else {
				fmt.Printf("Running timer:\n")
				fmt.Printf("Project: %s\n", entry.ProjectName)
				fmt.Printf("Started: %s\n", timesheetService.FormatTime(ctx, entry.StartTime))
				fmt.Printf("Elapsed: %s\n", timesheetService.FormatDuration(timesheetService.CalculateDuration(entry)))
			}

			totals, err := timesheetService.TimeStats(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("\nToday: %s | Week: %s | Month: %s\n",
				msToDuration(totals.TodayMs),
				msToDuration(totals.WeekMs),
				msToDuration(totals.MonthMs))

			return nil
		},
	}

	return cmd
}
