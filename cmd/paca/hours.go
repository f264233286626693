package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/service"
)

func newHoursCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var projectName string
	var period string
	var periodDate string

	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Display total worked hours",
		Long:  "Display total worked hours and their value for a day, week, fortnight or month, optionally for one project.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			summary, err := timesheetService.Hours(ctx, projectName, period, periodDate)
			if err != nil {
				return err
			}

			scope := "all projects"
			if projectName != "" {
				scope = projectName
			}
			fmt.Printf("Hours for %s, %s until %s\n", scope,
				timesheetService.FormatTime(ctx, summary.From),
				timesheetService.FormatTime(ctx, summary.To))
			fmt.Printf("Total: %s (%.2f hours)\n", timesheetService.FormatDuration(summary.Duration), summary.Duration.Hours())
			fmt.Printf("Billable: %s\n", service.FormatAmount(summary.Amount))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Filter by project name")
	cmd.Flags().StringVar(&period, "period", "week", "Period type: day, week, fortnight, month")
	cmd.Flags().StringVarP(&periodDate, "date", "d", "", "Date in the period (YYYY-MM-DD), defaults to today")

	return cmd
}
