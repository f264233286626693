package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/service"
	"github.com/wes/paca/internal/utils"
)

func newTimesheetCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "timesheet",
		Short: "Show unbilled time per project",
		Long:  "List closed, uninvoiced time for every billable project with its running total.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			groups, err := timesheetService.Timesheets(ctx)
			if err != nil {
				return err
			}

			if len(groups) == 0 {
				fmt.Println("No unbilled time.")
				return nil
			}

			var grand float64
			for _, g := range groups {
				customer := "no customer"
				if g.Project.Customer != nil {
					customer = g.Project.Customer.Name
				}
				fmt.Printf("%s (%s) - %d entries - %.2f hours - %s\n",
					g.Project.Name, customer, len(g.Entries), g.TotalHours(), service.FormatAmount(g.TotalAmount))
				grand += g.TotalAmount

				if verbose {
					for _, e := range g.Entries {
						fmt.Printf("  %s  %s  %s  %s\n",
							e.ID,
							timesheetService.FormatTime(ctx, e.StartTime),
							timesheetService.FormatDuration(e.Duration()),
							utils.Truncate(utils.FromPtr(e.Description), 40))
					}
				}
			}
			fmt.Printf("\nTotal unbilled: %s\n", service.FormatAmount(grand))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List each entry")
	return cmd
}
