package main

import (
	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/config"
	"github.com/wes/paca/internal/service"
)

func newRootCmd(timesheetService *service.TimesheetService, cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "paca",
		Short: "Time tracking and invoicing for freelance work",
		Long: `Track time against projects with a single running timer, review weekly totals and
bill unbilled time to customers as draft invoices.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newStartCmd(timesheetService),
		newStopCmd(timesheetService),
		newStatusCmd(timesheetService),
		newProjectsCmd(timesheetService),
		newCustomersCmd(timesheetService),
		newEntriesCmd(timesheetService),
		newWeeklyCmd(timesheetService, cfg),
		newHoursCmd(timesheetService),
		newTimesheetCmd(timesheetService),
		newInvoicesCmd(timesheetService),
		newExportCmd(timesheetService),
		newSettingsCmd(timesheetService, cfg),
		newTasksCmd(timesheetService),
		newTagsCmd(timesheetService),
		newDatabaseCmd(timesheetService),
	)

	return rootCmd
}
