package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/service"
)

func newStartCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a timer",
		Long:  "Start a timer for a project. Any running timer is stopped first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			previous, err := timesheetService.ActiveEntry(ctx)
			if err != nil {
				return err
			}

			entry, err := timesheetService.StartTimer(ctx, projectName)
			if err != nil {
				return err
			}

			if previous != nil {
				fmt.Printf("Stopped running timer for %s\n", previous.ProjectName)
			}
			fmt.Printf("Started timer for %s at %s\n", entry.ProjectName, timesheetService.FormatTime(ctx, entry.StartTime))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project name (required)")
	cmd.MarkFlagRequired("project")

	return cmd
}
