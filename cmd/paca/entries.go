package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/service"
)

func newEntriesCmd(timesheetService *service.TimesheetService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Manage time entries",
		Long:  "Commands for listing, adding and correcting time entries. Times are 'YYYY-MM-DD HH:MM' or 'HH:MM' for today, in the display timezone.",
	}

	cmd.AddCommand(newEntriesListCmd(timesheetService))
	cmd.AddCommand(newEntriesAddCmd(timesheetService))
	cmd.AddCommand(newEntriesEditCmd(timesheetService))
	cmd.AddCommand(newEntriesDeleteCmd(timesheetService))

	return cmd
}

func newEntriesListCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var f service.EntryFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent time entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			entries, err := timesheetService.ListEntries(ctx, f)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No time entries found.")
				return nil
			}

			projects, err := timesheetService.ListProjects(ctx, true)
			if err != nil {
				return err
			}
			rates := make(map[string]float64, len(projects))
			for _, p := range projects {
				rates[p.ID] = p.Rate()
			}

			for i := range entries {
				timesheetService.DisplayEntry(ctx, os.Stdout, &entries[i], rates[entries[i].ProjectID])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.Project, "project", "p", "", "Only entries for this project")
	cmd.Flags().StringVarP(&f.From, "from", "f", "", "Entries starting on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.To, "to", "t", "", "Entries starting on or before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&f.UninvoicedOnly, "uninvoiced", "u", false, "Only entries not yet invoiced")
	cmd.Flags().IntVarP(&f.Limit, "limit", "l", 20, "Number of entries to show")

	return cmd
}

func newEntriesAddCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var projectName, fromTime, toTime, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a finished time entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			entry, err := timesheetService.AddEntry(ctx, projectName, fromTime, toTime, description)
			if err != nil {
				return fmt.Errorf("failed to add entry: %w", err)
			}

			fmt.Printf("Created entry for %s: %s (%s)\n",
				entry.ProjectName,
				timesheetService.FormatTime(ctx, entry.StartTime),
				timesheetService.FormatDuration(entry.Duration()))
			fmt.Printf("ID: %s\n", entry.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project name (required)")
	cmd.Flags().StringVarP(&fromTime, "from", "f", "", "Start time (required)")
	cmd.Flags().StringVarP(&toTime, "to", "t", "", "End time (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the work")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}

func newEntriesEditCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var edit service.EntryEdit
	var description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a time entry",
		Long:  "Change the start, end or description of an entry. Invoiced entries only accept description changes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			edit.Description = changedString(cmd.Flags().Changed("description"), description)

			entry, err := timesheetService.EditEntry(ctx, args[0], edit)
			if err != nil {
				return err
			}

			fmt.Println("Updated entry:")
			timesheetService.DisplayEntry(ctx, os.Stdout, entry, 0)
			return nil
		},
	}

	cmd.Flags().StringVarP(&edit.Start, "from", "f", "", "New start time")
	cmd.Flags().StringVarP(&edit.End, "to", "t", "", "New end time")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")

	return cmd
}

func newEntriesDeleteCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a time entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm(fmt.Sprintf("Delete entry %s?", args[0])) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := timesheetService.DeleteEntry(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted entry %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation")
	return cmd
}
