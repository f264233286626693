package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/service"
	"github.com/wes/paca/internal/utils"
)

func newProjectsCmd(timesheetService *service.TimesheetService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
		Long:  "Commands for managing projects, their hourly rates and the customers they bill to.",
	}

	cmd.AddCommand(newProjectsListCmd(timesheetService))
	cmd.AddCommand(newProjectsCreateCmd(timesheetService))
	cmd.AddCommand(newProjectsUpdateCmd(timesheetService))
	cmd.AddCommand(newProjectsArchiveCmd(timesheetService, true))
	cmd.AddCommand(newProjectsArchiveCmd(timesheetService, false))
	cmd.AddCommand(newProjectsDeleteCmd(timesheetService))

	return cmd
}

func newProjectsListCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := timesheetService.ListProjects(cmd.Context(), all)
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			if len(projects) == 0 {
				fmt.Println("No projects found.")
				return nil
			}

			fmt.Println("Projects:")
			for _, p := range projects {
				customer := "no customer"
				if p.Customer != nil {
					customer = p.Customer.Name
				}
				archived := ""
				if p.Archived {
					archived = " (archived)"
				}
				fmt.Printf("%s - %s - %s%s\n", p.Name, rateLabel(p.HourlyRate), customer, archived)
				if p.Description != nil {
					fmt.Printf("  %s\n", utils.Truncate(*p.Description, 72))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include archived projects")
	return cmd
}

func newProjectsCreateCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var rate float64
	var color, description, customer string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := service.ProjectInput{
				Name:         args[0],
				Color:        changedString(cmd.Flags().Changed("color"), color),
				Description:  utils.TrimToPtr(description),
				CustomerName: utils.TrimToPtr(customer),
			}
			if cmd.Flags().Changed("rate") {
				in.HourlyRate = &rate
			}

			project, err := timesheetService.CreateProject(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Printf("Created project: %s (ID: %s, Rate: %s)\n", project.Name, project.ID, rateLabel(project.HourlyRate))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&rate, "rate", "r", 0, "Hourly rate")
	cmd.Flags().StringVar(&color, "color", "", "Colour tag, e.g. #3b82f6")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")
	cmd.Flags().StringVarP(&customer, "customer", "c", "", "Customer to bill")
	return cmd
}

func newProjectsUpdateCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var rate float64
	var name, color, description, customer string

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update a project",
		Long:  "Update a project. Pass --customer \"\" to unassign its customer.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			in := service.ProjectInput{
				Name:         name,
				Color:        changedString(flags.Changed("color"), color),
				Description:  changedString(flags.Changed("description"), description),
				CustomerName: changedString(flags.Changed("customer"), customer),
			}
			if flags.Changed("rate") {
				in.HourlyRate = &rate
			}

			project, err := timesheetService.UpdateProject(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}

			fmt.Printf("Updated project '%s' (Rate: %s)\n", project.Name, rateLabel(project.HourlyRate))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New name")
	cmd.Flags().Float64VarP(&rate, "rate", "r", 0, "Hourly rate")
	cmd.Flags().StringVar(&color, "color", "", "Colour tag")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")
	cmd.Flags().StringVarP(&customer, "customer", "c", "", "Customer to bill")
	return cmd
}

func newProjectsArchiveCmd(timesheetService *service.TimesheetService, archive bool) *cobra.Command {
	use, verb := "archive <name>", "Archived"
	if !archive {
		use, verb = "unarchive <name>", "Restored"
	}

	return &cobra.Command{
		Use:   use,
		Short: verb + " a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := timesheetService.SetProjectArchived(cmd.Context(), args[0], archive); err != nil {
				return err
			}
			fmt.Printf("%s project '%s'\n", verb, args[0])
			return nil
		},
	}
}

func newProjectsDeleteCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a project and all of its time entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm(fmt.Sprintf("Delete project '%s' and all of its time entries?", args[0])) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := timesheetService.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted project '%s'\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}
