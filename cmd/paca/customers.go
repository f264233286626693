package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/service"
	"github.com/wes/paca/internal/utils"
)

func newCustomersCmd(timesheetService *service.TimesheetService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Manage customers",
		Long:  "Commands for managing the customers invoices are sent to.",
	}

	cmd.AddCommand(newCustomersListCmd(timesheetService))
	cmd.AddCommand(newCustomersCreateCmd(timesheetService))
	cmd.AddCommand(newCustomersUpdateCmd(timesheetService))
	cmd.AddCommand(newCustomersDeleteCmd(timesheetService))

	return cmd
}

func newCustomersListCmd(timesheetService *service.TimesheetService) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			customers, err := timesheetService.ListCustomers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list customers: %w", err)
			}

			if len(customers) == 0 {
				fmt.Println("No customers found.")
				return nil
			}

			fmt.Println("Customers:")
			for _, c := range customers {
				fmt.Printf("%s - %s", c.Name, c.Email)
				if id := utils.FromPtr(c.ExternalBillingID); id != "" {
					fmt.Printf(" - %s", id)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func newCustomersCreateCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			customer, err := timesheetService.CreateCustomer(cmd.Context(), args[0], email)
			if err != nil {
				return err
			}
			fmt.Printf("Created customer: %s <%s> (ID: %s)\n", customer.Name, customer.Email, customer.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Billing email (required)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newCustomersUpdateCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			customer, err := timesheetService.UpdateCustomer(cmd.Context(), args[0], name, email)
			if err != nil {
				return err
			}
			fmt.Printf("Updated customer '%s' <%s>\n", customer.Name, customer.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "New billing email")
	return cmd
}

func newCustomersDeleteCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a customer; its projects are unassigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm(fmt.Sprintf("Delete customer '%s'?", args[0])) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := timesheetService.DeleteCustomer(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted customer '%s'\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}
