package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/billing"
	"github.com/wes/paca/internal/payment"
	"github.com/wes/paca/internal/service"
	"github.com/wes/paca/internal/utils"
)

func newInvoicesCmd(timesheetService *service.TimesheetService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Create and review invoices",
		Long:  "Bill unbilled time as draft invoices with the payment provider and review past invoices.",
	}

	cmd.AddCommand(newInvoicesCreateCmd(timesheetService))
	cmd.AddCommand(newInvoicesListCmd(timesheetService))
	cmd.AddCommand(newInvoicesLocalCmd(timesheetService))
	cmd.AddCommand(newInvoicesPDFCmd(timesheetService))

	return cmd
}

func newInvoicesCreateCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var projectName string
	var entryIDs []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft invoice for a project's unbilled time",
		Long:  "Create a draft invoice from a project's unbilled time, or only the entries passed with --entry. Billed entries are marked invoiced.",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := timesheetService.CreateInvoice(cmd.Context(), projectName, entryIDs)
			if err != nil {
				if errors.Is(err, payment.ErrNotConfigured) {
					return fmt.Errorf("%w: set STRIPE_API_KEY or run 'paca settings set stripe_api_key <key>'", err)
				}
				return err
			}

			printDraft(result.Draft)
			fmt.Printf("Created draft invoice %s for %s (%s)\n",
				result.ExternalID, result.Invoice.CustomerName, service.FormatAmount(result.Draft.TotalAmount))
			fmt.Printf("Marked %d entries as invoiced\n", len(result.Draft.EntryIDs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to bill (required)")
	cmd.Flags().StringSliceVarP(&entryIDs, "entry", "e", nil, "Only bill these entry ids (repeatable)")
	cmd.MarkFlagRequired("project")

	return cmd
}

func newInvoicesListCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var cursor string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices held by the payment provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := timesheetService.ListRemoteInvoices(cmd.Context(), cursor, refresh)
			if err != nil {
				return err
			}

			if len(page.Invoices) == 0 {
				fmt.Println("No invoices found.")
				return nil
			}

			for _, inv := range page.Invoices {
				number := inv.Number
				if number == "" {
					number = inv.ID
				}
				due := "-"
				if inv.DueDate != nil {
					due = inv.DueDate.Format(time.DateOnly)
				}
				fmt.Printf("%s | %s | %s | %s | due %s | %s\n",
					number,
					inv.CustomerName,
					inv.Status,
					service.FormatAmount(billing.FromMinorUnits(inv.AmountDue)),
					due,
					inv.DashboardURL)
			}

			if page.HasMore {
				fmt.Printf("\nMore invoices: paca invoices list --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cursor, "cursor", "", "Continue after this invoice id")
	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Bypass the invoice cache")

	return cmd
}

func newInvoicesLocalCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "local",
		Short: "List invoices recorded locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			invoices, err := timesheetService.ListInvoices(ctx, projectName)
			if err != nil {
				return err
			}

			if len(invoices) == 0 {
				fmt.Println("No invoices recorded.")
				return nil
			}

			for _, inv := range invoices {
				fmt.Printf("%s | %s | %s | %.2f hours | %s | %s\n",
					timesheetService.FormatTime(ctx, inv.CreatedAt),
					inv.ProjectName,
					inv.CustomerName,
					inv.TotalHours,
					service.FormatAmount(inv.TotalAmount),
					utils.FromPtrOr(inv.ExternalID, "-"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Only invoices for this project")
	return cmd
}

func newInvoicesPDFCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var projectName string
	var entryIDs []string
	var output string

	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Write a PDF preview of a project's next invoice",
		Long:  "Render the invoice 'invoices create' would send as a PDF. Nothing is billed or marked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if output == "" {
				output = sanitizeFileName(fmt.Sprintf("invoice_%s_%s.pdf", projectName, time.Now().Format(time.DateOnly)))
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer file.Close()

			draft, err := timesheetService.WriteInvoicePDF(ctx, file, projectName, entryIDs)
			if err != nil {
				file.Close()
				os.Remove(output)
				return err
			}

			fmt.Printf("Generated invoice: %s (Total: %s)\n", output, service.FormatAmount(draft.TotalAmount))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to preview (required)")
	cmd.Flags().StringSliceVarP(&entryIDs, "entry", "e", nil, "Only include these entry ids")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default invoice_<project>_<date>.pdf)")
	cmd.MarkFlagRequired("project")

	return cmd
}

func printDraft(draft billing.Draft) {
	for _, item := range draft.LineItems {
		fmt.Printf("  %s  %s\n", service.FormatAmount(billing.FromMinorUnits(item.AmountMinorUnits)), item.Description)
	}
	fmt.Printf("  %.2f hours, %s\n", draft.TotalHours, service.FormatAmount(draft.TotalAmount))
}
