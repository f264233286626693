package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/service"
)

func newExportCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var f service.EntryFilter
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export time entries to CSV",
		Long:  "Export time entries to CSV with hourly rates and billable amounts. Supports optional project and date filtering.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var w io.Writer = os.Stdout
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()
				w = file
			}

			n, err := timesheetService.ExportEntriesCSV(ctx, w, f)
			if err != nil {
				return err
			}

			if output != "" && output != "-" {
				fmt.Printf("Exported %d entries to %s\n", n, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.Project, "project", "p", "", "Only entries for this project")
	cmd.Flags().StringVarP(&f.From, "from", "f", "", "Export entries from this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.To, "to", "t", "", "Export entries to this date (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&f.UninvoicedOnly, "uninvoiced", "u", false, "Only entries not yet invoiced")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVarP(&f.Limit, "limit", "l", 1000, "Maximum number of entries to export")

	return cmd
}
