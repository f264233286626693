package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/service"
)

func newDatabaseCmd(timesheetService *service.TimesheetService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Back up or restore the local database",
	}

	var dir string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write a timestamped copy of the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := timesheetService.ExportDatabase(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Printf("Exported to %s\n", path)
			return nil
		},
	}
	export.Flags().StringVarP(&dir, "dir", "d", "", "Backup directory (default BACKUP_DIR)")

	var force bool
	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm(fmt.Sprintf("Replace the current database with %s?", args[0])) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := timesheetService.ImportDatabase(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Imported %s\n", args[0])
			return nil
		},
	}
	imp.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")

	cmd.AddCommand(export, imp)
	return cmd
}
