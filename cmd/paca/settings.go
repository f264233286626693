package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/config"
	"github.com/wes/paca/internal/service"
)

func newSettingsCmd(timesheetService *service.TimesheetService, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change stored settings",
		Long: `Show and change settings stored in the database: timezone, business_name and
stripe_api_key. Environment variables take precedence over stored values.`,
	}

	cmd.AddCommand(newSettingsListCmd(timesheetService, cfg))
	cmd.AddCommand(newSettingsSetCmd(timesheetService))

	return cmd
}

func newSettingsListCmd(timesheetService *service.TimesheetService, cfg *config.Config) *cobra.Command {
	var showConfig bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			settings, err := timesheetService.Settings(ctx)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(settings))
			for name := range settings {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				value := settings[name]
				if name == service.SettingStripeAPIKey && value != "" {
					value = "(set)"
				}
				fmt.Printf("%s = %s\n", name, value)
			}

			zone := timesheetService.DisplayZone(ctx)
			fmt.Printf("\nDisplay timezone: %s (%s)\n", zone, timesheetService.Clock().EffectiveZone(zone))

			if showConfig {
				fmt.Println()
				cfg.Dump()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showConfig, "config", false, "Also show the environment configuration")
	return cmd
}

func newSettingsSetCmd(timesheetService *service.TimesheetService) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := timesheetService.SetSetting(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Set %s\n", args[0])
			return nil
		},
	}
}
