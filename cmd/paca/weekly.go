package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/config"
	"github.com/wes/paca/internal/service"
	"github.com/wes/paca/internal/stats"
)

const barWidth = 40

var (
	labelStyle  = lipgloss.NewStyle().Width(6).Align(lipgloss.Right)
	totalStyle  = lipgloss.NewStyle().Faint(true)
	legendStyle = lipgloss.NewStyle().Bold(true)
)

func newWeeklyCmd(timesheetService *service.TimesheetService, cfg *config.Config) *cobra.Command {
	var months, weeks int
	var anchor string

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Chart tracked time per week",
		Long:  "Show a bar per week over the trailing months, split by project colour.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			weekday := cfg.WeekAnchor
			if anchor != "" {
				d, err := config.ParseWeekday(anchor)
				if err != nil {
					return err
				}
				weekday = d
			}

			buckets, err := timesheetService.WeeklyStats(ctx, months, weekday)
			if err != nil {
				return err
			}
			if weeks > 0 {
				buckets = stats.Last(buckets, weeks)
			}
			if len(buckets) == 0 {
				fmt.Println("No tracked time in this window.")
				return nil
			}

			projects, err := timesheetService.ListProjects(ctx, true)
			if err != nil {
				return err
			}
			colors := make(map[string]string, len(projects))
			for _, p := range projects {
				colors[p.ID] = p.Color
			}

			fmt.Print(renderWeeks(buckets, colors))
			return nil
		},
	}

	cmd.Flags().IntVarP(&months, "months", "m", 0, "Trailing months to include (default WEEKLY_MONTHS)")
	cmd.Flags().IntVarP(&weeks, "weeks", "w", 0, "Only show the most recent N weeks")
	cmd.Flags().StringVarP(&anchor, "anchor", "a", "", "Weekday weeks start on (default WEEK_ANCHOR)")

	return cmd
}

func renderWeeks(buckets []stats.WeekBucket, colors map[string]string) string {
	var longest int64
	for _, b := range buckets {
		if b.TotalMs > longest {
			longest = b.TotalMs
		}
	}

	var out strings.Builder
	seen := make(map[string]bool)
	var legend []string

	for _, b := range buckets {
		var bar strings.Builder
		for _, p := range b.PerProject {
			width := int(p.TotalMs * barWidth / longest)
			if width == 0 {
				width = 1
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[p.ProjectID]))
			bar.WriteString(style.Render(strings.Repeat("█", width)))

			if !seen[p.ProjectID] {
				seen[p.ProjectID] = true
				legend = append(legend, style.Render("■")+" "+p.ProjectName)
			}
		}
		fmt.Fprintf(&out, "%s %s %s\n", labelStyle.Render(b.Label()), bar.String(), totalStyle.Render(msToDuration(b.TotalMs)))
	}

	fmt.Fprintf(&out, "\n%s %s\n", legendStyle.Render("Projects:"), strings.Join(legend, "  "))
	return out.String()
}
