package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wes/paca/internal/models"
	"github.com/wes/paca/internal/service"
)

var (
	statusIcons = map[models.TaskStatus]string{
		models.TaskTodo:       "[ ]",
		models.TaskInProgress: "[~]",
		models.TaskDone:       "[x]",
	}
	priorityStyles = map[models.TaskPriority]lipgloss.Style{
		models.PriorityLow:    lipgloss.NewStyle().Faint(true),
		models.PriorityMedium: lipgloss.NewStyle(),
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
		models.PriorityUrgent: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
	}
)

func newTasksCmd(timesheetService *service.TimesheetService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage project tasks",
		Long:  "Commands for tracking tasks against projects. A task moves from todo to in_progress to done.",
	}

	cmd.AddCommand(newTasksListCmd(timesheetService))
	cmd.AddCommand(newTasksAddCmd(timesheetService))
	cmd.AddCommand(newTasksEditCmd(timesheetService))
	cmd.AddCommand(newTasksToggleCmd(timesheetService))
	cmd.AddCommand(newTasksDeleteCmd(timesheetService))
	cmd.AddCommand(newTasksTagCmd(timesheetService))
	cmd.AddCommand(newTasksUntagCmd(timesheetService))
	cmd.AddCommand(newTasksCleanupCmd(timesheetService))
	cmd.AddCommand(newTasksStatsCmd(timesheetService))

	return cmd
}

func newTasksListCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var project string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tasks, err := timesheetService.ListTasks(ctx, project, all)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Println("No tasks found.")
				return nil
			}
			for _, t := range tasks {
				printTask(ctx, timesheetService, t)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Only tasks for this project")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include done tasks")
	return cmd
}

func printTask(ctx context.Context, timesheetService *service.TimesheetService, t *models.Task) {
	style, ok := priorityStyles[t.Priority]
	if !ok {
		style = lipgloss.NewStyle()
	}
	line := fmt.Sprintf("%s %s | %s | %s", statusIcons[t.Status], t.ID, t.ProjectName, style.Render(t.Title))
	if due := timesheetService.FormatDue(ctx, t.DueDate); due != "" {
		line += " | due " + due
	}
	if len(t.Tags) > 0 {
		names := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			names[i] = "#" + tag.Name
		}
		line += " | " + strings.Join(names, " ")
	}
	fmt.Println(line)
	if t.Description != nil && *t.Description != "" {
		fmt.Printf("    %s\n", *t.Description)
	}
}

func newTasksAddCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var in service.TaskInput
	var description string

	cmd := &cobra.Command{
		Use:   "add <project> <title>",
		Short: "Add a task to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Project, in.Title = args[0], args[1]
			in.Description = changedString(cmd.Flags().Changed("description"), description)

			task, err := timesheetService.CreateTask(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to add task: %w", err)
			}
			fmt.Printf("Created task '%s' on %s (ID: %s)\n", task.Title, task.ProjectName, task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&in.Priority, "priority", "medium", "Priority: low, medium, high or urgent")
	cmd.Flags().StringVar(&in.Due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newTasksEditCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var in service.TaskInput
	var description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Description = changedString(cmd.Flags().Changed("description"), description)

			task, err := timesheetService.UpdateTask(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			printTask(cmd.Context(), timesheetService, task)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description; empty clears it")
	cmd.Flags().StringVarP(&in.Status, "status", "s", "", "Status: todo, in_progress or done")
	cmd.Flags().StringVar(&in.Priority, "priority", "", "Priority: low, medium, high or urgent")
	cmd.Flags().StringVar(&in.Due, "due", "", "Due date (YYYY-MM-DD), or 'none' to clear")
	return cmd
}

func newTasksToggleCmd(timesheetService *service.TimesheetService) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Move a task to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := timesheetService.CycleTaskStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Task '%s' is now %s\n", task.Title, task.Status)
			return nil
		},
	}
}

func newTasksDeleteCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm(fmt.Sprintf("Delete task %s?", args[0])) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := timesheetService.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted task %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}

func newTasksTagCmd(timesheetService *service.TimesheetService) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> <tag>",
		Short: "Tag a task, creating the tag if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := timesheetService.TagTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printTask(cmd.Context(), timesheetService, task)
			return nil
		},
	}
}

func newTasksUntagCmd(timesheetService *service.TimesheetService) *cobra.Command {
	return &cobra.Command{
		Use:   "untag <id> <tag>",
		Short: "Remove a tag from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := timesheetService.UntagTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printTask(cmd.Context(), timesheetService, task)
			return nil
		},
	}
}

func newTasksCleanupCmd(timesheetService *service.TimesheetService) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete tasks that have been done for a while",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			n, err := timesheetService.CleanupCompletedTasks(cmd.Context(), daysToDuration(days))
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d completed task(s)\n", n)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 3, "Delete tasks completed more than this many days ago")
	return cmd
}

func newTasksStatsCmd(timesheetService *service.TimesheetService) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := timesheetService.TaskSummary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Tasks: %d (todo %d, in progress %d, done %d)\n", sum.Total, sum.Todo, sum.InProgress, sum.Done)
			fmt.Printf("Overdue: %d\n", sum.Overdue)
			fmt.Printf("Completion: %d%%\n", sum.CompletionRate)
			return nil
		},
	}
}

func newTagsCmd(timesheetService *service.TimesheetService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage task tags",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := timesheetService.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Println("No tags found.")
				return nil
			}
			for _, t := range tags {
				fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("#" + t.Name))
			}
			return nil
		},
	}

	var color string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := timesheetService.CreateTag(cmd.Context(), args[0], color)
			if err != nil {
				return err
			}
			fmt.Printf("Created tag '%s'\n", tag.Name)
			return nil
		},
	}
	create.Flags().StringVarP(&color, "color", "c", "", "Tag color (hex)")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a tag and remove it from every task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := timesheetService.DeleteTag(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted tag '%s'\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}
