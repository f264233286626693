package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/wes/paca/internal/database"
	"github.com/wes/paca/internal/models"
	"github.com/wes/paca/internal/utils"
)

const defaultTagColor = "#6b7280"

// TaskInput carries task fields from the CLI. On update, empty strings and nil fields
// leave a field unchanged; Due "none" clears the due date.
type TaskInput struct {
	Project     string
	Title       string
	Description *string
	Status      string
	Priority    string
	Due         string
}

// TaskSummary counts tasks by status. Overdue counts unfinished tasks past their due date.
type TaskSummary struct {
	Total          int
	Todo           int
	InProgress     int
	Done           int
	Overdue        int
	CompletionRate int
}

// ListTasks returns tasks in working order: in progress, then todo, then done.
func (s *TimesheetService) ListTasks(ctx context.Context, projectName string, includeDone bool) ([]*models.Task, error) {
	projectID := ""
	if projectName != "" {
		p, err := s.projectByName(ctx, projectName)
		if err != nil {
			return nil, err
		}
		projectID = p.ID
	}

	all, err := s.db.ListTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	tasks := all[:0]
	for _, t := range all {
		if includeDone || t.Status != models.TaskDone {
			tasks = append(tasks, t)
		}
	}
	models.SortTasks(tasks)
	return tasks, nil
}

func (s *TimesheetService) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}
	project, err := s.projectByName(ctx, in.Project)
	if err != nil {
		return nil, err
	}
	priority, err := models.ParseTaskPriority(in.Priority)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	due, err := s.parseDue(ctx, in.Due, nil)
	if err != nil {
		return nil, err
	}

	details := database.TaskDetails{
		ProjectID: project.ID,
		Title:     title,
		Status:    models.TaskTodo,
		Priority:  priority,
		DueDate:   due,
	}
	if in.Description != nil {
		details.Description = utils.TrimToPtr(*in.Description)
	}
	return s.db.CreateTask(ctx, details)
}

// UpdateTask edits a task. Moving to done stamps the completion time; moving away clears it.
func (s *TimesheetService) UpdateTask(ctx context.Context, id string, in TaskInput) (*models.Task, error) {
	task, err := s.taskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := database.TaskDetails{
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		details.Title = t
	}
	if in.Description != nil {
		details.Description = utils.TrimToPtr(*in.Description)
	}
	if in.Priority != "" {
		if details.Priority, err = models.ParseTaskPriority(in.Priority); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if details.DueDate, err = s.parseDue(ctx, in.Due, task.DueDate); err != nil {
		return nil, err
	}
	if in.Status != "" {
		status, err := models.ParseTaskStatus(in.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		s.setStatus(&details, task.Status, status)
	}
	return s.db.UpdateTask(ctx, task.ID, details)
}

// CycleTaskStatus moves a task to its next status: todo, in progress, done, todo.
func (s *TimesheetService) CycleTaskStatus(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.taskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details := database.TaskDetails{
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
	}
	s.setStatus(&details, task.Status, task.Status.Next())
	return s.db.UpdateTask(ctx, task.ID, details)
}

func (s *TimesheetService) setStatus(details *database.TaskDetails, from, to models.TaskStatus) {
	details.Status = to
	switch {
	case to != models.TaskDone:
		details.CompletedAt = nil
	case from != models.TaskDone:
		now := s.now().UTC()
		details.CompletedAt = &now
	}
}

func (s *TimesheetService) DeleteTask(ctx context.Context, id string) error {
	task, err := s.taskByID(ctx, id)
	if err != nil {
		return err
	}
	return s.db.DeleteTask(ctx, task.ID)
}

// CleanupCompletedTasks deletes tasks that have been done for longer than olderThan.
func (s *TimesheetService) CleanupCompletedTasks(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	n, err := s.db.DeleteCompletedTasks(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("cleaned up completed tasks", slog.Int64("deleted", n), slog.Duration("older_than", olderThan))
	}
	return n, nil
}

func (s *TimesheetService) TaskSummary(ctx context.Context) (TaskSummary, error) {
	tasks, err := s.db.ListTasks(ctx, "")
	if err != nil {
		return TaskSummary{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	now := s.now()
	var sum TaskSummary
	for _, t := range tasks {
		sum.Total++
		switch t.Status {
		case models.TaskTodo:
			sum.Todo++
		case models.TaskInProgress:
			sum.InProgress++
		case models.TaskDone:
			sum.Done++
		}
		if t.Overdue(now) {
			sum.Overdue++
		}
	}
	if sum.Total > 0 {
		sum.CompletionRate = (sum.Done*100 + sum.Total/2) / sum.Total
	}
	return sum, nil
}

func (s *TimesheetService) CreateTag(ctx context.Context, name, color string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", ErrInvalidInput)
	}
	if color == "" {
		color = defaultTagColor
	}
	if _, err := s.db.GetTagByName(ctx, name); err == nil {
		return nil, fmt.Errorf("tag '%s' already exists", name)
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing tag: %w", err)
	}
	return s.db.CreateTag(ctx, name, color)
}

func (s *TimesheetService) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return s.db.ListTags(ctx)
}

func (s *TimesheetService) DeleteTag(ctx context.Context, name string) error {
	tag, err := s.tagByName(ctx, name)
	if err != nil {
		return err
	}
	return s.db.DeleteTag(ctx, tag.ID)
}

// TagTask attaches the named tag to a task, creating the tag when it does not exist.
func (s *TimesheetService) TagTask(ctx context.Context, id, tagName string) (*models.Task, error) {
	task, err := s.taskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return nil, fmt.Errorf("%w: tag name is required", ErrInvalidInput)
	}

	err = s.db.WithTx(ctx, func(tx database.DB) error {
		tag, err := tx.GetTagByName(ctx, tagName)
		if errors.Is(err, database.ErrNotFound) {
			tag, err = tx.CreateTag(ctx, tagName, defaultTagColor)
		}
		if err != nil {
			return err
		}
		return tx.AddTaskTag(ctx, task.ID, tag.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to tag task: %w", err)
	}
	return s.db.GetTask(ctx, task.ID)
}

func (s *TimesheetService) UntagTask(ctx context.Context, id, tagName string) (*models.Task, error) {
	task, err := s.taskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tag, err := s.tagByName(ctx, tagName)
	if err != nil {
		return nil, err
	}
	if err := s.db.RemoveTaskTag(ctx, task.ID, tag.ID); err != nil {
		return nil, fmt.Errorf("task %s is not tagged '%s': %w", task.ID, tag.Name, err)
	}
	return s.db.GetTask(ctx, task.ID)
}

// FormatDue renders a due date as a civil date in the display zone, or "" when unset.
func (s *TimesheetService) FormatDue(ctx context.Context, due *time.Time) string {
	if due == nil {
		return ""
	}
	return s.clock.InstantToCivil(*due, s.DisplayZone(ctx)).String()[:10]
}

// ExportDatabase writes a timestamped backup into dir, or BACKUP_DIR when dir is empty,
// and returns its path.
func (s *TimesheetService) ExportDatabase(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		dir = s.cfg.BackupDir
	}
	if dir == "" {
		dir = "."
	}
	stamp := s.now().UTC().Format("2006-01-02T15-04-05Z")
	path := filepath.Join(dir, "paca-backup-"+stamp+".db")
	if err := s.db.Backup(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

// ImportDatabase replaces the current database with the backup at src.
func (s *TimesheetService) ImportDatabase(ctx context.Context, src string) error {
	if err := s.db.Restore(ctx, src); err != nil {
		return fmt.Errorf("failed to import %s: %w", src, err)
	}
	return nil
}

func (s *TimesheetService) taskByID(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.db.GetTask(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("task '%s' does not exist: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (s *TimesheetService) tagByName(ctx context.Context, name string) (*models.Tag, error) {
	t, err := s.db.GetTagByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("tag '%s' does not exist: %w", name, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return t, nil
}

// parseDue reads a YYYY-MM-DD due date. Empty keeps current; "none" clears it.
func (s *TimesheetService) parseDue(ctx context.Context, input string, current *time.Time) (*time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return current, nil
	case "none":
		return nil, nil
	}
	t, err := s.ParseDate(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: due %v", ErrInvalidInput, err)
	}
	return &t, nil
}
