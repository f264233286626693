package database

import (
	"context"
	"time"

	"github.com/wes/paca/internal/db"
	"github.com/wes/paca/internal/models"
)

// TaskDetails carries the editable fields of a task. CompletedAt is ignored on create.
type TaskDetails struct {
	ProjectID   string
	Title       string
	Description *string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	CompletedAt *time.Time
}

func (s *SQLDB) CreateTask(ctx context.Context, details TaskDetails) (*models.Task, error) {
	row, err := s.queries.CreateTask(ctx, db.CreateTaskParams{
		ID:          models.NewUUID(),
		ProjectID:   details.ProjectID,
		Title:       details.Title,
		Description: ptrToNullString(details.Description),
		Status:      string(details.Status),
		Priority:    string(details.Priority),
		DueDate:     ptrToNullTime(details.DueDate),
		Now:         s.now(),
	})
	if err != nil {
		return nil, wrapErr("create", "task", "", err)
	}
	return convertTask(row), nil
}

func (s *SQLDB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row, err := s.queries.GetTask(ctx, id)
	if err != nil {
		return nil, wrapErr("get", "task", id, err)
	}
	task := convertTask(row)
	if err := s.attachTags(ctx, []*models.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns tasks with their tags, newest first. An empty projectID lists all.
func (s *SQLDB) ListTasks(ctx context.Context, projectID string) ([]*models.Task, error) {
	rows, err := s.queries.ListTasks(ctx, projectID)
	if err != nil {
		return nil, wrapErr("list", "tasks", "", err)
	}
	tasks := make([]*models.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, convertTask(r))
	}
	if err := s.attachTags(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *SQLDB) UpdateTask(ctx context.Context, id string, details TaskDetails) (*models.Task, error) {
	n, err := s.queries.UpdateTask(ctx, db.UpdateTaskParams{
		ID:          id,
		Title:       details.Title,
		Description: ptrToNullString(details.Description),
		Status:      string(details.Status),
		Priority:    string(details.Priority),
		DueDate:     ptrToNullTime(details.DueDate),
		CompletedAt: ptrToNullTime(details.CompletedAt),
		Now:         s.now(),
	})
	if err := requireRow("update", "task", id, n, err); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, id)
}

func (s *SQLDB) DeleteTask(ctx context.Context, id string) error {
	n, err := s.queries.DeleteTask(ctx, id)
	return requireRow("delete", "task", id, n, err)
}

// DeleteCompletedTasks removes done tasks completed before the cutoff and reports how many.
func (s *SQLDB) DeleteCompletedTasks(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.queries.DeleteCompletedTasks(ctx, before.UTC())
	if err != nil {
		return 0, wrapErr("delete", "completed tasks", "", err)
	}
	return n, nil
}

func (s *SQLDB) CreateTag(ctx context.Context, name, color string) (*models.Tag, error) {
	t, err := s.queries.CreateTag(ctx, db.CreateTagParams{
		ID:    models.NewUUID(),
		Name:  name,
		Color: color,
		Now:   s.now(),
	})
	if err != nil {
		return nil, wrapErr("create", "tag", "", err)
	}
	return convertTag(t), nil
}

func (s *SQLDB) GetTagByName(ctx context.Context, name string) (*models.Tag, error) {
	t, err := s.queries.GetTagByName(ctx, name)
	if err != nil {
		return nil, wrapErr("get", "tag", name, err)
	}
	return convertTag(t), nil
}

func (s *SQLDB) ListTags(ctx context.Context) ([]*models.Tag, error) {
	rows, err := s.queries.ListTags(ctx)
	if err != nil {
		return nil, wrapErr("list", "tags", "", err)
	}
	tags := make([]*models.Tag, 0, len(rows))
	for _, t := range rows {
		tags = append(tags, convertTag(t))
	}
	return tags, nil
}

func (s *SQLDB) DeleteTag(ctx context.Context, id string) error {
	n, err := s.queries.DeleteTag(ctx, id)
	return requireRow("delete", "tag", id, n, err)
}

// AddTaskTag attaches a tag; attaching one twice is not an error.
func (s *SQLDB) AddTaskTag(ctx context.Context, taskID, tagID string) error {
	err := s.queries.AddTaskTag(ctx, taskID, tagID)
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return wrapErr("tag", "task", taskID, err)
}

func (s *SQLDB) RemoveTaskTag(ctx context.Context, taskID, tagID string) error {
	n, err := s.queries.RemoveTaskTag(ctx, taskID, tagID)
	return requireRow("untag", "task", taskID, n, err)
}

func (s *SQLDB) attachTags(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	pairs, err := s.queries.ListTaskTags(ctx)
	if err != nil {
		return wrapErr("list", "task tags", "", err)
	}
	byTask := make(map[string][]models.Tag)
	for _, p := range pairs {
		byTask[p.TaskID] = append(byTask[p.TaskID], *convertTag(p.Tag))
	}
	for _, t := range tasks {
		t.Tags = byTask[t.ID]
	}
	return nil
}

func convertTask(r db.TaskRow) *models.Task {
	return &models.Task{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: nullStringToPtr(r.Description),
		Status:      models.TaskStatus(r.Status),
		Priority:    models.TaskPriority(r.Priority),
		DueDate:     nullTimeToPtr(r.DueDate),
		CompletedAt: nullTimeToPtr(r.CompletedAt),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		ProjectName: r.ProjectName,
	}
}

func convertTag(t db.Tag) *models.Tag {
	return &models.Tag{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: t.CreatedAt.UTC(),
	}
}
