package db

import (
	"context"
	"database/sql"
	"time"
)

const taskColumns = `t.id, t.project_id, t.title, t.description, t.status, t.priority, t.due_date, t.completed_at, t.created_at, t.updated_at, COALESCE(p.name, '')`

const taskFrom = ` FROM tasks t LEFT JOIN projects p ON p.id = t.project_id`

func scanTask(row interface{ Scan(...interface{}) error }) (TaskRow, error) {
	var r TaskRow
	err := row.Scan(&r.ID, &r.ProjectID, &r.Title, &r.Description, &r.Status, &r.Priority,
		&r.DueDate, &r.CompletedAt, &r.CreatedAt, &r.UpdatedAt, &r.ProjectName)
	return r, err
}

type CreateTaskParams struct {
	ID          string
	ProjectID   string
	Title       string
	Description sql.NullString
	Status      string
	Priority    string
	DueDate     sql.NullTime
	Now         time.Time
}

const createTask = `INSERT INTO tasks (id, project_id, title, description, status, priority, due_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) (TaskRow, error) {
	if _, err := q.db.ExecContext(ctx, createTask,
		arg.ID, arg.ProjectID, arg.Title, arg.Description, arg.Status, arg.Priority, arg.DueDate, arg.Now, arg.Now,
	); err != nil {
		return TaskRow{}, err
	}
	return q.GetTask(ctx, arg.ID)
}

const getTask = `SELECT ` + taskColumns + taskFrom + ` WHERE t.id = ?`

func (q *Queries) GetTask(ctx context.Context, id string) (TaskRow, error) {
	return scanTask(q.db.QueryRowContext(ctx, getTask, id))
}

const listTasks = `SELECT ` + taskColumns + taskFrom + ` ORDER BY t.created_at DESC`

const listTasksByProject = `SELECT ` + taskColumns + taskFrom + ` WHERE t.project_id = ? ORDER BY t.created_at DESC`

// ListTasks returns every task, or one project's when projectID is set.
func (q *Queries) ListTasks(ctx context.Context, projectID string) ([]TaskRow, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if projectID == "" {
		rows, err = q.db.QueryContext(ctx, listTasks)
	} else {
		rows, err = q.db.QueryContext(ctx, listTasksByProject, projectID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TaskRow
	for rows.Next() {
		r, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type UpdateTaskParams struct {
	ID          string
	Title       string
	Description sql.NullString
	Status      string
	Priority    string
	DueDate     sql.NullTime
	CompletedAt sql.NullTime
	Now         time.Time
}

const updateTask = `UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, completed_at = ?, updated_at = ?
WHERE id = ?`

func (q *Queries) UpdateTask(ctx context.Context, arg UpdateTaskParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTask,
		arg.Title, arg.Description, arg.Status, arg.Priority, arg.DueDate, arg.CompletedAt, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTask = `DELETE FROM tasks WHERE id = ?`

func (q *Queries) DeleteTask(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTask, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteCompletedTasks = `DELETE FROM tasks WHERE status = 'done' AND completed_at < ?`

func (q *Queries) DeleteCompletedTasks(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCompletedTasks, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
