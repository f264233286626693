package db

import (
	"context"
	"time"
)

const tagColumns = `id, name, color, created_at`

func scanTag(row interface{ Scan(...interface{}) error }) (Tag, error) {
	var t Tag
	err := row.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	return t, err
}

type CreateTagParams struct {
	ID    string
	Name  string
	Color string
	Now   time.Time
}

const createTag = `INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) (Tag, error) {
	if _, err := q.db.ExecContext(ctx, createTag, arg.ID, arg.Name, arg.Color, arg.Now); err != nil {
		return Tag{}, err
	}
	return scanTag(q.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, arg.ID))
}

const getTagByName = `SELECT ` + tagColumns + ` FROM tags WHERE name = ?`

func (q *Queries) GetTagByName(ctx context.Context, name string) (Tag, error) {
	return scanTag(q.db.QueryRowContext(ctx, getTagByName, name))
}

const listTags = `SELECT ` + tagColumns + ` FROM tags ORDER BY name ASC`

func (q *Queries) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := q.db.QueryContext(ctx, listTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const deleteTag = `DELETE FROM tags WHERE id = ?`

func (q *Queries) DeleteTag(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTag, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listTaskTags = `SELECT tt.task_id, g.id, g.name, g.color, g.created_at
FROM task_tags tt JOIN tags g ON g.id = tt.tag_id
ORDER BY g.name ASC`

// ListTaskTags returns every task/tag pair; callers index it by task.
func (q *Queries) ListTaskTags(ctx context.Context) ([]TaskTagRow, error) {
	rows, err := q.db.QueryContext(ctx, listTaskTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TaskTagRow
	for rows.Next() {
		var r TaskTagRow
		if err := rows.Scan(&r.TaskID, &r.ID, &r.Name, &r.Color, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const addTaskTag = `INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)`

func (q *Queries) AddTaskTag(ctx context.Context, taskID, tagID string) error {
	_, err := q.db.ExecContext(ctx, addTaskTag, taskID, tagID)
	return err
}

const removeTaskTag = `DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?`

func (q *Queries) RemoveTaskTag(ctx context.Context, taskID, tagID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, removeTaskTag, taskID, tagID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
