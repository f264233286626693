package db

import (
	"context"
	"database/sql"
	"time"
)

const projectColumns = `id, name, color, description, hourly_rate, archived, customer_id, created_at, updated_at`

func scanProject(row interface{ Scan(...interface{}) error }) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Color, &p.Description, &p.HourlyRate, &p.Archived, &p.CustomerID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

type CreateProjectParams struct {
	ID          string
	Name        string
	Color       string
	Description sql.NullString
	HourlyRate  sql.NullFloat64
	CustomerID  sql.NullString
	Now         time.Time
}

const createProject = `INSERT INTO projects (id, name, color, description, hourly_rate, archived, customer_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	if _, err := q.db.ExecContext(ctx, createProject,
		arg.ID, arg.Name, arg.Color, arg.Description, arg.HourlyRate, false, arg.CustomerID, arg.Now, arg.Now,
	); err != nil {
		return Project{}, err
	}
	return q.GetProject(ctx, arg.ID)
}

const getProject = `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	return scanProject(q.db.QueryRowContext(ctx, getProject, id))
}

const getProjectByName = `SELECT ` + projectColumns + ` FROM projects WHERE name = ?`

func (q *Queries) GetProjectByName(ctx context.Context, name string) (Project, error) {
	return scanProject(q.db.QueryRowContext(ctx, getProjectByName, name))
}

const listProjects = `SELECT ` + projectColumns + ` FROM projects WHERE (? OR archived = ?) ORDER BY name ASC`

func (q *Queries) ListProjects(ctx context.Context, includeArchived bool) ([]Project, error) {
	rows, err := q.db.QueryContext(ctx, listProjects, includeArchived, false)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

type UpdateProjectParams struct {
	ID          string
	Name        string
	Color       string
	Description sql.NullString
	HourlyRate  sql.NullFloat64
	Now         time.Time
}

const updateProject = `UPDATE projects SET name = ?, color = ?, description = ?, hourly_rate = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateProject, arg.Name, arg.Color, arg.Description, arg.HourlyRate, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type SetProjectArchivedParams struct {
	ID       string
	Archived bool
	Now      time.Time
}

const setProjectArchived = `UPDATE projects SET archived = ?, updated_at = ? WHERE id = ?`

func (q *Queries) SetProjectArchived(ctx context.Context, arg SetProjectArchivedParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, setProjectArchived, arg.Archived, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type SetProjectCustomerParams struct {
	ID         string
	CustomerID sql.NullString
	Now        time.Time
}

const setProjectCustomer = `UPDATE projects SET customer_id = ?, updated_at = ? WHERE id = ?`

func (q *Queries) SetProjectCustomer(ctx context.Context, arg SetProjectCustomerParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, setProjectCustomer, arg.CustomerID, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteProject = `DELETE FROM projects WHERE id = ?`

func (q *Queries) DeleteProject(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteProject, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
