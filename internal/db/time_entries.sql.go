package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const timeEntryColumns = `te.id, te.project_id, te.start_time, te.end_time, te.description, te.invoice_id, te.created_at, te.updated_at, COALESCE(p.name, '')`

const timeEntryFrom = ` FROM time_entries te LEFT JOIN projects p ON p.id = te.project_id`

func scanTimeEntry(row interface{ Scan(...interface{}) error }) (TimeEntryRow, error) {
	var r TimeEntryRow
	err := row.Scan(&r.ID, &r.ProjectID, &r.StartTime, &r.EndTime, &r.Description, &r.InvoiceID, &r.CreatedAt, &r.UpdatedAt, &r.ProjectName)
	return r, err
}

type CreateTimeEntryParams struct {
	ID          string
	ProjectID   string
	StartTime   time.Time
	EndTime     sql.NullTime
	Description sql.NullString
	Now         time.Time
}

const createTimeEntry = `INSERT INTO time_entries (id, project_id, start_time, end_time, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTimeEntry(ctx context.Context, arg CreateTimeEntryParams) (TimeEntryRow, error) {
	if _, err := q.db.ExecContext(ctx, createTimeEntry,
		arg.ID, arg.ProjectID, arg.StartTime, arg.EndTime, arg.Description, arg.Now, arg.Now,
	); err != nil {
		return TimeEntryRow{}, err
	}
	return q.GetTimeEntry(ctx, arg.ID)
}

const getTimeEntry = `SELECT ` + timeEntryColumns + timeEntryFrom + ` WHERE te.id = ?`

func (q *Queries) GetTimeEntry(ctx context.Context, id string) (TimeEntryRow, error) {
	return scanTimeEntry(q.db.QueryRowContext(ctx, getTimeEntry, id))
}

const getRunningTimeEntry = `SELECT ` + timeEntryColumns + timeEntryFrom + ` WHERE te.end_time IS NULL ORDER BY te.start_time DESC LIMIT 1`

func (q *Queries) GetRunningTimeEntry(ctx context.Context) (TimeEntryRow, error) {
	return scanTimeEntry(q.db.QueryRowContext(ctx, getRunningTimeEntry))
}

const countRunningTimeEntries = `SELECT COUNT(1) FROM time_entries WHERE end_time IS NULL`

func (q *Queries) CountRunningTimeEntries(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRunningTimeEntries).Scan(&n)
	return n, err
}

type StopTimeEntryParams struct {
	ID          string
	EndTime     time.Time
	Description sql.NullString
	Now         time.Time
}

// Only an open entry can be stopped; a description is kept when none is given.
const stopTimeEntry = `UPDATE time_entries SET end_time = ?, description = COALESCE(?, description), updated_at = ?
WHERE id = ? AND end_time IS NULL`

func (q *Queries) StopTimeEntry(ctx context.Context, arg StopTimeEntryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, stopTimeEntry, arg.EndTime, arg.Description, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type UpdateTimeEntryParams struct {
	ID          string
	StartTime   time.Time
	EndTime     sql.NullTime
	Description sql.NullString
	Now         time.Time
}

const updateTimeEntry = `UPDATE time_entries SET start_time = ?, end_time = ?, description = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateTimeEntry(ctx context.Context, arg UpdateTimeEntryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTimeEntry, arg.StartTime, arg.EndTime, arg.Description, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTimeEntry = `DELETE FROM time_entries WHERE id = ?`

func (q *Queries) DeleteTimeEntry(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTimeEntry, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type MarkTimeEntriesInvoicedParams struct {
	IDs       []string
	InvoiceID string
	Now       time.Time
}

// MarkTimeEntriesInvoiced stamps the invoice id on entries that do not carry one yet and
// reports how many rows changed.
func (q *Queries) MarkTimeEntriesInvoiced(ctx context.Context, arg MarkTimeEntriesInvoicedParams) (int64, error) {
	if len(arg.IDs) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(arg.IDs)), ", ")
	query := fmt.Sprintf(`UPDATE time_entries SET invoice_id = ?, updated_at = ? WHERE invoice_id IS NULL AND id IN (%s)`, placeholders)

	args := make([]interface{}, 0, len(arg.IDs)+2)
	args = append(args, arg.InvoiceID, arg.Now)
	for _, id := range arg.IDs {
		args = append(args, id)
	}

	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TimeEntryFilter narrows ListTimeEntries. Zero values do not filter.
type TimeEntryFilter struct {
	ProjectID      string
	From           *time.Time
	To             *time.Time
	ClosedOnly     bool
	RunningOnly    bool
	UninvoicedOnly bool
	Ascending      bool
	Limit          int
}

func (f TimeEntryFilter) build() (string, []interface{}) {
	var where []string
	var args []interface{}

	if f.ProjectID != "" {
		where = append(where, "te.project_id = ?")
		args = append(args, f.ProjectID)
	}
	if f.From != nil {
		where = append(where, "te.start_time >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		where = append(where, "te.start_time < ?")
		args = append(args, f.To.UTC())
	}
	if f.ClosedOnly {
		where = append(where, "te.end_time IS NOT NULL")
	}
	if f.RunningOnly {
		where = append(where, "te.end_time IS NULL")
	}
	if f.UninvoicedOnly {
		where = append(where, "te.invoice_id IS NULL")
	}

	query := `SELECT ` + timeEntryColumns + timeEntryFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Ascending {
		query += " ORDER BY te.start_time ASC"
	} else {
		query += " ORDER BY te.start_time DESC"
	}
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	return query, args
}

func (q *Queries) ListTimeEntries(ctx context.Context, filter TimeEntryFilter) ([]TimeEntryRow, error) {
	query, args := filter.build()
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TimeEntryRow
	for rows.Next() {
		r, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
