package db

import (
	"context"
	"database/sql"
	"time"
)

type CreateInvoiceParams struct {
	ID          string
	ProjectID   string
	CustomerID  string
	TotalHours  float64
	TotalAmount float64
	ExternalID  sql.NullString
	CreatedAt   time.Time
}

const createInvoice = `INSERT INTO invoices (id, project_id, customer_id, total_hours, total_amount, external_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) error {
	_, err := q.db.ExecContext(ctx, createInvoice,
		arg.ID, arg.ProjectID, arg.CustomerID, arg.TotalHours, arg.TotalAmount, arg.ExternalID, arg.CreatedAt,
	)
	return err
}

const invoiceColumns = `i.id, i.project_id, i.customer_id, i.total_hours, i.total_amount, i.external_id, i.created_at,
COALESCE(p.name, ''), COALESCE(c.name, '')`

const listInvoices = `SELECT ` + invoiceColumns + ` FROM invoices i
LEFT JOIN projects p ON p.id = i.project_id
LEFT JOIN customers c ON c.id = i.customer_id
WHERE (? = '' OR i.project_id = ?)
ORDER BY i.created_at DESC`

func (q *Queries) ListInvoices(ctx context.Context, projectID string) ([]InvoiceRow, error) {
	rows, err := q.db.QueryContext(ctx, listInvoices, projectID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []InvoiceRow
	for rows.Next() {
		var r InvoiceRow
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.CustomerID, &r.TotalHours, &r.TotalAmount, &r.ExternalID, &r.CreatedAt,
			&r.ProjectName, &r.CustomerName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
