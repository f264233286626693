package db

import (
	"context"
	"database/sql"
	"time"
)

const customerColumns = `id, name, email, external_billing_id, created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.ExternalBillingID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type CreateCustomerParams struct {
	ID    string
	Name  string
	Email string
	Now   time.Time
}

const createCustomer = `INSERT INTO customers (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	if _, err := q.db.ExecContext(ctx, createCustomer, arg.ID, arg.Name, arg.Email, arg.Now, arg.Now); err != nil {
		return Customer{}, err
	}
	return q.GetCustomer(ctx, arg.ID)
}

const getCustomer = `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`

func (q *Queries) GetCustomer(ctx context.Context, id string) (Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, getCustomer, id))
}

const getCustomerByName = `SELECT ` + customerColumns + ` FROM customers WHERE name = ?`

func (q *Queries) GetCustomerByName(ctx context.Context, name string) (Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, getCustomerByName, name))
}

const listCustomers = `SELECT ` + customerColumns + ` FROM customers ORDER BY name ASC`

func (q *Queries) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := q.db.QueryContext(ctx, listCustomers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

type UpdateCustomerParams struct {
	ID    string
	Name  string
	Email string
	Now   time.Time
}

const updateCustomer = `UPDATE customers SET name = ?, email = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateCustomer, arg.Name, arg.Email, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type SetCustomerExternalIDParams struct {
	ID                string
	ExternalBillingID sql.NullString
	Now               time.Time
}

const setCustomerExternalID = `UPDATE customers SET external_billing_id = ?, updated_at = ? WHERE id = ?`

func (q *Queries) SetCustomerExternalID(ctx context.Context, arg SetCustomerExternalIDParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, setCustomerExternalID, arg.ExternalBillingID, arg.Now, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteCustomer = `DELETE FROM customers WHERE id = ?`

func (q *Queries) DeleteCustomer(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCustomer, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
