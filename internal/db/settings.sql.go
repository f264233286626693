package db

import "context"

const getSetting = `SELECT value FROM settings WHERE name = ?`

func (q *Queries) GetSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getSetting, name).Scan(&value)
	return value, err
}

const deleteSetting = `DELETE FROM settings WHERE name = ?`

const insertSetting = `INSERT INTO settings (name, value) VALUES (?, ?)`

// SetSetting replaces a value. Callers run it inside a transaction so the delete and
// insert land together; the pair avoids dialect-specific upsert syntax.
func (q *Queries) SetSetting(ctx context.Context, name, value string) error {
	if _, err := q.db.ExecContext(ctx, deleteSetting, name); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, insertSetting, name, value)
	return err
}

const listSettings = `SELECT name, value FROM settings ORDER BY name ASC`

func (q *Queries) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := q.db.QueryContext(ctx, listSettings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, rows.Err()
}
