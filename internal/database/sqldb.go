package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/wes/paca/internal/config"
	"github.com/wes/paca/internal/db"
	"github.com/wes/paca/internal/models"
)

const (
	dialectSQLite = "sqlite"
	dialectMySQL  = "mysql"
)

type SQLDB struct {
	conn    *sql.DB
	queries *db.Queries
	dialect string
	driver  string
	url     string
	dsn     string
	log     *slog.Logger
	now     func() time.Time
	inTx    bool
}

// NewDB opens the configured store. Supported drivers are sqlite3, libsql and mysql.
func NewDB(cfg *config.Config, log *slog.Logger) (*SQLDB, error) {
	if log == nil {
		log = slog.Default()
	}

	dialect, dsn, err := resolveDriver(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	conn, err := openConn(cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, err
	}

	return &SQLDB{
		conn:    conn,
		queries: db.New(conn),
		dialect: dialect,
		driver:  cfg.DatabaseDriver,
		url:     cfg.DatabaseURL,
		dsn:     dsn,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func openConn(driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch driver {
	case "sqlite3":
		// One writer at a time; immediate transactions take the write lock up front.
		conn.SetMaxOpenConns(1)
	case "mysql":
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

func resolveDriver(driver, url string) (dialect, dsn string, err error) {
	switch driver {
	case "sqlite3":
		return dialectSQLite, sqliteDSN(url), nil
	case "libsql":
		return dialectSQLite, url, nil
	case "mysql":
		return dialectMySQL, mysqlDSN(url), nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func sqliteDSN(url string) string {
	params := []string{"_foreign_keys=on", "_busy_timeout=5000", "_txlock=immediate"}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + strings.Join(params, "&")
}

func mysqlDSN(url string) string {
	if strings.Contains(url, "parseTime=") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "parseTime=true"
}

func (s *SQLDB) Close() error {
	if s.inTx {
		return nil
	}
	return s.conn.Close()
}

func (s *SQLDB) WithTx(ctx context.Context, fn func(tx DB) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	child := *s
	child.queries = s.queries.WithTx(tx)
	child.inTx = true

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&child); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Error("rollback failed", slog.Any("error", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLDB) CreateCustomer(ctx context.Context, name, email string) (*models.Customer, error) {
	c, err := s.queries.CreateCustomer(ctx, db.CreateCustomerParams{
		ID:    models.NewUUID(),
		Name:  name,
		Email: email,
		Now:   s.now(),
	})
	if err != nil {
		return nil, wrapErr("create", "customer", name, err)
	}
	return convertCustomer(c), nil
}

func (s *SQLDB) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	c, err := s.queries.GetCustomer(ctx, id)
	if err != nil {
		return nil, wrapErr("get", "customer", id, err)
	}
	return convertCustomer(c), nil
}

func (s *SQLDB) GetCustomerByName(ctx context.Context, name string) (*models.Customer, error) {
	c, err := s.queries.GetCustomerByName(ctx, name)
	if err != nil {
		return nil, wrapErr("get", "customer", name, err)
	}
	return convertCustomer(c), nil
}

func (s *SQLDB) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.queries.ListCustomers(ctx)
	if err != nil {
		return nil, wrapErr("list", "customers", "", err)
	}

	result := make([]*models.Customer, len(customers))
	for i, c := range customers {
		result[i] = convertCustomer(c)
	}
	return result, nil
}

func (s *SQLDB) UpdateCustomer(ctx context.Context, id, name, email string) (*models.Customer, error) {
	n, err := s.queries.UpdateCustomer(ctx, db.UpdateCustomerParams{ID: id, Name: name, Email: email, Now: s.now()})
	if err := requireRow("update", "customer", id, n, err); err != nil {
		return nil, err
	}
	return s.GetCustomerByID(ctx, id)
}

func (s *SQLDB) SetCustomerExternalID(ctx context.Context, id, externalID string) error {
	n, err := s.queries.SetCustomerExternalID(ctx, db.SetCustomerExternalIDParams{
		ID:                id,
		ExternalBillingID: ptrToNullString(&externalID),
		Now:               s.now(),
	})
	return requireRow("set external id on", "customer", id, n, err)
}

func (s *SQLDB) DeleteCustomer(ctx context.Context, id string) error {
	n, err := s.queries.DeleteCustomer(ctx, id)
	return requireRow("delete", "customer", id, n, err)
}

func (s *SQLDB) CreateProject(ctx context.Context, details ProjectDetails) (*models.Project, error) {
	p, err := s.queries.CreateProject(ctx, db.CreateProjectParams{
		ID:          models.NewUUID(),
		Name:        details.Name,
		Color:       details.Color,
		Description: ptrToNullString(details.Description),
		HourlyRate:  ptrToNullFloat(details.HourlyRate),
		CustomerID:  ptrToNullString(details.CustomerID),
		Now:         s.now(),
	})
	if err != nil {
		return nil, wrapErr("create", "project", details.Name, err)
	}
	return s.withCustomer(ctx, convertProject(p))
}

func (s *SQLDB) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.queries.GetProject(ctx, id)
	if err != nil {
		return nil, wrapErr("get", "project", id, err)
	}
	return s.withCustomer(ctx, convertProject(p))
}

func (s *SQLDB) GetProjectByName(ctx context.Context, name string) (*models.Project, error) {
	p, err := s.queries.GetProjectByName(ctx, name)
	if err != nil {
		return nil, wrapErr("get", "project", name, err)
	}
	return s.withCustomer(ctx, convertProject(p))
}

// ListProjects returns projects ordered by name with their customers attached.
func (s *SQLDB) ListProjects(ctx context.Context, includeArchived bool) ([]*models.Project, error) {
	projects, err := s.queries.ListProjects(ctx, includeArchived)
	if err != nil {
		return nil, wrapErr("list", "projects", "", err)
	}
	customers, err := s.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}

	result := make([]*models.Project, len(projects))
	for i, p := range projects {
		result[i] = convertProject(p)
		if result[i].CustomerID != nil {
			result[i].Customer = byID[*result[i].CustomerID]
		}
	}
	return result, nil
}

func (s *SQLDB) UpdateProject(ctx context.Context, id string, details ProjectDetails) (*models.Project, error) {
	n, err := s.queries.UpdateProject(ctx, db.UpdateProjectParams{
		ID:          id,
		Name:        details.Name,
		Color:       details.Color,
		Description: ptrToNullString(details.Description),
		HourlyRate:  ptrToNullFloat(details.HourlyRate),
		Now:         s.now(),
	})
	if err := requireRow("update", "project", id, n, err); err != nil {
		return nil, err
	}
	return s.GetProjectByID(ctx, id)
}

func (s *SQLDB) SetProjectArchived(ctx context.Context, id string, archived bool) error {
	n, err := s.queries.SetProjectArchived(ctx, db.SetProjectArchivedParams{ID: id, Archived: archived, Now: s.now()})
	return requireRow("archive", "project", id, n, err)
}

func (s *SQLDB) SetProjectCustomer(ctx context.Context, id string, customerID *string) error {
	n, err := s.queries.SetProjectCustomer(ctx, db.SetProjectCustomerParams{
		ID:         id,
		CustomerID: ptrToNullString(customerID),
		Now:        s.now(),
	})
	return requireRow("set customer on", "project", id, n, err)
}

func (s *SQLDB) DeleteProject(ctx context.Context, id string) error {
	n, err := s.queries.DeleteProject(ctx, id)
	return requireRow("delete", "project", id, n, err)
}

func (s *SQLDB) CreateTimeEntry(ctx context.Context, projectID string, start time.Time, end *time.Time, description *string) (*models.TimeEntry, error) {
	row, err := s.queries.CreateTimeEntry(ctx, db.CreateTimeEntryParams{
		ID:          models.NewUUID(),
		ProjectID:   projectID,
		StartTime:   start.UTC(),
		EndTime:     ptrToNullTime(end),
		Description: ptrToNullString(description),
		Now:         s.now(),
	})
	if err != nil {
		if end == nil && isUniqueViolation(err) {
			err = ErrTimerRunning
		}
		return nil, wrapErr("create", "time entry", "", err)
	}
	return convertTimeEntry(row), nil
}

func (s *SQLDB) GetTimeEntry(ctx context.Context, id string) (*models.TimeEntry, error) {
	row, err := s.queries.GetTimeEntry(ctx, id)
	if err != nil {
		return nil, wrapErr("get", "time entry", id, err)
	}
	return convertTimeEntry(row), nil
}

// GetRunningTimeEntry returns nil without an error when no timer is running.
func (s *SQLDB) GetRunningTimeEntry(ctx context.Context) (*models.TimeEntry, error) {
	row, err := s.queries.GetRunningTimeEntry(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get", "running time entry", "", err)
	}
	return convertTimeEntry(row), nil
}

func (s *SQLDB) CountRunningTimeEntries(ctx context.Context) (int64, error) {
	n, err := s.queries.CountRunningTimeEntries(ctx)
	if err != nil {
		return 0, wrapErr("count", "running time entries", "", err)
	}
	return n, nil
}

// StopTimeEntry closes an open entry; ErrNotFound when the id is unknown or already closed.
func (s *SQLDB) StopTimeEntry(ctx context.Context, id string, end time.Time, description *string) (*models.TimeEntry, error) {
	n, err := s.queries.StopTimeEntry(ctx, db.StopTimeEntryParams{
		ID:          id,
		EndTime:     end.UTC(),
		Description: ptrToNullString(description),
		Now:         s.now(),
	})
	if err := requireRow("stop", "time entry", id, n, err); err != nil {
		return nil, err
	}
	return s.GetTimeEntry(ctx, id)
}

func (s *SQLDB) UpdateTimeEntry(ctx context.Context, id string, start time.Time, end *time.Time, description *string) (*models.TimeEntry, error) {
	n, err := s.queries.UpdateTimeEntry(ctx, db.UpdateTimeEntryParams{
		ID:          id,
		StartTime:   start.UTC(),
		EndTime:     ptrToNullTime(end),
		Description: ptrToNullString(description),
		Now:         s.now(),
	})
	if err := requireRow("update", "time entry", id, n, err); err != nil {
		return nil, err
	}
	return s.GetTimeEntry(ctx, id)
}

func (s *SQLDB) DeleteTimeEntry(ctx context.Context, id string) error {
	n, err := s.queries.DeleteTimeEntry(ctx, id)
	return requireRow("delete", "time entry", id, n, err)
}

func (s *SQLDB) ListTimeEntries(ctx context.Context, query TimeEntryQuery) ([]models.TimeEntry, error) {
	rows, err := s.queries.ListTimeEntries(ctx, db.TimeEntryFilter(query))
	if err != nil {
		return nil, wrapErr("list", "time entries", "", err)
	}

	result := make([]models.TimeEntry, len(rows))
	for i, row := range rows {
		result[i] = *convertTimeEntry(row)
	}
	return result, nil
}

// CreateInvoice writes the invoice row and stamps its id on every entry in one
// transaction. If any entry is missing or already carries an invoice id, nothing is written.
func (s *SQLDB) CreateInvoice(ctx context.Context, details InvoiceDetails) (*models.Invoice, error) {
	if len(details.EntryIDs) == 0 {
		return nil, ErrNothingToStamp
	}

	invoice := &models.Invoice{
		ID:          models.NewUUID(),
		ProjectID:   details.ProjectID,
		CustomerID:  details.CustomerID,
		TotalHours:  details.TotalHours,
		TotalAmount: details.TotalAmount,
		ExternalID:  details.ExternalID,
		CreatedAt:   s.now(),
	}

	err := s.WithTx(ctx, func(tx DB) error {
		q := tx.(*SQLDB).queries
		if err := q.CreateInvoice(ctx, db.CreateInvoiceParams{
			ID:          invoice.ID,
			ProjectID:   invoice.ProjectID,
			CustomerID:  invoice.CustomerID,
			TotalHours:  invoice.TotalHours,
			TotalAmount: invoice.TotalAmount,
			ExternalID:  ptrToNullString(invoice.ExternalID),
			CreatedAt:   invoice.CreatedAt,
		}); err != nil {
			return wrapErr("create", "invoice", invoice.ID, err)
		}

		n, err := q.MarkTimeEntriesInvoiced(ctx, db.MarkTimeEntriesInvoicedParams{
			IDs:       details.EntryIDs,
			InvoiceID: invoice.ID,
			Now:       invoice.CreatedAt,
		})
		if err != nil {
			return wrapErr("mark invoiced", "time entries", invoice.ID, err)
		}
		if n != int64(len(details.EntryIDs)) {
			return &OpError{Op: "mark invoiced", Resource: "time entries", ID: invoice.ID,
				Err: fmt.Errorf("%w: stamped %d of %d", ErrAlreadyBilled, n, len(details.EntryIDs))}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice recorded",
		slog.String("invoice_id", invoice.ID),
		slog.String("project_id", invoice.ProjectID),
		slog.Int("entries", len(details.EntryIDs)))
	return invoice, nil
}

func (s *SQLDB) ListInvoices(ctx context.Context, projectID string) ([]*models.Invoice, error) {
	rows, err := s.queries.ListInvoices(ctx, projectID)
	if err != nil {
		return nil, wrapErr("list", "invoices", projectID, err)
	}

	result := make([]*models.Invoice, len(rows))
	for i, r := range rows {
		result[i] = &models.Invoice{
			ID:           r.ID,
			ProjectID:    r.ProjectID,
			CustomerID:   r.CustomerID,
			TotalHours:   r.TotalHours,
			TotalAmount:  r.TotalAmount,
			ExternalID:   nullStringToPtr(r.ExternalID),
			CreatedAt:    r.CreatedAt.UTC(),
			ProjectName:  r.ProjectName,
			CustomerName: r.CustomerName,
		}
	}
	return result, nil
}

func (s *SQLDB) GetSetting(ctx context.Context, name string) (string, error) {
	v, err := s.queries.GetSetting(ctx, name)
	if err != nil {
		return "", wrapErr("get", "setting", name, err)
	}
	return v, nil
}

func (s *SQLDB) SetSetting(ctx context.Context, name, value string) error {
	return s.WithTx(ctx, func(tx DB) error {
		return wrapErr("set", "setting", name, tx.(*SQLDB).queries.SetSetting(ctx, name, value))
	})
}

func (s *SQLDB) ListSettings(ctx context.Context) (map[string]string, error) {
	out, err := s.queries.ListSettings(ctx)
	if err != nil {
		return nil, wrapErr("list", "settings", "", err)
	}
	return out, nil
}

func (s *SQLDB) withCustomer(ctx context.Context, p *models.Project) (*models.Project, error) {
	if p.CustomerID == nil {
		return p, nil
	}
	c, err := s.GetCustomerByID(ctx, *p.CustomerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return p, nil
		}
		return nil, err
	}
	p.Customer = c
	return p, nil
}
