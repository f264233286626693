package database

import (
	"context"
	"time"

	"github.com/wes/paca/internal/models"
)

// ProjectDetails carries the editable fields of a project.
type ProjectDetails struct {
	Name        string
	Color       string
	Description *string
	HourlyRate  *float64
	CustomerID  *string
}

// TimeEntryQuery filters ListTimeEntries. Zero values do not filter.
type TimeEntryQuery struct {
	ProjectID      string
	From           *time.Time
	To             *time.Time
	ClosedOnly     bool
	RunningOnly    bool
	UninvoicedOnly bool
	Ascending      bool
	Limit          int
}

// InvoiceDetails is the local record written when a draft invoice has been created
// remotely, together with the entries it bills.
type InvoiceDetails struct {
	ProjectID   string
	CustomerID  string
	TotalHours  float64
	TotalAmount float64
	ExternalID  *string
	EntryIDs    []string
}

type DB interface {
	Close() error
	// WithTx runs fn in one transaction; fn receives a DB bound to it. Nested calls
	// reuse the outer transaction.
	WithTx(ctx context.Context, fn func(tx DB) error) error

	CreateCustomer(ctx context.Context, name, email string) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	GetCustomerByName(ctx context.Context, name string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	UpdateCustomer(ctx context.Context, id, name, email string) (*models.Customer, error)
	SetCustomerExternalID(ctx context.Context, id, externalID string) error
	DeleteCustomer(ctx context.Context, id string) error

	CreateProject(ctx context.Context, details ProjectDetails) (*models.Project, error)
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)
	GetProjectByName(ctx context.Context, name string) (*models.Project, error)
	ListProjects(ctx context.Context, includeArchived bool) ([]*models.Project, error)
	UpdateProject(ctx context.Context, id string, details ProjectDetails) (*models.Project, error)
	SetProjectArchived(ctx context.Context, id string, archived bool) error
	SetProjectCustomer(ctx context.Context, id string, customerID *string) error
	DeleteProject(ctx context.Context, id string) error

	CreateTimeEntry(ctx context.Context, projectID string, start time.Time, end *time.Time, description *string) (*models.TimeEntry, error)
	GetTimeEntry(ctx context.Context, id string) (*models.TimeEntry, error)
	GetRunningTimeEntry(ctx context.Context) (*models.TimeEntry, error)
	CountRunningTimeEntries(ctx context.Context) (int64, error)
	StopTimeEntry(ctx context.Context, id string, end time.Time, description *string) (*models.TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, id string, start time.Time, end *time.Time, description *string) (*models.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, id string) error
	ListTimeEntries(ctx context.Context, query TimeEntryQuery) ([]models.TimeEntry, error)

	CreateInvoice(ctx context.Context, details InvoiceDetails) (*models.Invoice, error)
	ListInvoices(ctx context.Context, projectID string) ([]*models.Invoice, error)

	GetSetting(ctx context.Context, name string) (string, error)
	SetSetting(ctx context.Context, name, value string) error
	ListSettings(ctx context.Context) (map[string]string, error)

	CreateTask(ctx context.Context, details TaskDetails) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, projectID string) ([]*models.Task, error)
	UpdateTask(ctx context.Context, id string, details TaskDetails) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	DeleteCompletedTasks(ctx context.Context, before time.Time) (int64, error)

	CreateTag(ctx context.Context, name, color string) (*models.Tag, error)
	GetTagByName(ctx context.Context, name string) (*models.Tag, error)
	ListTags(ctx context.Context) ([]*models.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	AddTaskTag(ctx context.Context, taskID, tagID string) error
	RemoveTaskTag(ctx context.Context, taskID, tagID string) error

	// Backup and Restore work on local sqlite3 files only.
	Backup(ctx context.Context, path string) error
	Restore(ctx context.Context, src string) error
}

var _ DB = (*SQLDB)(nil)
