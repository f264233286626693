package db

import (
	"database/sql"
	"time"
)

type Customer struct {
	ID                string
	Name              string
	Email             string
	ExternalBillingID sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Project struct {
	ID          string
	Name        string
	Color       string
	Description sql.NullString
	HourlyRate  sql.NullFloat64
	Archived    bool
	CustomerID  sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TimeEntry struct {
	ID          string
	ProjectID   string
	StartTime   time.Time
	EndTime     sql.NullTime
	Description sql.NullString
	InvoiceID   sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TimeEntryRow struct {
	TimeEntry
	ProjectName string
}

type Invoice struct {
	ID          string
	ProjectID   string
	CustomerID  string
	TotalHours  float64
	TotalAmount float64
	ExternalID  sql.NullString
	CreatedAt   time.Time
}

type InvoiceRow struct {
	Invoice
	ProjectName  string
	CustomerName string
}

type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description sql.NullString
	Status      string
	Priority    string
	DueDate     sql.NullTime
	CompletedAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskRow struct {
	Task
	ProjectName string
}

type Tag struct {
	ID        string
	Name      string
	Color     string
	CreatedAt time.Time
}

type TaskTagRow struct {
	TaskID string
	Tag
}
