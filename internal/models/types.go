package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Email             string    `json:"email" db:"email"`
	ExternalBillingID *string   `json:"external_billing_id,omitempty" db:"external_billing_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

type Project struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Color       string    `json:"color" db:"color"`
	Description *string   `json:"description,omitempty" db:"description"`
	HourlyRate  *float64  `json:"hourly_rate,omitempty" db:"hourly_rate"`
	Archived    bool      `json:"archived" db:"archived"`
	CustomerID  *string   `json:"customer_id,omitempty" db:"customer_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Customer *Customer `json:"customer,omitempty" db:"-"`
}

// Billable reports whether the project carries a positive hourly rate.
func (p *Project) Billable() bool {
	return p != nil && p.HourlyRate != nil && *p.HourlyRate > 0
}

// Rate returns the hourly rate, or zero when none is set.
func (p *Project) Rate() float64 {
	if p == nil || p.HourlyRate == nil {
		return 0
	}
	return *p.HourlyRate
}

type TimeEntry struct {
	ID          string     `json:"id" db:"id"`
	ProjectID   string     `json:"project_id" db:"project_id"`
	StartTime   time.Time  `json:"start_time" db:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty" db:"end_time"`
	Description *string    `json:"description,omitempty" db:"description"`
	InvoiceID   *string    `json:"invoice_id,omitempty" db:"invoice_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	ProjectName string `json:"project_name,omitempty" db:"project_name"`
}

// Running reports whether the entry is an open timer.
func (e *TimeEntry) Running() bool {
	return e.EndTime == nil
}

// Duration is end minus start for a closed entry and zero for a running one.
// A persisted entry whose end is not after its start yields a non-positive value.
func (e *TimeEntry) Duration() time.Duration {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

// DurationMs is Duration in whole milliseconds.
func (e *TimeEntry) DurationMs() int64 {
	return e.Duration().Milliseconds()
}

type Invoice struct {
	ID          string    `json:"id" db:"id"`
	ProjectID   string    `json:"project_id" db:"project_id"`
	CustomerID  string    `json:"customer_id" db:"customer_id"`
	TotalHours  float64   `json:"total_hours" db:"total_hours"`
	TotalAmount float64   `json:"total_amount" db:"total_amount"`
	ExternalID  *string   `json:"external_id,omitempty" db:"external_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	ProjectName  string `json:"project_name,omitempty" db:"project_name"`
	CustomerName string `json:"customer_name,omitempty" db:"customer_name"`
}

func NewUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
