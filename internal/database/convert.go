package database

import (
	"database/sql"
	"time"

	"github.com/wes/paca/internal/db"
	"github.com/wes/paca/internal/models"
)

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time.UTC()
		return &t
	}
	return nil
}

func nullStringToPtr(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func nullFloatToPtr(nf sql.NullFloat64) *float64 {
	if nf.Valid {
		return &nf.Float64
	}
	return nil
}

func ptrToNullString(s *string) sql.NullString {
	if s != nil {
		return sql.NullString{String: *s, Valid: true}
	}
	return sql.NullString{Valid: false}
}

func ptrToNullFloat(f *float64) sql.NullFloat64 {
	if f != nil {
		return sql.NullFloat64{Float64: *f, Valid: true}
	}
	return sql.NullFloat64{Valid: false}
}

func ptrToNullTime(t *time.Time) sql.NullTime {
	if t != nil {
		return sql.NullTime{Time: t.UTC(), Valid: true}
	}
	return sql.NullTime{Valid: false}
}

func convertCustomer(c db.Customer) *models.Customer {
	return &models.Customer{
		ID:                c.ID,
		Name:              c.Name,
		Email:             c.Email,
		ExternalBillingID: nullStringToPtr(c.ExternalBillingID),
		CreatedAt:         c.CreatedAt.UTC(),
		UpdatedAt:         c.UpdatedAt.UTC(),
	}
}

func convertProject(p db.Project) *models.Project {
	return &models.Project{
		ID:          p.ID,
		Name:        p.Name,
		Color:       p.Color,
		Description: nullStringToPtr(p.Description),
		HourlyRate:  nullFloatToPtr(p.HourlyRate),
		Archived:    p.Archived,
		CustomerID:  nullStringToPtr(p.CustomerID),
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func convertTimeEntry(r db.TimeEntryRow) *models.TimeEntry {
	return &models.TimeEntry{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		StartTime:   r.StartTime.UTC(),
		EndTime:     nullTimeToPtr(r.EndTime),
		Description: nullStringToPtr(r.Description),
		InvoiceID:   nullStringToPtr(r.InvoiceID),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		ProjectName: r.ProjectName,
	}
}
