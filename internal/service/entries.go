package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wes/paca/internal/database"
	"github.com/wes/paca/internal/models"
	"github.com/wes/paca/internal/tzclock"
	"github.com/wes/paca/internal/utils"
)

var clockOnly = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseTime reads "YYYY-MM-DD HH:MM", or "HH:MM" meaning today, as a wall-clock reading
// in the display zone.
func (s *TimesheetService) ParseTime(ctx context.Context, input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	zone := s.DisplayZone(ctx)

	if m := clockOnly.FindStringSubmatch(input); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return time.Time{}, fmt.Errorf("%w: %q out of range", tzclock.ErrInvalidCivil, input)
		}
		today := s.clock.InstantToCivil(s.now(), zone)
		return s.clock.CivilToInstant(today.Year, today.Month, today.Day, hour, minute, zone), nil
	}

	t, err := s.clock.Parse(input, zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("time must be in format 'YYYY-MM-DD HH:MM' or 'HH:MM': %w", err)
	}
	return t, nil
}

// ParseDate reads "YYYY-MM-DD" as midnight in the display zone.
func (s *TimesheetService) ParseDate(ctx context.Context, input string) (time.Time, error) {
	t, err := s.clock.Parse(strings.TrimSpace(input)+" 00:00", s.DisplayZone(ctx))
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in format 'YYYY-MM-DD': %w", err)
	}
	return t, nil
}

// FormatTime renders t for display in the display zone, with its offset label.
func (s *TimesheetService) FormatTime(ctx context.Context, t time.Time) string {
	civil := s.clock.InstantToCivil(t, s.DisplayZone(ctx))
	return civil.String() + " " + civil.OffsetLabel
}

// AddEntry records a finished piece of work. Manual entries are always closed.
func (s *TimesheetService) AddEntry(ctx context.Context, projectName, start, end, description string) (*models.TimeEntry, error) {
	project, err := s.projectByName(ctx, projectName)
	if err != nil {
		return nil, err
	}

	startTime, endTime, err := s.parseRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	entry, err := s.db.CreateTimeEntry(ctx, project.ID, startTime, &endTime, utils.TrimToPtr(description))
	if err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}
	entry.ProjectName = project.Name
	return entry, nil
}

// EntryEdit holds the fields to change. Empty strings leave a field as is.
type EntryEdit struct {
	Start       string
	End         string
	Description *string
}

func (s *TimesheetService) EditEntry(ctx context.Context, id string, edit EntryEdit) (*models.TimeEntry, error) {
	entry, err := s.db.GetTimeEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	if entry.InvoiceID != nil && (edit.Start != "" || edit.End != "") {
		return nil, fmt.Errorf("cannot change the times of entry %s: %w", id, ErrEntryInvoiced)
	}

	start := entry.StartTime
	if edit.Start != "" {
		if start, err = s.ParseTime(ctx, edit.Start); err != nil {
			return nil, err
		}
	}
	end := entry.EndTime
	if edit.End != "" {
		t, err := s.ParseTime(ctx, edit.End)
		if err != nil {
			return nil, err
		}
		end = &t
	}
	if end != nil && !end.After(start) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}

	description := entry.Description
	if edit.Description != nil {
		description = utils.TrimToPtr(*edit.Description)
	}

	return s.db.UpdateTimeEntry(ctx, id, start, end, description)
}

func (s *TimesheetService) DeleteEntry(ctx context.Context, id string) error {
	entry, err := s.db.GetTimeEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get time entry: %w", err)
	}
	if entry.InvoiceID != nil {
		return fmt.Errorf("cannot delete entry %s: %w", id, ErrEntryInvoiced)
	}
	return s.db.DeleteTimeEntry(ctx, id)
}

// EntryFilter selects entries for listing and export. Dates are YYYY-MM-DD in the display
// zone; To is inclusive.
type EntryFilter struct {
	Project        string
	From           string
	To             string
	UninvoicedOnly bool
	Limit          int
}

func (s *TimesheetService) ListEntries(ctx context.Context, f EntryFilter) ([]models.TimeEntry, error) {
	q := database.TimeEntryQuery{UninvoicedOnly: f.UninvoicedOnly, Limit: f.Limit}

	if f.Project != "" {
		p, err := s.projectByName(ctx, f.Project)
		if err != nil {
			return nil, err
		}
		q.ProjectID = p.ID
	}
	if f.From != "" {
		from, err := s.ParseDate(ctx, f.From)
		if err != nil {
			return nil, err
		}
		q.From = &from
	}
	if f.To != "" {
		to, err := s.ParseDate(ctx, f.To)
		if err != nil {
			return nil, err
		}
		// To is inclusive: stop at the next local midnight, which is not always 24h away.
		zone := s.DisplayZone(ctx)
		day := s.clock.InstantToCivil(to, zone)
		next := time.Date(day.Year, time.Month(day.Month), day.Day+1, 0, 0, 0, 0, time.UTC)
		to = s.clock.CivilToInstant(next.Year(), int(next.Month()), next.Day(), 0, 0, zone)
		q.To = &to
	}

	return s.db.ListTimeEntries(ctx, q)
}

// DisplayEntry writes a one-line summary of entry, plus its description when set.
func (s *TimesheetService) DisplayEntry(ctx context.Context, w io.Writer, entry *models.TimeEntry, rate float64) {
	status := "Active"
	endTime := "now"
	if entry.EndTime != nil {
		status = "Completed"
		endTime = s.clock.InstantToCivil(*entry.EndTime, s.DisplayZone(ctx)).String()[11:]
	}

	duration := s.CalculateDuration(entry)
	billable := ""
	if rate > 0 && entry.EndTime != nil {
		billable = " | " + FormatAmount(duration.Hours()*rate)
	}
	invoiced := ""
	if entry.InvoiceID != nil {
		invoiced = " | invoiced"
	}

	fmt.Fprintf(w, "%s | %s | %s - %s (%s)%s | %s%s\n",
		entry.ID,
		entry.ProjectName,
		s.FormatTime(ctx, entry.StartTime),
		endTime,
		FormatDuration(duration),
		billable,
		status,
		invoiced)

	if entry.Description != nil && *entry.Description != "" {
		fmt.Fprintf(w, "  → %s\n", *entry.Description)
	}
}

// ExportEntriesCSV writes entries as CSV with times in the display zone.
func (s *TimesheetService) ExportEntriesCSV(ctx context.Context, w io.Writer, f EntryFilter) (int, error) {
	entries, err := s.ListEntries(ctx, f)
	if err != nil {
		return 0, err
	}
	projects, err := s.projectIndex(ctx)
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)

	if err := writer.Write([]string{
		"ID", "Project", "Customer", "Start Time", "End Time", "Duration (minutes)", "Hourly Rate", "Billable Amount", "Description", "Invoice ID",
	}); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	zone := s.DisplayZone(ctx)
	for _, e := range entries {
		project := projects[e.ProjectID]
		customer := ""
		if project != nil && project.Customer != nil {
			customer = project.Customer.Name
		}

		endTime := ""
		if e.EndTime != nil {
			endTime = s.clock.FormatForEdit(*e.EndTime, zone)
		}

		rate := project.Rate()
		amount := e.Duration().Hours() * rate

		record := []string{
			e.ID,
			e.ProjectName,
			customer,
			s.clock.FormatForEdit(e.StartTime, zone),
			endTime,
			strconv.FormatFloat(e.Duration().Minutes(), 'f', 0, 64),
			strconv.FormatFloat(rate, 'f', 2, 64),
			strconv.FormatFloat(amount, 'f', 2, 64),
			utils.FromPtr(e.Description),
			utils.FromPtr(e.InvoiceID),
		}
		if err := writer.Write(record); err != nil {
			return 0, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return len(entries), nil
}

func (s *TimesheetService) parseRange(ctx context.Context, start, end string) (time.Time, time.Time, error) {
	startTime, err := s.ParseTime(ctx, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endTime, err := s.ParseTime(ctx, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !endTime.After(startTime) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}
	return startTime, endTime, nil
}

func (s *TimesheetService) projectIndex(ctx context.Context) (map[string]*models.Project, error) {
	projects, err := s.db.ListProjects(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	index := make(map[string]*models.Project, len(projects))
	for _, p := range projects {
		index[p.ID] = p
	}
	return index, nil
}
