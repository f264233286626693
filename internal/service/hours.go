package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wes/paca/internal/database"
	"github.com/wes/paca/internal/stats"
)

// WeeklyStats buckets closed time over the trailing window. Weeks follow the process's
// local calendar.
func (s *TimesheetService) WeeklyStats(ctx context.Context, months int, anchor time.Weekday) ([]stats.WeekBucket, error) {
	if months <= 0 {
		months = s.cfg.WeeklyMonths
	}
	if months <= 0 {
		months = 6
	}

	agg := stats.Aggregator{Now: s.now, Location: s.clock.Location()}
	from := stats.WeekStart(s.now().In(s.clock.Location()).AddDate(0, -months, 0), anchor)

	entries, err := s.db.ListTimeEntries(ctx, database.TimeEntryQuery{From: &from, ClosedOnly: true, Ascending: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get time entries: %w", err)
	}
	return agg.Bucketize(entries, months, anchor), nil
}

// TimeStats totals closed time started today, this week and this month.
func (s *TimesheetService) TimeStats(ctx context.Context) (stats.TimeStats, error) {
	loc := s.clock.Location()
	now := s.now().In(loc)

	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	if week := stats.WeekStart(now, time.Sunday); week.Before(from) {
		from = week
	}

	entries, err := s.db.ListTimeEntries(ctx, database.TimeEntryQuery{From: &from, ClosedOnly: true})
	if err != nil {
		return stats.TimeStats{}, fmt.Errorf("failed to get time entries: %w", err)
	}
	return stats.Totals(entries, now, loc), nil
}

// HoursSummary is closed time and its value over a period.
type HoursSummary struct {
	From     time.Time
	To       time.Time
	Duration time.Duration
	Amount   float64
}

// Hours sums closed time for period ("day", "week", "fortnight" or "month") around
// date (YYYY-MM-DD, default today), optionally for one project.
func (s *TimesheetService) Hours(ctx context.Context, projectName, period, date string) (*HoursSummary, error) {
	target := s.now()
	if date != "" {
		t, err := s.ParseDate(ctx, date)
		if err != nil {
			return nil, err
		}
		target = t
	}

	zone := s.DisplayZone(ctx)
	civil := s.clock.InstantToCivil(target, zone)
	fromDay, toDay := CalculatePeriodRange(period, time.Date(civil.Year, time.Month(civil.Month), civil.Day, 0, 0, 0, 0, time.UTC))
	from := s.clock.CivilToInstant(fromDay.Year(), int(fromDay.Month()), fromDay.Day(), 0, 0, zone)
	to := s.clock.CivilToInstant(toDay.Year(), int(toDay.Month()), toDay.Day(), 0, 0, zone)

	q := database.TimeEntryQuery{From: &from, To: &to, ClosedOnly: true}
	if projectName != "" {
		p, err := s.projectByName(ctx, projectName)
		if err != nil {
			return nil, err
		}
		q.ProjectID = p.ID
	}

	entries, err := s.db.ListTimeEntries(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get time entries: %w", err)
	}
	projects, err := s.projectIndex(ctx)
	if err != nil {
		return nil, err
	}

	summary := &HoursSummary{From: from, To: to}
	for _, e := range entries {
		d := e.Duration()
		if d <= 0 {
			continue
		}
		summary.Duration += d
		summary.Amount += d.Hours() * projects[e.ProjectID].Rate()
	}
	return summary, nil
}

// CalculatePeriodRange returns the first day of period containing day and the first day
// after it. Weeks start on Monday.
func CalculatePeriodRange(period string, day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	switch period {
	case "week", "fortnight":
		start = stats.WeekStart(start, time.Monday)
		days := 7
		if period == "fortnight" {
			days = 14
		}
		return start, start.AddDate(0, 0, days)
	case "month":
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		return start, start.AddDate(0, 0, 1)
	}
}
