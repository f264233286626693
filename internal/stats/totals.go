package stats

import (
	"time"

	"github.com/wes/paca/internal/models"
)

// TimeStats holds closed time started today, this week (from Sunday) and this month.
type TimeStats struct {
	TodayMs int64
	WeekMs  int64
	MonthMs int64
}

func Totals(entries []models.TimeEntry, now time.Time, loc *time.Location) TimeStats {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	week := WeekStart(local, time.Sunday)
	month := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)

	var s TimeStats
	for _, e := range entries {
		if e.Running() {
			continue
		}
		ms := e.DurationMs()
		if !e.StartTime.Before(today) {
			s.TodayMs += ms
		}
		if !e.StartTime.Before(week) {
			s.WeekMs += ms
		}
		if !e.StartTime.Before(month) {
			s.MonthMs += ms
		}
	}
	return s
}
