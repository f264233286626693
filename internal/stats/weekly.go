// Package stats derives chart and dashboard figures from closed time entries. Nothing
// here is cached; every call recomputes from the entries it is given.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/wes/paca/internal/models"
)

// ProjectTotal is one project's share of a week.
type ProjectTotal struct {
	ProjectID   string
	ProjectName string
	TotalMs     int64
}

// WeekBucket sums the closed entries that started in one 7-day window.
type WeekBucket struct {
	WeekStart  time.Time
	PerProject []ProjectTotal
	TotalMs    int64
}

// Label renders the week start as M/D.
func (b WeekBucket) Label() string {
	return fmt.Sprintf("%d/%d", int(b.WeekStart.Month()), b.WeekStart.Day())
}

// Aggregator buckets entries against a clock and a calendar. Weeks are computed in
// Location, which is the process's local zone, not any display zone.
type Aggregator struct {
	Now      func() time.Time
	Location *time.Location
}

var defaultAggregator = Aggregator{}

// Bucketize groups entries with Aggregator defaults (time.Now, time.Local).
func Bucketize(entries []models.TimeEntry, trailingMonths int, anchor time.Weekday) []WeekBucket {
	return defaultAggregator.Bucketize(entries, trailingMonths, anchor)
}

// Bucketize groups closed entries into weeks starting on anchor, over the trailing
// window ending now. Entries are attributed whole to the week they start in. Weeks with
// no time are omitted; the result is ordered oldest first.
func (a Aggregator) Bucketize(entries []models.TimeEntry, trailingMonths int, anchor time.Weekday) []WeekBucket {
	loc := a.location()
	windowStart := WeekStart(a.now().In(loc).AddDate(0, -trailingMonths, 0), anchor)

	type week struct {
		bucket WeekBucket
		index  map[string]int
	}
	weeks := make(map[time.Time]*week)

	for _, e := range entries {
		if e.Running() || e.StartTime.Before(windowStart) {
			continue
		}
		ms := e.DurationMs()
		if ms <= 0 {
			continue
		}

		key := WeekStart(e.StartTime.In(loc), anchor)
		w, ok := weeks[key]
		if !ok {
			w = &week{bucket: WeekBucket{WeekStart: key}, index: make(map[string]int)}
			weeks[key] = w
		}

		i, ok := w.index[e.ProjectID]
		if !ok {
			i = len(w.bucket.PerProject)
			w.index[e.ProjectID] = i
			w.bucket.PerProject = append(w.bucket.PerProject, ProjectTotal{ProjectID: e.ProjectID, ProjectName: e.ProjectName})
		}
		w.bucket.PerProject[i].TotalMs += ms
		w.bucket.TotalMs += ms
	}

	result := make([]WeekBucket, 0, len(weeks))
	for _, w := range weeks {
		if w.bucket.TotalMs > 0 {
			result = append(result, w.bucket)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WeekStart.Before(result[j].WeekStart)
	})
	return result
}

// Last returns the most recent n buckets.
func Last(buckets []WeekBucket, n int) []WeekBucket {
	if n <= 0 {
		return nil
	}
	if n >= len(buckets) {
		return buckets
	}
	return buckets[len(buckets)-n:]
}

// WeekStart returns midnight of the most recent anchor weekday at or before t, in t's
// location.
func WeekStart(t time.Time, anchor time.Weekday) time.Time {
	delta := (int(t.Weekday()) - int(anchor) + 7) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-delta, 0, 0, 0, 0, t.Location())
}

func (a Aggregator) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a Aggregator) location() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}
