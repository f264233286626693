package stats_test

import (
	"testing"
	"time"

	"github.com/wes/paca/internal/models"
	"github.com/wes/paca/internal/stats"
)

var est = time.FixedZone("EST", -5*3600)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, est)
}

func closed(id, project string, start time.Time, d time.Duration) models.TimeEntry {
	end := start.Add(d)
	return models.TimeEntry{ID: id, ProjectID: project, ProjectName: project, StartTime: start, EndTime: &end}
}

func fixture() []models.TimeEntry {
	running := models.TimeEntry{ID: "e", ProjectID: "p1", StartTime: at(2024, 6, 19, 11, 0)}
	return []models.TimeEntry{
		closed("a", "p1", at(2024, 6, 17, 9, 0), time.Hour),
		closed("b", "p2", at(2024, 6, 18, 10, 0), 30*time.Minute),
		closed("c", "p1", at(2024, 6, 19, 8, 0), 15*time.Minute),
		closed("d", "p1", at(2024, 6, 8, 23, 30), 2*time.Hour),
		running,
		closed("f", "p1", at(2023, 12, 16, 10, 0), time.Hour),
		closed("g", "p1", at(2024, 5, 1, 10, 0), 0),
		closed("h", "p2", at(2024, 5, 2, 10, 0), -time.Hour),
		closed("i", "p2", at(2023, 12, 17, 0, 0), time.Hour),
	}
}

func aggregator() stats.Aggregator {
	return stats.Aggregator{
		Now:      func() time.Time { return at(2024, 6, 19, 12, 0) },
		Location: est,
	}
}

func TestBucketize(t *testing.T) {
	buckets := aggregator().Bucketize(fixture(), 6, time.Sunday)

	want := []struct {
		start   time.Time
		label   string
		totalMs int64
	}{
		{at(2023, 12, 17, 0, 0), "12/17", time.Hour.Milliseconds()},
		{at(2024, 6, 2, 0, 0), "6/2", (2 * time.Hour).Milliseconds()},
		{at(2024, 6, 16, 0, 0), "6/16", (105 * time.Minute).Milliseconds()},
	}
	if len(buckets) != len(want) {
		t.Fatalf("got %d buckets, want %d: %+v", len(buckets), len(want), buckets)
	}
	for i, w := range want {
		b := buckets[i]
		if !b.WeekStart.Equal(w.start) {
			t.Errorf("bucket %d WeekStart = %v, want %v", i, b.WeekStart, w.start)
		}
		if b.Label() != w.label {
			t.Errorf("bucket %d Label = %q, want %q", i, b.Label(), w.label)
		}
		if b.TotalMs != w.totalMs {
			t.Errorf("bucket %d TotalMs = %d, want %d", i, b.TotalMs, w.totalMs)
		}
	}

	last := buckets[2]
	if len(last.PerProject) != 2 {
		t.Fatalf("last week projects = %+v, want p1 and p2", last.PerProject)
	}
	if last.PerProject[0].ProjectID != "p1" || last.PerProject[0].TotalMs != (75*time.Minute).Milliseconds() {
		t.Errorf("first project = %+v, want p1 with 75m", last.PerProject[0])
	}
	if last.PerProject[1].ProjectID != "p2" || last.PerProject[1].TotalMs != (30*time.Minute).Milliseconds() {
		t.Errorf("second project = %+v, want p2 with 30m", last.PerProject[1])
	}
}

func TestBucketizeConservesTime(t *testing.T) {
	entries := fixture()
	agg := aggregator()
	windowStart := stats.WeekStart(at(2023, 12, 19, 12, 0), time.Sunday)

	var want int64
	for _, e := range entries {
		if e.Running() || e.StartTime.Before(windowStart) || e.DurationMs() <= 0 {
			continue
		}
		want += e.DurationMs()
	}

	var got int64
	for _, b := range agg.Bucketize(entries, 6, time.Sunday) {
		var perProject int64
		for _, p := range b.PerProject {
			perProject += p.TotalMs
		}
		if perProject != b.TotalMs {
			t.Errorf("week %s: per-project sum %d != total %d", b.Label(), perProject, b.TotalMs)
		}
		got += b.TotalMs
	}
	if got != want {
		t.Errorf("bucketed total = %d, want %d", got, want)
	}
}

func TestBucketizeDoesNotSplitAcrossWeeks(t *testing.T) {
	// Saturday 23:30 to Sunday 01:30 stays in the week it started.
	entries := []models.TimeEntry{closed("d", "p1", at(2024, 6, 8, 23, 30), 2*time.Hour)}
	buckets := aggregator().Bucketize(entries, 6, time.Sunday)
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	if !buckets[0].WeekStart.Equal(at(2024, 6, 2, 0, 0)) {
		t.Errorf("WeekStart = %v, want 2024-06-02", buckets[0].WeekStart)
	}
}

func TestBucketizeAnchor(t *testing.T) {
	sunday := []models.TimeEntry{closed("x", "p1", at(2024, 6, 16, 10, 0), time.Hour)}

	tests := []struct {
		anchor time.Weekday
		want   time.Time
	}{
		{time.Sunday, at(2024, 6, 16, 0, 0)},
		{time.Monday, at(2024, 6, 10, 0, 0)},
		{time.Saturday, at(2024, 6, 15, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.anchor.String(), func(t *testing.T) {
			buckets := aggregator().Bucketize(sunday, 6, tt.anchor)
			if len(buckets) != 1 {
				t.Fatalf("got %d buckets, want 1", len(buckets))
			}
			if !buckets[0].WeekStart.Equal(tt.want) {
				t.Errorf("WeekStart = %v, want %v", buckets[0].WeekStart, tt.want)
			}
		})
	}
}

func TestBucketizeEmpty(t *testing.T) {
	if got := aggregator().Bucketize(nil, 6, time.Sunday); len(got) != 0 {
		t.Errorf("Bucketize(nil) = %+v, want empty", got)
	}
}

func TestLast(t *testing.T) {
	buckets := aggregator().Bucketize(fixture(), 6, time.Sunday)

	if got := stats.Last(buckets, 2); len(got) != 2 || got[1].Label() != "6/16" {
		t.Errorf("Last(2) = %+v", got)
	}
	if got := stats.Last(buckets, 10); len(got) != len(buckets) {
		t.Errorf("Last(10) length = %d, want %d", len(got), len(buckets))
	}
	if got := stats.Last(buckets, 0); got != nil {
		t.Errorf("Last(0) = %+v, want nil", got)
	}
}

func TestTotals(t *testing.T) {
	got := stats.Totals(fixture(), at(2024, 6, 19, 12, 0), est)
	want := stats.TimeStats{
		TodayMs: (15 * time.Minute).Milliseconds(),
		WeekMs:  (105 * time.Minute).Milliseconds(),
		MonthMs: (225 * time.Minute).Milliseconds(),
	}
	if got != want {
		t.Errorf("Totals = %+v, want %+v", got, want)
	}
}
