package billing_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/wes/paca/internal/billing"
	"github.com/wes/paca/internal/models"
	"github.com/wes/paca/internal/utils"
)

var base = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func entry(id, project string, offset, d time.Duration) models.TimeEntry {
	start := base.Add(offset)
	end := start.Add(d)
	return models.TimeEntry{ID: id, ProjectID: project, StartTime: start, EndTime: &end}
}

func project(id, name string, rate *float64) *models.Project {
	return &models.Project{ID: id, Name: name, HourlyRate: rate}
}

func TestBuildScenario(t *testing.T) {
	p := project("p1", "Website", utils.ToPtr(50.0))
	entries := []models.TimeEntry{
		entry("a", "p1", 0, 90*time.Minute),
		entry("b", "p1", 3*time.Hour, 45*time.Minute),
	}

	d := billing.Build(p, entries, nil)

	if d.TotalHours != 2.25 {
		t.Errorf("TotalHours = %v, want 2.25", d.TotalHours)
	}
	if math.Abs(d.TotalAmount-112.50) > 0.01 {
		t.Errorf("TotalAmount = %v, want 112.50", d.TotalAmount)
	}
	if len(d.LineItems) != 2 {
		t.Fatalf("LineItems = %d, want 2", len(d.LineItems))
	}
	if d.LineItems[0].AmountMinorUnits != 7500 || d.LineItems[1].AmountMinorUnits != 3750 {
		t.Errorf("amounts = %d, %d, want 7500, 3750", d.LineItems[0].AmountMinorUnits, d.LineItems[1].AmountMinorUnits)
	}
	if !d.LineItems[1].PeriodStart.Equal(entries[1].StartTime) || !d.LineItems[1].PeriodEnd.Equal(*entries[1].EndTime) {
		t.Errorf("period = %v - %v", d.LineItems[1].PeriodStart, d.LineItems[1].PeriodEnd)
	}
	if len(d.EntryIDs) != 2 {
		t.Errorf("EntryIDs = %v, want both entries", d.EntryIDs)
	}
}

func TestBuildSelection(t *testing.T) {
	p := project("p1", "Website", utils.ToPtr(100.0))
	entries := []models.TimeEntry{
		entry("a", "p1", 0, time.Hour),
		entry("b", "p1", 2*time.Hour, time.Hour),
		entry("c", "p1", 4*time.Hour, time.Hour),
	}

	tests := []struct {
		name      string
		selection []string
		want      []string
	}{
		{"empty selection bills everything", nil, []string{"a", "b", "c"}},
		{"explicit selection", []string{"b"}, []string{"b"}},
		{"unknown ids are ignored", []string{"c", "zzz"}, []string{"c"}},
		{"no match bills nothing", []string{"zzz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := billing.Build(p, entries, tt.selection)
			if strings.Join(d.EntryIDs, ",") != strings.Join(tt.want, ",") {
				t.Errorf("EntryIDs = %v, want %v", d.EntryIDs, tt.want)
			}
			if len(d.LineItems) != len(tt.want) {
				t.Errorf("LineItems = %d, want %d", len(d.LineItems), len(tt.want))
			}
		})
	}
}

func TestBuildSkipsOpenAndNonPositive(t *testing.T) {
	p := project("p1", "Website", utils.ToPtr(60.0))
	running := models.TimeEntry{ID: "open", ProjectID: "p1", StartTime: base}
	entries := []models.TimeEntry{
		running,
		entry("zero", "p1", time.Hour, 0),
		entry("neg", "p1", 2*time.Hour, -time.Hour),
		entry("ok", "p1", 3*time.Hour, 30*time.Minute),
	}

	d := billing.Build(p, entries, nil)
	if len(d.LineItems) != 1 || d.EntryIDs[0] != "ok" {
		t.Errorf("Build = %+v, want only the closed positive entry", d)
	}
	if d.TotalHours != 0.5 {
		t.Errorf("TotalHours = %v, want 0.5", d.TotalHours)
	}
}

func TestBuildDropsZeroAmountItems(t *testing.T) {
	p := project("p1", "Pennies", utils.ToPtr(0.01))
	entries := []models.TimeEntry{
		entry("tiny", "p1", 0, time.Minute),
		entry("hour", "p1", time.Hour, time.Hour),
	}

	d := billing.Build(p, entries, nil)
	if len(d.LineItems) != 1 {
		t.Fatalf("LineItems = %+v, want only the hour", d.LineItems)
	}
	if d.LineItems[0].AmountMinorUnits != 1 {
		t.Errorf("amount = %d, want 1", d.LineItems[0].AmountMinorUnits)
	}
	if d.TotalAmount != 0.01 {
		t.Errorf("TotalAmount = %v, want 0.01", d.TotalAmount)
	}
	if len(d.EntryIDs) != 2 {
		t.Errorf("EntryIDs = %v, zero-amount entries are still billed", d.EntryIDs)
	}
}

func TestDescribe(t *testing.T) {
	e := entry("a", "p1", 0, 285*time.Minute)
	e.Description = utils.ToPtr("Fixed the login form")
	if got := billing.Describe(4.75, "Website", e); got != "4.75 hour(s) :: Website :: Fixed the login form" {
		t.Errorf("Describe = %q", got)
	}

	e.Description = nil
	want := "1.00 hour(s) :: Website :: Time entry " + e.StartTime.In(time.Local).Format("1/2/2006")
	if got := billing.Describe(1, "Website", e); got != want {
		t.Errorf("Describe placeholder = %q, want %q", got, want)
	}
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		hours, rate float64
		want        int64
	}{
		{1.5, 50, 7500},
		{0.75, 50, 3750},
		{1.0 / 3.0, 100, 3333},
		{2.0 / 3.0, 100, 6667},
		{0.5, 0.01, 1},
		{0.4, 0.01, 0},
		{0, 120, 0},
	}
	for _, tt := range tests {
		if got := billing.ToMinorUnits(tt.hours, tt.rate); got != tt.want {
			t.Errorf("ToMinorUnits(%v, %v) = %d, want %d", tt.hours, tt.rate, got, tt.want)
		}
	}
}

func TestGroup(t *testing.T) {
	invoiced := entry("billed", "web", 5*time.Hour, time.Hour)
	invoiced.InvoiceID = utils.ToPtr("inv-1")
	running := models.TimeEntry{ID: "open", ProjectID: "web", StartTime: base}

	projects := map[string]*models.Project{
		"web":   project("web", "website", utils.ToPtr(50.0)),
		"api":   project("api", "API", utils.ToPtr(80.0)),
		"hobby": project("hobby", "Hobby", nil),
		"pro":   project("pro", "Pro bono", utils.ToPtr(0.0)),
		"zebra": project("zebra", "Zebra", utils.ToPtr(10.0)),
	}
	entries := []models.TimeEntry{
		entry("w1", "web", 0, 90*time.Minute),
		entry("z1", "zebra", 0, time.Hour),
		entry("a1", "api", time.Hour, 30*time.Minute),
		entry("h1", "hobby", 0, 3*time.Hour),
		entry("p1", "pro", 0, 3*time.Hour),
		entry("orphan", "deleted", 0, time.Hour),
		entry("w2", "web", 2*time.Hour, 45*time.Minute),
		entry("neg", "web", 3*time.Hour, -time.Minute),
		invoiced,
		running,
	}

	groups := billing.Group(entries, projects)

	var names []string
	for _, g := range groups {
		names = append(names, g.Project.Name)
	}
	if strings.Join(names, ",") != "API,website,Zebra" {
		t.Fatalf("groups = %v, want API,website,Zebra", names)
	}

	web := groups[1]
	if len(web.Entries) != 2 || web.Entries[0].ID != "w1" || web.Entries[1].ID != "w2" {
		t.Errorf("website entries = %+v", web.Entries)
	}
	if web.TotalMs != (135 * time.Minute).Milliseconds() {
		t.Errorf("website TotalMs = %d", web.TotalMs)
	}
	if web.TotalHours() != 2.25 {
		t.Errorf("website TotalHours = %v, want 2.25", web.TotalHours())
	}
	if math.Abs(web.TotalAmount-112.5) > 1e-9 {
		t.Errorf("website TotalAmount = %v, want 112.5", web.TotalAmount)
	}
}

func TestGroupTiesKeepInputOrder(t *testing.T) {
	projects := map[string]*models.Project{
		"one": project("one", "acme", utils.ToPtr(10.0)),
		"two": project("two", "ACME", utils.ToPtr(10.0)),
	}
	entries := []models.TimeEntry{
		entry("b", "two", 0, time.Hour),
		entry("a", "one", time.Hour, time.Hour),
	}

	groups := billing.Group(entries, projects)
	if len(groups) != 2 || groups[0].Project.ID != "two" || groups[1].Project.ID != "one" {
		t.Errorf("tie order = %v, %v; want input order", groups[0].Project.ID, groups[1].Project.ID)
	}
}
