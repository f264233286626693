// Package billing turns unbilled time into timesheet groups and priced invoice line
// items. Everything here is a pure function of its inputs.
package billing

import (
	"sort"
	"strings"

	"github.com/wes/paca/internal/models"
)

// TimesheetGroup is the unbilled, billable time of one project.
type TimesheetGroup struct {
	Project     *models.Project
	Entries     []models.TimeEntry
	TotalMs     int64
	TotalAmount float64
}

// TotalHours is TotalMs as fractional hours.
func (g TimesheetGroup) TotalHours() float64 {
	return Hours(g.TotalMs)
}

// Group collects closed, uninvoiced entries of billable projects by project. Entries
// whose project is missing from projects are skipped. Amounts are summed per entry and
// never rounded here. Groups are ordered by project name, case-insensitively.
func Group(entries []models.TimeEntry, projects map[string]*models.Project) []TimesheetGroup {
	byProject := make(map[string]int)
	var groups []TimesheetGroup

	for _, e := range entries {
		if e.Running() || e.InvoiceID != nil {
			continue
		}
		project, ok := projects[e.ProjectID]
		if !ok || !project.Billable() {
			continue
		}
		ms := e.DurationMs()
		if ms <= 0 {
			continue
		}

		i, ok := byProject[e.ProjectID]
		if !ok {
			i = len(groups)
			byProject[e.ProjectID] = i
			groups = append(groups, TimesheetGroup{Project: project})
		}
		g := &groups[i]
		g.Entries = append(g.Entries, e)
		g.TotalMs += ms
		g.TotalAmount += Hours(ms) * project.Rate()
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].Project.Name) < strings.ToLower(groups[j].Project.Name)
	})
	return groups
}
