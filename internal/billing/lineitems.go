package billing

import (
	"fmt"
	"time"

	"github.com/wes/paca/internal/models"
)

type LineItem struct {
	Description      string
	Hours            float64
	Rate             float64
	AmountMinorUnits int64
	PeriodStart      time.Time
	PeriodEnd        time.Time
}

// Draft is the priced result of billing a set of entries.
type Draft struct {
	LineItems []LineItem
	// TotalHours is the unrounded sum over every billed entry.
	TotalHours float64
	// TotalAmount is the sum of the rounded line items, in major units.
	TotalAmount float64
	// EntryIDs lists every entry to stamp as invoiced, including ones whose amount
	// rounded to zero.
	EntryIDs []string
}

// Build prices candidates for project. A non-empty selection bills only the candidates
// it names; an empty selection bills all of them. Open entries and entries without a
// positive duration are never billed. Items that round to zero cents are dropped.
func Build(project *models.Project, candidates []models.TimeEntry, selection []string) Draft {
	billed := candidates
	if len(selection) > 0 {
		selected := make(map[string]struct{}, len(selection))
		for _, id := range selection {
			selected[id] = struct{}{}
		}
		billed = nil
		for _, e := range candidates {
			if _, ok := selected[e.ID]; ok {
				billed = append(billed, e)
			}
		}
	}

	var d Draft
	rate := project.Rate()
	var totalMinor int64
	for _, e := range billed {
		if e.Running() {
			continue
		}
		ms := e.DurationMs()
		if ms <= 0 {
			continue
		}

		hours := Hours(ms)
		d.TotalHours += hours
		d.EntryIDs = append(d.EntryIDs, e.ID)

		amount := ToMinorUnits(hours, rate)
		if amount <= 0 {
			continue
		}
		totalMinor += amount
		d.LineItems = append(d.LineItems, LineItem{
			Description:      Describe(hours, project.Name, e),
			Hours:            hours,
			Rate:             rate,
			AmountMinorUnits: amount,
			PeriodStart:      e.StartTime,
			PeriodEnd:        *e.EndTime,
		})
	}
	d.TotalAmount = FromMinorUnits(totalMinor)
	return d
}

// Describe renders "<hours> hour(s) :: <project> :: <description>".
func Describe(hours float64, projectName string, e models.TimeEntry) string {
	desc := ""
	if e.Description != nil {
		desc = *e.Description
	}
	if desc == "" {
		desc = "Time entry " + e.StartTime.In(time.Local).Format("1/2/2006")
	}
	return fmt.Sprintf("%.2f hour(s) :: %s :: %s", hours, projectName, desc)
}
