package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/wes/paca/internal/billing"
	"github.com/wes/paca/internal/database"
	"github.com/wes/paca/internal/models"
	"github.com/wes/paca/internal/payment"
	"github.com/wes/paca/internal/utils"
)

// Timesheets groups every closed, uninvoiced entry of a billable project.
func (s *TimesheetService) Timesheets(ctx context.Context) ([]billing.TimesheetGroup, error) {
	entries, err := s.db.ListTimeEntries(ctx, database.TimeEntryQuery{ClosedOnly: true, UninvoicedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get uninvoiced entries: %w", err)
	}
	projects, err := s.projectIndex(ctx)
	if err != nil {
		return nil, err
	}
	return billing.Group(entries, projects), nil
}

// InvoiceResult is a created invoice and the draft it was built from.
type InvoiceResult struct {
	Invoice    *models.Invoice
	Draft      billing.Draft
	ExternalID string
}

// PrepareInvoice prices the project's unbilled time without touching any state.
func (s *TimesheetService) PrepareInvoice(ctx context.Context, projectName string, selection []string) (*models.Project, billing.Draft, error) {
	project, err := s.projectByName(ctx, projectName)
	if err != nil {
		return nil, billing.Draft{}, err
	}

	groups, err := s.Timesheets(ctx)
	if err != nil {
		return nil, billing.Draft{}, err
	}
	var group *billing.TimesheetGroup
	for i := range groups {
		if groups[i].Project.ID == project.ID {
			group = &groups[i]
			break
		}
	}
	if group == nil {
		return nil, billing.Draft{}, fmt.Errorf("project '%s': %w", projectName, ErrNoBillableEntries)
	}

	draft := billing.Build(group.Project, group.Entries, selection)
	if len(draft.LineItems) == 0 {
		return nil, billing.Draft{}, fmt.Errorf("project '%s': %w", projectName, ErrNoBillableEntries)
	}
	return group.Project, draft, nil
}

// CreateInvoice bills the project's unbilled time, or only the selected entries. The remote
// draft invoice is created first; the local invoice row, the entry stamps and the customer's
// remote id are then written in one transaction. A payment failure changes nothing locally.
func (s *TimesheetService) CreateInvoice(ctx context.Context, projectName string, selection []string) (*InvoiceResult, error) {
	project, draft, err := s.PrepareInvoice(ctx, projectName, selection)
	if err != nil {
		return nil, err
	}
	customer := project.Customer
	if customer == nil {
		return nil, fmt.Errorf("project '%s': %w", projectName, ErrNoCustomer)
	}

	provider, err := s.paymentProvider(ctx)
	if err != nil {
		return nil, err
	}

	customerID, err := provider.EnsureCustomer(ctx, payment.CustomerRef{
		Name:       customer.Name,
		Email:      customer.Email,
		ExistingID: utils.FromPtr(customer.ExternalBillingID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync customer: %w", err)
	}

	externalID, err := provider.CreateDraftInvoice(ctx, customerID, project.Name, draft.LineItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft invoice: %w", err)
	}

	var invoice *models.Invoice
	err = s.db.WithTx(ctx, func(tx database.DB) error {
		if customer.ExternalBillingID == nil || *customer.ExternalBillingID != customerID {
			if err := tx.SetCustomerExternalID(ctx, customer.ID, customerID); err != nil {
				return err
			}
		}
		var err error
		invoice, err = tx.CreateInvoice(ctx, database.InvoiceDetails{
			ProjectID:   project.ID,
			CustomerID:  customer.ID,
			TotalHours:  draft.TotalHours,
			TotalAmount: draft.TotalAmount,
			ExternalID:  &externalID,
			EntryIDs:    draft.EntryIDs,
		})
		return err
	})
	if err != nil {
		s.log.Error("remote draft invoice created but not recorded locally",
			slog.String("external_id", externalID),
			slog.String("project", project.Name),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to record invoice %s: %w", externalID, err)
	}

	invoice.ProjectName = project.Name
	invoice.CustomerName = customer.Name
	s.log.Info("invoice created",
		slog.String("invoice_id", invoice.ID),
		slog.String("external_id", externalID),
		slog.Float64("hours", draft.TotalHours),
		slog.Float64("amount", draft.TotalAmount))
	return &InvoiceResult{Invoice: invoice, Draft: draft, ExternalID: externalID}, nil
}

func (s *TimesheetService) ListInvoices(ctx context.Context, projectName string) ([]*models.Invoice, error) {
	projectID := ""
	if projectName != "" {
		p, err := s.projectByName(ctx, projectName)
		if err != nil {
			return nil, err
		}
		projectID = p.ID
	}
	return s.db.ListInvoices(ctx, projectID)
}

func (s *TimesheetService) ListRemoteInvoices(ctx context.Context, cursor string, refresh bool) (*payment.InvoicePage, error) {
	provider, err := s.paymentProvider(ctx)
	if err != nil {
		return nil, err
	}
	return provider.ListInvoices(ctx, cursor, refresh)
}

// WriteInvoicePDF renders a preview of the invoice CreateInvoice would send.
func (s *TimesheetService) WriteInvoicePDF(ctx context.Context, w io.Writer, projectName string, selection []string) (billing.Draft, error) {
	project, draft, err := s.PrepareInvoice(ctx, projectName, selection)
	if err != nil {
		return billing.Draft{}, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)

	title := "Invoice - " + project.Name
	if business := s.BusinessName(ctx); business != "" {
		title = business + " - " + title
	}
	pdf.Cell(40, 10, tr(title))
	pdf.Ln(12)

	if c := project.Customer; c != nil {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, "Bill To:")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(95, 6, tr(c.Name))
		pdf.Ln(6)
		pdf.Cell(95, 6, tr(c.Email))
		pdf.Ln(10)
	}

	if len(draft.LineItems) > 0 {
		first, last := draft.LineItems[0].PeriodStart, draft.LineItems[0].PeriodEnd
		for _, item := range draft.LineItems {
			if item.PeriodStart.Before(first) {
				first = item.PeriodStart
			}
			if item.PeriodEnd.After(last) {
				last = item.PeriodEnd
			}
		}
		pdf.SetFont("Arial", "", 12)
		pdf.Cell(40, 10, fmt.Sprintf("Period: %s to %s", s.FormatTime(ctx, first), s.FormatTime(ctx, last)))
		pdf.Ln(12)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(32, 8, "Start", "1", 0, "C", false, 0, "")
	pdf.CellFormat(18, 8, "Hours", "1", 0, "C", false, 0, "")
	pdf.CellFormat(18, 8, "Rate", "1", 0, "C", false, 0, "")
	pdf.CellFormat(100, 8, "Description", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 8, "Amount", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	zone := s.DisplayZone(ctx)
	for _, item := range draft.LineItems {
		lines := wrapDescriptionText(tr(item.Description), 60)
		rowHeight := float64(len(lines)) * 6

		pdf.CellFormat(32, rowHeight, s.clock.FormatForEdit(item.PeriodStart, zone), "1", 0, "L", false, 0, "")
		pdf.CellFormat(18, rowHeight, fmt.Sprintf("%.2f", item.Hours), "1", 0, "C", false, 0, "")
		pdf.CellFormat(18, rowHeight, fmt.Sprintf("$%.2f", item.Rate), "1", 0, "C", false, 0, "")

		x, y := pdf.GetX(), pdf.GetY()
		pdf.Rect(x, y, 100, rowHeight, "D")
		for i, line := range lines {
			pdf.SetXY(x+1, y+float64(i)*6)
			pdf.Cell(98, 6, line)
		}
		pdf.SetXY(x+100, y)
		pdf.CellFormat(22, rowHeight, FormatAmount(billing.FromMinorUnits(item.AmountMinorUnits)), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(168, 8, "Total hours:")
	pdf.CellFormat(22, 8, fmt.Sprintf("%.2f", draft.TotalHours), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(168, 10, "Total:")
	pdf.CellFormat(22, 10, FormatAmount(draft.TotalAmount), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return billing.Draft{}, fmt.Errorf("failed to write PDF: %w", err)
	}
	return draft, nil
}

func wrapDescriptionText(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	var lines []string
	var currentLine string
	for _, word := range strings.Fields(text) {
		testLine := currentLine
		if testLine != "" {
			testLine += " "
		}
		testLine += word

		if len(testLine) <= maxChars {
			currentLine = testLine
			continue
		}
		if currentLine != "" {
			lines = append(lines, currentLine)
		}
		currentLine = word
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
