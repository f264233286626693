package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/wes/paca/internal/billing"
)

const (
	draftDaysUntilDue = 30
	invoicePageSize   = 25
	dashboardURL      = "https://dashboard.stripe.com/invoices/"
)

type StripeProvider struct {
	api *client.API
	log *slog.Logger
}

// NewStripeProvider builds a provider for apiKey. backends may be nil to use the live API.
func NewStripeProvider(apiKey string, backends *stripe.Backends, log *slog.Logger) (*StripeProvider, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = slog.Default()
	}
	return &StripeProvider{api: client.New(apiKey, backends), log: log}, nil
}

func (p *StripeProvider) EnsureCustomer(ctx context.Context, ref CustomerRef) (string, error) {
	if ref.ExistingID != "" {
		params := &stripe.CustomerParams{}
		params.Context = ctx
		c, err := p.api.Customers.Get(ref.ExistingID, params)
		if err == nil && !c.Deleted {
			return c.ID, nil
		}
		var serr *stripe.Error
		if err != nil && !(errors.As(err, &serr) && serr.HTTPStatusCode == 404) {
			return "", fmt.Errorf("failed to retrieve customer %s: %w", ref.ExistingID, err)
		}
		p.log.Warn("stored customer no longer exists", slog.String("customer_id", ref.ExistingID))
	}

	list := &stripe.CustomerListParams{Email: stripe.String(ref.Email)}
	list.Context = ctx
	list.Limit = stripe.Int64(1)
	list.Single = true
	iter := p.api.Customers.List(list)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("failed to search customers: %w", err)
	}

	params := &stripe.CustomerParams{
		Name:  stripe.String(ref.Name),
		Email: stripe.String(ref.Email),
	}
	params.Context = ctx
	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	p.log.Info("created remote customer", slog.String("customer_id", c.ID), slog.String("email", ref.Email))
	return c.ID, nil
}

func (p *StripeProvider) CreateDraftInvoice(ctx context.Context, customerID, projectName string, items []billing.LineItem) (string, error) {
	if len(items) == 0 {
		return "", ErrNoLineItems
	}

	var created []string
	fail := func(err error) (string, error) {
		p.deletePendingItems(created)
		return "", err
	}

	for _, item := range items {
		if item.AmountMinorUnits <= 0 {
			continue
		}
		params := &stripe.InvoiceItemParams{
			Customer:    stripe.String(customerID),
			Amount:      stripe.Int64(item.AmountMinorUnits),
			Currency:    stripe.String(string(stripe.CurrencyUSD)),
			Description: stripe.String(item.Description),
		}
		params.Context = ctx
		params.AddMetadata("project", projectName)
		params.AddMetadata("start_time", item.PeriodStart.UTC().Format(time.RFC3339))
		params.AddMetadata("end_time", item.PeriodEnd.UTC().Format(time.RFC3339))
		params.AddMetadata("time_range", timeRange(item.PeriodStart, item.PeriodEnd))
		params.AddMetadata("hours", strconv.FormatFloat(item.Hours, 'f', 2, 64))

		ii, err := p.api.InvoiceItems.New(params)
		if err != nil {
			return fail(fmt.Errorf("failed to create invoice item: %w", err))
		}
		created = append(created, ii.ID)
	}

	params := &stripe.InvoiceParams{
		Customer:                    stripe.String(customerID),
		AutoAdvance:                 stripe.Bool(false),
		CollectionMethod:            stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice)),
		DaysUntilDue:                stripe.Int64(draftDaysUntilDue),
		PendingInvoiceItemsBehavior: stripe.String("include"),
	}
	params.Context = ctx
	inv, err := p.api.Invoices.New(params)
	if err != nil {
		return fail(fmt.Errorf("failed to create draft invoice: %w", err))
	}

	p.log.Info("created draft invoice",
		slog.String("invoice_id", inv.ID),
		slog.String("customer_id", customerID),
		slog.Int("items", len(items)))
	return inv.ID, nil
}

// deletePendingItems removes invoice items left pending on the customer by a failed draft,
// so the next attempt does not pick them up. The request context may already be done, so
// cleanup runs on its own deadline.
func (p *StripeProvider) deletePendingItems(ids []string) {
	if len(ids) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, id := range ids {
		params := &stripe.InvoiceItemParams{}
		params.Context = ctx
		if _, err := p.api.InvoiceItems.Del(id, params); err != nil {
			p.log.Error("failed to delete pending invoice item",
				slog.String("invoice_item_id", id),
				slog.Any("error", err))
			continue
		}
		p.log.Info("deleted pending invoice item", slog.String("invoice_item_id", id))
	}
}

func (p *StripeProvider) ListInvoices(ctx context.Context, cursor string, _ bool) (*InvoicePage, error) {
	params := &stripe.InvoiceListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(invoicePageSize)
	params.Single = true
	params.AddExpand("data.customer")
	if cursor != "" {
		params.StartingAfter = stripe.String(cursor)
	}

	iter := p.api.Invoices.List(params)
	page := &InvoicePage{}
	for iter.Next() {
		page.Invoices = append(page.Invoices, convertInvoice(iter.Invoice()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	if meta := iter.Meta(); meta != nil {
		page.HasMore = meta.HasMore
	}
	if n := len(page.Invoices); n > 0 {
		page.NextCursor = page.Invoices[n-1].ID
	}
	return page, nil
}

func convertInvoice(inv *stripe.Invoice) RemoteInvoice {
	r := RemoteInvoice{
		ID:           inv.ID,
		Number:       inv.Number,
		Status:       string(inv.Status),
		AmountDue:    inv.AmountDue,
		Currency:     string(inv.Currency),
		Created:      time.Unix(inv.Created, 0).UTC(),
		HostedURL:    inv.HostedInvoiceURL,
		DashboardURL: dashboardURL + inv.ID,
	}
	if r.Status == "" {
		r.Status = "unknown"
	}
	if inv.Customer != nil {
		r.CustomerName = inv.Customer.Name
		r.CustomerEmail = inv.Customer.Email
	}
	if r.CustomerName == "" {
		r.CustomerName = inv.CustomerName
	}
	if r.CustomerEmail == "" {
		r.CustomerEmail = inv.CustomerEmail
	}
	if inv.DueDate > 0 {
		due := time.Unix(inv.DueDate, 0).UTC()
		r.DueDate = &due
	}
	return r
}

func timeRange(start, end time.Time) string {
	const layout = "Jan 2, 3:04 PM"
	return start.Local().Format(layout) + " - " + end.Local().Format(layout)
}
