// Package payment talks to the remote billing service that owns customers and invoices.
// Amounts crossing this boundary are always integer minor units.
package payment

//go:generate mockgen -source=provider.go -destination=mock/provider.go -package=mock_payment

import (
	"context"
	"errors"
	"time"

	"github.com/wes/paca/internal/billing"
)

var (
	ErrNotConfigured = errors.New("payment provider is not configured")
	ErrNoLineItems   = errors.New("invoice has no billable line items")
)

// CustomerRef identifies a local customer to the provider. ExistingID is the id stored
// from an earlier sync, if any.
type CustomerRef struct {
	Name       string
	Email      string
	ExistingID string
}

type RemoteInvoice struct {
	ID            string
	Number        string
	CustomerName  string
	CustomerEmail string
	Status        string
	AmountDue     int64
	Currency      string
	Created       time.Time
	DueDate       *time.Time
	HostedURL     string
	DashboardURL  string
}

type InvoicePage struct {
	Invoices   []RemoteInvoice
	HasMore    bool
	NextCursor string
}

type Provider interface {
	// EnsureCustomer returns the remote id for ref, reusing ExistingID when it still
	// resolves, then a customer with the same email, and creating one otherwise.
	EnsureCustomer(ctx context.Context, ref CustomerRef) (string, error)
	// CreateDraftInvoice adds items as pending invoice items and collects them into a
	// new draft invoice, returning its id.
	CreateDraftInvoice(ctx context.Context, customerID, projectName string, items []billing.LineItem) (string, error)
	// ListInvoices returns one page starting after cursor. refresh bypasses any cache.
	ListInvoices(ctx context.Context, cursor string, refresh bool) (*InvoicePage, error)
}
