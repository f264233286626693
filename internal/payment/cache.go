package payment

import (
	"context"
	"sync"
	"time"

	"github.com/wes/paca/internal/billing"
)

const DefaultCacheTTL = 2 * time.Minute

type cachedPage struct {
	page    *InvoicePage
	fetched time.Time
}

// Cached keeps invoice listings per cursor for a short TTL. Any successful draft
// creation drops every cached page.
type Cached struct {
	next Provider
	ttl  time.Duration
	now  func() time.Time

	mu    sync.Mutex
	pages map[string]cachedPage
	// gen is bumped by Clear; a fetch started under an older gen is not stored.
	gen uint64
}

func NewCached(next Provider, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{
		next:  next,
		ttl:   ttl,
		now:   time.Now,
		pages: make(map[string]cachedPage),
	}
}

func (c *Cached) EnsureCustomer(ctx context.Context, ref CustomerRef) (string, error) {
	return c.next.EnsureCustomer(ctx, ref)
}

func (c *Cached) CreateDraftInvoice(ctx context.Context, customerID, projectName string, items []billing.LineItem) (string, error) {
	id, err := c.next.CreateDraftInvoice(ctx, customerID, projectName, items)
	if err != nil {
		return "", err
	}
	c.Clear()
	return id, nil
}

func (c *Cached) ListInvoices(ctx context.Context, cursor string, refresh bool) (*InvoicePage, error) {
	c.mu.Lock()
	hit, ok := c.pages[cursor]
	gen := c.gen
	c.mu.Unlock()
	if !refresh && ok && c.now().Sub(hit.fetched) < c.ttl {
		return hit.page, nil
	}

	page, err := c.next.ListInvoices(ctx, cursor, refresh)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.pages[cursor] = cachedPage{page: page, fetched: c.now()}
	}
	c.mu.Unlock()
	return page, nil
}

func (c *Cached) Clear() {
	c.mu.Lock()
	c.pages = make(map[string]cachedPage)
	c.gen++
	c.mu.Unlock()
}
