package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wes/paca/internal/billing"
)

type countingProvider struct {
	lists   map[string]int
	failNew bool
	onList  func()
}

func (p *countingProvider) EnsureCustomer(context.Context, CustomerRef) (string, error) {
	return "cus_1", nil
}

func (p *countingProvider) CreateDraftInvoice(context.Context, string, string, []billing.LineItem) (string, error) {
	if p.failNew {
		return "", errors.New("card_declined")
	}
	return "in_1", nil
}

func (p *countingProvider) ListInvoices(_ context.Context, cursor string, _ bool) (*InvoicePage, error) {
	p.lists[cursor]++
	if p.onList != nil {
		p.onList()
	}
	return &InvoicePage{NextCursor: cursor + "+"}, nil
}

func newTestCache(ttl time.Duration) (*Cached, *countingProvider, *time.Time) {
	inner := &countingProvider{lists: make(map[string]int)}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCached(inner, ttl)
	c.now = func() time.Time { return now }
	return c, inner, &now
}

func TestCachedServesWithinTTL(t *testing.T) {
	ctx := context.Background()
	c, inner, now := newTestCache(2 * time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := c.ListInvoices(ctx, "", false); err != nil {
			t.Fatalf("ListInvoices: %v", err)
		}
	}
	if inner.lists[""] != 1 {
		t.Errorf("first page fetched %d times, want 1", inner.lists[""])
	}

	if _, err := c.ListInvoices(ctx, "in_9", false); err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if inner.lists["in_9"] != 1 {
		t.Errorf("cursors must be cached separately")
	}

	*now = now.Add(2 * time.Minute)
	if _, err := c.ListInvoices(ctx, "", false); err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if inner.lists[""] != 2 {
		t.Errorf("expired page fetched %d times, want 2", inner.lists[""])
	}
}

func TestCachedRefreshBypasses(t *testing.T) {
	ctx := context.Background()
	c, inner, _ := newTestCache(time.Hour)

	c.ListInvoices(ctx, "", false)
	c.ListInvoices(ctx, "", true)
	c.ListInvoices(ctx, "", false)
	if inner.lists[""] != 2 {
		t.Errorf("fetched %d times, want 2", inner.lists[""])
	}
}

func TestCachedClearedByDraftInvoice(t *testing.T) {
	ctx := context.Background()
	c, inner, _ := newTestCache(time.Hour)

	c.ListInvoices(ctx, "", false)

	inner.failNew = true
	if _, err := c.CreateDraftInvoice(ctx, "cus_1", "Website", nil); err == nil {
		t.Fatal("expected provider error")
	}
	c.ListInvoices(ctx, "", false)
	if inner.lists[""] != 1 {
		t.Errorf("failed draft must not clear the cache")
	}

	inner.failNew = false
	id, err := c.CreateDraftInvoice(ctx, "cus_1", "Website", nil)
	if err != nil || id != "in_1" {
		t.Fatalf("CreateDraftInvoice = %q, %v", id, err)
	}
	c.ListInvoices(ctx, "", false)
	if inner.lists[""] != 2 {
		t.Errorf("cache should be cleared after a new draft; fetched %d times", inner.lists[""])
	}
}

func TestCachedDropsPageFetchedBeforeClear(t *testing.T) {
	ctx := context.Background()
	c, inner, _ := newTestCache(time.Hour)

	// A draft lands while the listing is in flight.
	inner.onList = c.Clear
	if _, err := c.ListInvoices(ctx, "", false); err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	inner.onList = nil

	c.ListInvoices(ctx, "", false)
	if inner.lists[""] != 2 {
		t.Errorf("stale page was cached; fetched %d times, want 2", inner.lists[""])
	}
	c.ListInvoices(ctx, "", false)
	if inner.lists[""] != 2 {
		t.Errorf("fresh page not cached; fetched %d times, want 2", inner.lists[""])
	}
}

func TestNewCachedDefaultTTL(t *testing.T) {
	c := NewCached(&countingProvider{lists: map[string]int{}}, 0)
	if c.ttl != DefaultCacheTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultCacheTTL)
	}
}
