package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MalligaSaravanan93/kioskapp/internal/cache"
	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/MalligaSaravanan93/kioskapp/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderCache struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	sets   int
	getErr error
}

func newFakeOrderCache() *fakeOrderCache {
	return &fakeOrderCache{orders: make(map[string]*domain.Order)}
}

func (c *fakeOrderCache) Get(_ context.Context, invoiceNo string) (*domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	if order, ok := c.orders[invoiceNo]; ok {
		return order, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *fakeOrderCache) Set(_ context.Context, invoiceNo string, order *domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[invoiceNo] = order
	c.sets++
	return nil
}

func (c *fakeOrderCache) setCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

func TestOrderLookup_CacheHit(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.findErr = errors.New("must not reach the store")
	oc := newFakeOrderCache()
	oc.orders["INV-1"] = &domain.Order{InvoiceNo: "INV-1", Total: 10}
	lookup := NewOrderLookup(repo, oc, zap.NewNop())

	order, err := lookup.Get(context.Background(), "INV-1")

	require.NoError(t, err)
	assert.Equal(t, "INV-1", order.InvoiceNo)
}

func TestOrderLookup_MissFillsCache(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.found = &domain.Order{InvoiceNo: "INV-2", Total: 42}
	oc := newFakeOrderCache()
	lookup := NewOrderLookup(repo, oc, zap.NewNop())

	order, err := lookup.Get(context.Background(), "INV-2")

	require.NoError(t, err)
	assert.Equal(t, "INV-2", order.InvoiceNo)

	// The cache fill is asynchronous.
	assert.Eventually(t, func() bool {
		return oc.setCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestOrderLookup_NotFoundPropagates(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.findErr = repository.ErrOrderNotFound
	lookup := NewOrderLookup(repo, newFakeOrderCache(), zap.NewNop())

	_, err := lookup.Get(context.Background(), "INV-404")

	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestOrderLookup_CacheErrorFallsThrough(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.found = &domain.Order{InvoiceNo: "INV-3"}
	oc := newFakeOrderCache()
	oc.getErr = errors.New("redis unreachable")
	lookup := NewOrderLookup(repo, oc, zap.NewNop())

	order, err := lookup.Get(context.Background(), "INV-3")

	require.NoError(t, err)
	assert.Equal(t, "INV-3", order.InvoiceNo)
}
