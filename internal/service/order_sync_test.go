package service

import (
	"context"
	"testing"
	"time"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/MalligaSaravanan93/kioskapp/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderRepo struct {
	seed    []domain.Order
	seedErr error
	events  chan repository.OrderEvent

	found   *domain.Order
	findErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{events: make(chan repository.OrderEvent)}
}

func (f *fakeOrderRepo) Seed(context.Context) ([]domain.Order, error) {
	return f.seed, f.seedErr
}

func (f *fakeOrderRepo) Watch(context.Context) (<-chan repository.OrderEvent, error) {
	return f.events, nil
}

func (f *fakeOrderRepo) FindByInvoice(context.Context, string) (*domain.Order, error) {
	return f.found, f.findErr
}

func TestApplyOrderEvent_TargetedRemoval(t *testing.T) {
	var orders []domain.Order

	orders = applyOrderEvent(orders, repository.OrderEvent{
		Type: repository.EventAdded, Order: domain.Order{InvoiceNo: "A"},
	})
	orders = applyOrderEvent(orders, repository.OrderEvent{
		Type: repository.EventAdded, Order: domain.Order{InvoiceNo: "B"},
	})
	orders = applyOrderEvent(orders, repository.OrderEvent{
		Type: repository.EventRemoved, InvoiceNo: "A",
	})

	require.Len(t, orders, 1)
	assert.Equal(t, "B", orders[0].InvoiceNo)
}

func TestApplyOrderEvent_ModifyReplacesInPlace(t *testing.T) {
	orders := []domain.Order{
		{InvoiceNo: "A", Status: domain.OrderStatusCreated},
		{InvoiceNo: "B", Status: domain.OrderStatusCreated},
	}

	orders = applyOrderEvent(orders, repository.OrderEvent{
		Type:  repository.EventModified,
		Order: domain.Order{InvoiceNo: "A", Status: domain.OrderStatusReady},
	})

	require.Len(t, orders, 2)
	assert.Equal(t, "A", orders[0].InvoiceNo)
	assert.Equal(t, domain.OrderStatusReady, orders[0].Status)
}

func TestApplyOrderEvent_ModifyMissingAppends(t *testing.T) {
	orders := applyOrderEvent(nil, repository.OrderEvent{
		Type:  repository.EventModified,
		Order: domain.Order{InvoiceNo: "Z"},
	})

	require.Len(t, orders, 1)
	assert.Equal(t, "Z", orders[0].InvoiceNo)
}

func TestOrderSync_RunDeliversNewOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	s := NewOrderSync(repo, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks, detach := s.Subscribe(ctx)
	defer detach()

	next := func() OrderSnapshot {
		t.Helper()
		select {
		case snap, ok := <-ticks:
			require.True(t, ok)
			return snap
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for orders tick")
			return OrderSnapshot{}
		}
	}

	next() // initial
	go s.Run(ctx)
	next() // seed

	repo.events <- repository.OrderEvent{
		Type:  repository.EventAdded,
		Order: domain.Order{InvoiceNo: "INV-20240101000000-ABC123", Total: 22.98},
	}
	snap := next()
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, "INV-20240101000000-ABC123", snap.Orders[0].InvoiceNo)
	close(repo.events)
}
