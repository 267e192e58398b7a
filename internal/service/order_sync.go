package service

import (
	"context"
	"sync"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/MalligaSaravanan93/kioskapp/internal/repository"
	"go.uber.org/zap"
)

// OrderSnapshot is one tick of the live order-history view.
type OrderSnapshot struct {
	Orders []domain.Order `json:"orders"`
	Err    error          `json:"-"`
}

// OrderSync maintains an ordered view of the orders collection keyed by
// invoice number. Unlike the cart view, a removal here is targeted: only
// the removed invoice leaves the view.
type OrderSync struct {
	repo repository.OrderRepository
	log  *zap.Logger

	mu      sync.Mutex
	orders  []domain.Order
	subs    map[int]chan OrderSnapshot
	nextSub int
}

func NewOrderSync(repo repository.OrderRepository, log *zap.Logger) *OrderSync {
	return &OrderSync{
		repo: repo,
		log:  log.Named("ordersync"),
		subs: make(map[int]chan OrderSnapshot),
	}
}

func (s *OrderSync) Run(ctx context.Context) error {
	seed, err := s.repo.Seed(ctx)
	if err != nil {
		s.log.Error("orders seed failed", zap.Error(err))
		s.broadcastError(domain.WrapRemote(err, "Error loading orders"))
		seed = nil
	}
	s.replace(seed)
	s.broadcast()

	events, err := s.repo.Watch(ctx)
	if err != nil {
		return domain.WrapRemote(err, "Error loading orders")
	}

	for ev := range events {
		if ev.Err != nil {
			s.log.Warn("orders stream tick failed", zap.Error(ev.Err))
			s.broadcastError(domain.WrapRemote(ev.Err, "Error loading orders"))
			continue
		}
		s.apply(ev)
		s.broadcast()
	}
	return ctx.Err()
}

func (s *OrderSync) Subscribe(ctx context.Context) (<-chan OrderSnapshot, func()) {
	ch := make(chan OrderSnapshot, 16)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	detach := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, detach)
	return ch, func() {
		stop()
		detach()
	}
}

func (s *OrderSync) Current() OrderSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *OrderSync) replace(orders []domain.Order) {
	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
}

func (s *OrderSync) apply(ev repository.OrderEvent) {
	s.mu.Lock()
	s.orders = applyOrderEvent(s.orders, ev)
	s.mu.Unlock()
}

func applyOrderEvent(orders []domain.Order, ev repository.OrderEvent) []domain.Order {
	switch ev.Type {
	case repository.EventAdded:
		return append(orders, ev.Order)
	case repository.EventModified:
		for i := range orders {
			if orders[i].InvoiceNo == ev.Order.InvoiceNo {
				orders[i] = ev.Order
				return orders
			}
		}
		return append(orders, ev.Order)
	case repository.EventRemoved:
		kept := orders[:0]
		for _, o := range orders {
			if o.InvoiceNo != ev.InvoiceNo {
				kept = append(kept, o)
			}
		}
		return kept
	}
	return orders
}

func (s *OrderSync) snapshotLocked() OrderSnapshot {
	orders := make([]domain.Order, len(s.orders))
	copy(orders, s.orders)
	return OrderSnapshot{Orders: orders}
}

func (s *OrderSync) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			s.log.Warn("dropping orders tick for slow subscriber")
		}
	}
}

func (s *OrderSync) broadcastError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := OrderSnapshot{Err: err}
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
