package service

import (
	"context"
	"sync"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/MalligaSaravanan93/kioskapp/internal/pricing"
	"github.com/MalligaSaravanan93/kioskapp/internal/repository"
	"go.uber.org/zap"
)

// CartSnapshot is one tick of the live cart view. Err marks a tick whose
// upstream batch failed; the view resets and consumers must wait for the
// next successful tick.
type CartSnapshot struct {
	Lines  []domain.CartLine `json:"items"`
	Totals pricing.Totals    `json:"totals"`
	Err    error             `json:"-"`
}

// CartSync maintains an ordered, deduplicated view of the cart collection
// from its change stream and fans every applied tick out to subscribers.
// It is also the write path for cart mutations.
type CartSync struct {
	repo repository.CartRepository
	log  *zap.Logger

	mu      sync.Mutex
	lines   []domain.CartLine
	subs    map[int]chan CartSnapshot
	nextSub int
}

func NewCartSync(repo repository.CartRepository, log *zap.Logger) *CartSync {
	return &CartSync{
		repo: repo,
		log:  log.Named("cartsync"),
		subs: make(map[int]chan CartSnapshot),
	}
}

// Run seeds the view and applies change events until ctx is cancelled or
// the stream ends. A failed tick is reported to subscribers as an error
// snapshot; the subscription itself survives.
//
// Seed runs before the watch loop consumes anything, so a write racing
// into the gap surfaces on a later tick rather than duplicating a line.
func (s *CartSync) Run(ctx context.Context) error {
	seed, err := s.repo.Seed(ctx)
	if err != nil {
		s.log.Error("cart seed failed", zap.Error(err))
		s.broadcastError(domain.WrapRemote(err, "Error loading cart"))
		seed = nil
	}
	s.replace(seed)
	s.broadcast()

	events, err := s.repo.Watch(ctx)
	if err != nil {
		return domain.WrapRemote(err, "Error loading cart")
	}

	for ev := range events {
		if ev.Err != nil {
			s.log.Warn("cart stream tick failed", zap.Error(ev.Err))
			s.broadcastError(domain.WrapRemote(ev.Err, "Error loading cart"))
			continue
		}
		s.apply(ev)
		s.broadcast()
	}
	return ctx.Err()
}

// Subscribe attaches a consumer to the live view. The returned channel
// first delivers the current snapshot, then one snapshot per applied
// tick. Detaching (explicitly or via ctx) always removes the listener.
func (s *CartSync) Subscribe(ctx context.Context) (<-chan CartSnapshot, func()) {
	ch := make(chan CartSnapshot, 16)

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

// Current returns the latest snapshot without subscribing.
func (s *CartSync) Current() CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AddLine upserts a full line keyed by product id.
func (s *CartSync) AddLine(ctx context.Context, line domain.CartLine) error {
	if err := s.repo.Put(ctx, line); err != nil {
		s.log.Error("add cart line failed", zap.Int64("id", line.ID), zap.Error(err))
		return domain.WrapRemote(err, "Error adding cart item")
	}
	return nil
}

// SetQuantity updates a line's quantity. A negative target quantity is a
// no-op: decrementing below zero never happens.
func (s *CartSync) SetQuantity(ctx context.Context, id int64, quantity int) error {
	if quantity < 0 {
		return nil
	}
	if err := s.repo.SetQuantity(ctx, id, quantity); err != nil {
		s.log.Error("update quantity failed", zap.Int64("id", id), zap.Error(err))
		return domain.WrapRemote(err, "Error updating cart item")
	}
	return nil
}

func (s *CartSync) replace(lines []domain.CartLine) {
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
}

func (s *CartSync) apply(ev repository.CartEvent) {
	s.mu.Lock()
	s.lines = applyCartEvent(s.lines, ev)
	s.mu.Unlock()
}

// applyCartEvent applies one change event to the ordered view.
func applyCartEvent(lines []domain.CartLine, ev repository.CartEvent) []domain.CartLine {
	switch ev.Type {
	case repository.EventAdded:
		return append(lines, ev.Line)
	case repository.EventModified:
		for i := range lines {
			if lines[i].ID == ev.Line.ID {
				lines[i] = ev.Line
				return lines
			}
		}
		// Out-of-order delivery: a modify can arrive before its add.
		return append(lines, ev.Line)
	case repository.EventRemoved:
		// The removal signal does not say which lines went away (checkout
		// deletes them in bulk), so any removal clears the whole view and
		// the next seed or tick rebuilds it.
		return nil
	}
	return lines
}

func (s *CartSync) snapshotLocked() CartSnapshot {
	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	return CartSnapshot{Lines: lines, Totals: pricing.Calculate(lines)}
}

func (s *CartSync) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			s.log.Warn("dropping cart tick for slow subscriber")
		}
	}
}

func (s *CartSync) broadcastError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := CartSnapshot{Err: err}
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
