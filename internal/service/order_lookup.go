package service

import (
	"context"
	"errors"

	"github.com/MalligaSaravanan93/kioskapp/internal/cache"
	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/MalligaSaravanan93/kioskapp/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// OrderLookup serves single-invoice reads through a cache-aside path.
// Orders are immutable once created, so cached entries never need
// invalidation, only expiry.
type OrderLookup struct {
	repo  repository.OrderRepository
	cache cache.OrderCache
	log   *zap.Logger
	sfg   singleflight.Group // Prevents cache stampede
}

func NewOrderLookup(repo repository.OrderRepository, cache cache.OrderCache, log *zap.Logger) *OrderLookup {
	return &OrderLookup{
		repo:  repo,
		cache: cache,
		log:   log.Named("orderlookup"),
	}
}

func (l *OrderLookup) Get(ctx context.Context, invoiceNo string) (*domain.Order, error) {
	v, err, _ := l.sfg.Do(invoiceNo, func() (interface{}, error) {
		order, err := l.cache.Get(ctx, invoiceNo)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.log.Warn("cache get error", zap.Error(err)) // log cache error but continue
		}

		order, err = l.repo.FindByInvoice(ctx, invoiceNo)
		if err != nil {
			return nil, err
		}

		go func() {
			if err := l.cache.Set(context.Background(), invoiceNo, order); err != nil {
				l.log.Warn("cache set error", zap.Error(err))
			}
		}()
		return order, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Order), nil
}
