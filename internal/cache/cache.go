package cache

import (
	"context"
	"errors"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
)

type OrderCache interface {
	Get(ctx context.Context, invoiceNo string) (*domain.Order, error)
	Set(ctx context.Context, invoiceNo string, order *domain.Order) error
}

var ErrCacheMiss = errors.New("cache miss")
