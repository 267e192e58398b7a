package service

import (
	"context"
	"time"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/MalligaSaravanan93/kioskapp/internal/invoice"
	"github.com/MalligaSaravanan93/kioskapp/internal/pricing"
	"github.com/MalligaSaravanan93/kioskapp/internal/repository"
	"go.uber.org/zap"
)

// OrderPublisher announces a committed order to downstream consumers.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}

// Checkout turns a cart snapshot plus computed totals into a persisted
// order. Persisting the order and clearing the consumed cart lines is a
// single atomic unit; the cart stream confirms the emptied cart on its
// next tick.
type Checkout struct {
	repo      repository.CheckoutRepository
	invoices  *invoice.Generator
	publisher OrderPublisher
	log       *zap.Logger
}

func NewCheckout(repo repository.CheckoutRepository, invoices *invoice.Generator, publisher OrderPublisher, log *zap.Logger) *Checkout {
	return &Checkout{
		repo:      repo,
		invoices:  invoices,
		publisher: publisher,
		log:       log.Named("checkout"),
	}
}

// Checkout builds the order snapshot and commits it. Later cart mutations
// never affect the created order. An empty line slice is permitted here;
// callers decide whether to offer checkout on an empty cart.
func (c *Checkout) Checkout(ctx context.Context, lines []domain.CartLine, totals pricing.Totals) (string, error) {
	order := &domain.Order{
		InvoiceNo:   c.invoices.Next(),
		Items:       append([]domain.CartLine(nil), lines...),
		CreatedTime: time.Now(),
		SubTotal:    totals.SubTotal,
		Shipping:    totals.Shipping,
		Tax:         totals.Tax,
		Total:       totals.Total,
		Status:      domain.OrderStatusCreated,
	}

	lineIDs := make([]int64, len(lines))
	for i, line := range lines {
		lineIDs[i] = line.ID
	}

	if err := c.repo.CreateOrder(ctx, order, lineIDs); err != nil {
		c.log.Error("checkout commit failed", zap.String("invoiceNo", order.InvoiceNo), zap.Error(err))
		return "", domain.WrapRemote(err, "Error creating order")
	}
	c.log.Info("order created",
		zap.String("invoiceNo", order.InvoiceNo),
		zap.Int("lines", len(order.Items)),
		zap.Float64("total", order.Total))

	// Publishing is best effort: the order is already durable, so a dead
	// broker must not fail the checkout.
	if c.publisher != nil {
		if err := c.publisher.PublishOrderCreated(ctx, order); err != nil {
			c.log.Warn("order-created publish failed", zap.String("invoiceNo", order.InvoiceNo), zap.Error(err))
		}
	}
	return order.InvoiceNo, nil
}
