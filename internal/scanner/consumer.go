package scanner

import (
	"context"
	"errors"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CartAdder is the slice of the cart service the consumer needs.
type CartAdder interface {
	AddLine(ctx context.Context, line domain.CartLine) error
}

// Consumer drains raw scan payloads published by kiosk scanner devices
// and turns each decodable one into a cart line.
type Consumer struct {
	cart   CartAdder
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(cart CartAdder, log *zap.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "scan-events",
		GroupID:  "kiosk-core",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{cart: cart, reader: reader, log: log.Named("scanconsumer")}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Warn("error closing kafka reader", zap.Error(err))
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Warn("error reading scan message", zap.Error(err))
		return
	}

	product, err := Decode(m.Value)
	if err != nil {
		c.log.Warn("skipping undecodable scan payload", zap.Error(err))
		return
	}

	if err := c.cart.AddLine(ctx, product.CartLine()); err != nil {
		c.log.Warn("failed to add scanned product",
			zap.Int64("id", product.ID), zap.Error(err))
	}
}
