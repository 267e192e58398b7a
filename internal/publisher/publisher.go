// Package publisher announces committed orders on Kafka for downstream
// fulfillment consumers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const topic = "order-created"

// messageWriter is the slice of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher writes order-created events. A circuit breaker sits in front
// of the broker so a dead Kafka cannot hang every checkout behind it.
type Publisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
	log     *zap.Logger
}

func NewPublisher(log *zap.Logger, brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, log)
}

func newPublisher(w messageWriter, log *zap.Logger) *Publisher {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name: "order-created-publisher",
	})
	return &Publisher{writer: w, breaker: breaker, log: log.Named("publisher")}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order %s: %w", order.InvoiceNo, err)
	}

	msg := kafka.Message{
		Key:   []byte(order.InvoiceNo), // invoice number for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.created")},
			{Key: "event_id", Value: []byte(uuid.NewString())},
		},
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to publish order %s: %w", order.InvoiceNo, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if closer, ok := p.writer.(*kafka.Writer); ok {
		if err := closer.Close(); err != nil {
			p.log.Warn("error closing kafka writer", zap.Error(err))
		}
	}
}
