package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ordersRepository struct {
	collection *mongo.Collection
}

func NewOrdersRepository(db *mongo.Database) OrderRepository {
	return &ordersRepository{
		collection: db.Collection(ordersCollection),
	}
}

func (r *ordersRepository) Seed(ctx context.Context) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdTime", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

type orderChange struct {
	OperationType string       `bson:"operationType"`
	FullDocument  domain.Order `bson:"fullDocument"`
	DocumentKey   struct {
		InvoiceNo string `bson:"_id"`
	} `bson:"documentKey"`
}

func (c orderChange) event() (OrderEvent, bool) {
	switch c.OperationType {
	case "insert":
		return OrderEvent{Type: EventAdded, Order: c.FullDocument, InvoiceNo: c.DocumentKey.InvoiceNo}, true
	case "update", "replace":
		return OrderEvent{Type: EventModified, Order: c.FullDocument, InvoiceNo: c.DocumentKey.InvoiceNo}, true
	case "delete":
		return OrderEvent{Type: EventRemoved, InvoiceNo: c.DocumentKey.InvoiceNo}, true
	}
	return OrderEvent{}, false
}

func (r *ordersRepository) Watch(ctx context.Context) (<-chan OrderEvent, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := r.collection.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to watch orders: %w", err)
	}

	events := make(chan OrderEvent)
	go func() {
		defer close(events)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var change orderChange
			if err := stream.Decode(&change); err != nil {
				if !sendOrderEvent(ctx, events, OrderEvent{Err: err}) {
					return
				}
				continue
			}
			ev, ok := change.event()
			if !ok {
				continue
			}
			if !sendOrderEvent(ctx, events, ev) {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			sendOrderEvent(ctx, events, OrderEvent{Err: err})
		}
	}()

	return events, nil
}

func sendOrderEvent(ctx context.Context, events chan<- OrderEvent, ev OrderEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *ordersRepository) FindByInvoice(ctx context.Context, invoiceNo string) (*domain.Order, error) {
	var order domain.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": invoiceNo}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", invoiceNo, err)
	}
	return &order, nil
}
