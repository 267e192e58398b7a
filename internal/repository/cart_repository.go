package repository

import (
	"context"
	"fmt"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &cartRepository{
		collection: db.Collection(cartCollection),
	}
}

func (r *cartRepository) Seed(ctx context.Context) ([]domain.CartLine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedTime", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	defer cursor.Close(ctx)

	var lines []domain.CartLine
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}
	return lines, nil
}

// cartChange is the raw change-stream document shape for the cart
// collection. Delete events carry only the document key.
type cartChange struct {
	OperationType string          `bson:"operationType"`
	FullDocument  domain.CartLine `bson:"fullDocument"`
	DocumentKey   struct {
		ID int64 `bson:"_id"`
	} `bson:"documentKey"`
}

func (c cartChange) event() (CartEvent, bool) {
	switch c.OperationType {
	case "insert":
		return CartEvent{Type: EventAdded, Line: c.FullDocument, ID: c.DocumentKey.ID}, true
	case "update", "replace":
		return CartEvent{Type: EventModified, Line: c.FullDocument, ID: c.DocumentKey.ID}, true
	case "delete":
		return CartEvent{Type: EventRemoved, ID: c.DocumentKey.ID}, true
	}
	return CartEvent{}, false
}

func (r *cartRepository) Watch(ctx context.Context) (<-chan CartEvent, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := r.collection.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to watch cart: %w", err)
	}

	events := make(chan CartEvent)
	go func() {
		defer close(events)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var change cartChange
			if err := stream.Decode(&change); err != nil {
				if !sendCartEvent(ctx, events, CartEvent{Err: err}) {
					return
				}
				continue
			}
			ev, ok := change.event()
			if !ok {
				continue
			}
			if !sendCartEvent(ctx, events, ev) {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			sendCartEvent(ctx, events, CartEvent{Err: err})
		}
	}()

	return events, nil
}

func sendCartEvent(ctx context.Context, events chan<- CartEvent, ev CartEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *cartRepository) Put(ctx context.Context, line domain.CartLine) error {
	filter := bson.M{"_id": line.ID}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, filter, line, opts); err != nil {
		return fmt.Errorf("failed to put cart line %d: %w", line.ID, err)
	}
	return nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, id int64, quantity int) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set":         bson.M{"quantity": quantity},
		"$currentDate": bson.M{"updatedTime": true},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to update quantity for line %d: %w", id, err)
	}
	return nil
}
