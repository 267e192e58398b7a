package repository

import (
	"context"
	"fmt"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type checkoutRepository struct {
	client *mongo.Client
	orders *mongo.Collection
	cart   *mongo.Collection
}

func NewCheckoutRepository(db *mongo.Database) CheckoutRepository {
	return &checkoutRepository{
		client: db.Client(),
		orders: db.Collection(ordersCollection),
		cart:   db.Collection(cartCollection),
	}
}

// CreateOrder inserts the order document and deletes every consumed cart
// line inside one transaction. Readers of either collection never observe
// a partial result: on failure nothing is created or deleted.
func (r *checkoutRepository) CreateOrder(ctx context.Context, order *domain.Order, lineIDs []int64) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.orders.InsertOne(sc, order); err != nil {
			return nil, fmt.Errorf("failed to insert order %s: %w", order.InvoiceNo, err)
		}
		for _, id := range lineIDs {
			if _, err := r.cart.DeleteOne(sc, bson.M{"_id": id}); err != nil {
				return nil, fmt.Errorf("failed to delete cart line %d: %w", id, err)
			}
		}
		return nil, nil
	})
	return err
}
