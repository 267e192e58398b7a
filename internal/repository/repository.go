package repository

import (
	"context"
	"errors"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// EventType classifies an incremental change delivered by a collection
// change stream.
type EventType string

const (
	EventAdded    EventType = "added"
	EventModified EventType = "modified"
	EventRemoved  EventType = "removed"
)

// CartEvent is one change on the cart collection. Removed events carry
// only the document key; Err marks a tick that failed to decode.
type CartEvent struct {
	Type EventType
	Line domain.CartLine
	ID   int64
	Err  error
}

// OrderEvent is one change on the orders collection.
type OrderEvent struct {
	Type      EventType
	Order     domain.Order
	InvoiceNo string
	Err       error
}

// CartRepository defines the cart collection operations the synchronizer
// and mutation paths need. Consumers own this interface, not Mongo.
type CartRepository interface {
	// Seed returns the full collection ordered by descending updatedTime.
	Seed(ctx context.Context) ([]domain.CartLine, error)
	// Watch opens a change-stream subscription. The channel closes when
	// ctx is cancelled or the stream ends.
	Watch(ctx context.Context) (<-chan CartEvent, error)
	// Put upserts a full line keyed by product id.
	Put(ctx context.Context, line domain.CartLine) error
	// SetQuantity updates only quantity and the server-assigned
	// updatedTime, leaving concurrent field writes intact.
	SetQuantity(ctx context.Context, id int64, quantity int) error
}

type OrderRepository interface {
	// Seed returns the full collection ordered by descending createdTime.
	Seed(ctx context.Context) ([]domain.Order, error)
	Watch(ctx context.Context) (<-chan OrderEvent, error)
	FindByInvoice(ctx context.Context, invoiceNo string) (*domain.Order, error)
}

// CheckoutRepository persists an order and clears its source cart lines
// as one atomic unit.
type CheckoutRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order, lineIDs []int64) error
}
