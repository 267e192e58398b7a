package domain

import "time"

type OrderStatus int

const (
	OrderStatusCreated   OrderStatus = 0
	OrderStatusReady     OrderStatus = 1
	OrderStatusDelivered OrderStatus = 2
)

// Order is an immutable snapshot of the cart at checkout time, keyed by
// the client-generated invoice number. Only orderStatus changes after
// creation, and never through this application.
type Order struct {
	InvoiceNo   string      `bson:"_id" json:"invoiceNo"`
	Items       []CartLine  `bson:"itemsList" json:"itemsList"`
	CreatedTime time.Time   `bson:"createdTime" json:"createdTime"`
	SubTotal    float64     `bson:"subTotal" json:"subTotal"`
	Shipping    float64     `bson:"shipping" json:"shipping"`
	Tax         float64     `bson:"tax" json:"tax"`
	Total       float64     `bson:"total" json:"total"`
	Status      OrderStatus `bson:"orderStatus" json:"orderStatus"`
}
