package domain

import "time"

// CartLine is one product entry pending checkout. The document id is the
// product id, so the cart holds at most one line per product.
type CartLine struct {
	ID          int64     `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Desc        string    `bson:"desc" json:"desc"`
	Price       float64   `bson:"price" json:"price"`
	Image       string    `bson:"image" json:"image"`
	Quantity    int       `bson:"quantity" json:"quantity"`
	UpdatedTime time.Time `bson:"updatedTime" json:"updatedTime"`
}
