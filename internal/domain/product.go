package domain

import "time"

// Product is the structured payload carried by a scanned product code.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Desc  string  `json:"desc"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// CartLine converts a decoded product into a fresh cart line. Quantity
// starts at zero; the operator sets it before the line is persisted.
func (p Product) CartLine() CartLine {
	return CartLine{
		ID:          p.ID,
		Name:        p.Name,
		Desc:        p.Desc,
		Price:       p.Price,
		Image:       p.Image,
		Quantity:    0,
		UpdatedTime: time.Now(),
	}
}
